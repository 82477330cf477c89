package l1_service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"stockcheck/internal/domain"
	"stockcheck/internal/logger"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type NormalizerService interface {
	Normalize(ctx context.Context, rows []map[string]string) NormalizeResult
}

type NormalizeResult struct {
	Holdings []domain.Holding
	Skipped  []domain.SkippedRow
}

// header aliases, matched after lower-casing and dropping whitespace.
// order matters when a file has more than one matching column
var (
	symbolColumns   = []string{"symbol", "ticker", "code", "証券コード"}
	priceColumns    = []string{"acquisitionprice", "buyprice", "costprice", "cost", "price", "取得時", "取得単価"}
	quantityColumns = []string{"quantity", "qty", "shares", "数量", "株数"}
	noteColumns     = []string{"note", "notes", "memo", "備考"}
)

// spreadsheet placeholder for a row nobody filled in
const missingSymbol = "missing"

type normalizerServiceHandler struct {
	// appended to symbols made only of digits; empty disables
	ExchangeSuffix string
}

func NewNormalizerService(exchangeSuffix string) NormalizerService {
	return normalizerServiceHandler{
		ExchangeSuffix: exchangeSuffix,
	}
}

// Normalize never fails. Rows it cannot use are returned in Skipped with
// their 1-based position in the input.
func (h normalizerServiceHandler) Normalize(ctx context.Context, rows []map[string]string) NormalizeResult {
	log := logger.FromContext(ctx)

	out := NormalizeResult{
		Holdings: []domain.Holding{},
		Skipped:  []domain.SkippedRow{},
	}
	// symbol -> index in out.Holdings
	positions := map[string]int{}
	// running sum of price * quantity per symbol, for the weighted average
	weighted := map[string]decimal.Decimal{}

	for i, raw := range rows {
		rowNumber := i + 1
		fields := canonicalColumns(raw)

		holding, err := h.parseRow(fields)
		if err != nil {
			log.Debugf("skipping holdings row %d: %s", rowNumber, err.Error())
			out.Skipped = append(out.Skipped, domain.SkippedRow{
				Row:    rowNumber,
				Reason: err.Error(),
				Err:    err,
			})
			continue
		}

		idx, ok := positions[holding.Symbol]
		if !ok {
			positions[holding.Symbol] = len(out.Holdings)
			weighted[holding.Symbol] = holding.CostBasis()
			out.Holdings = append(out.Holdings, holding)
			continue
		}

		existing := out.Holdings[idx]
		if holding.Quantity > math.MaxInt64-existing.Quantity {
			err := fmt.Errorf("combined quantity for %s overflows: %w", holding.Symbol, domain.ErrMalformedInput)
			log.Debugf("skipping holdings row %d: %s", rowNumber, err.Error())
			out.Skipped = append(out.Skipped, domain.SkippedRow{
				Row:    rowNumber,
				Reason: err.Error(),
				Err:    err,
			})
			continue
		}
		merged := existing
		merged.Quantity += holding.Quantity
		weighted[holding.Symbol] = weighted[holding.Symbol].Add(holding.CostBasis())
		if merged.Quantity > 0 {
			merged.AcquisitionPrice = weighted[holding.Symbol].Div(decimal.NewFromInt(merged.Quantity))
		}
		merged.Note = joinNotes(existing.Note, holding.Note)
		out.Holdings[idx] = merged
	}

	return out
}

func (h normalizerServiceHandler) parseRow(fields map[string]string) (domain.Holding, error) {
	if isBlank(fields) {
		return domain.Holding{}, fmt.Errorf("blank row: %w", domain.ErrMalformedInput)
	}

	symbol := strings.ToUpper(strings.TrimSpace(lookupColumn(fields, symbolColumns)))
	if symbol == "" {
		return domain.Holding{}, fmt.Errorf("empty symbol: %w", domain.ErrMalformedInput)
	}
	if strings.EqualFold(symbol, missingSymbol) {
		return domain.Holding{}, fmt.Errorf("symbol marked %q: %w", missingSymbol, domain.ErrMalformedInput)
	}
	if h.ExchangeSuffix != "" && isDigits(symbol) {
		symbol += strings.ToUpper(h.ExchangeSuffix)
	}

	return domain.Holding{
		Symbol:           symbol,
		AcquisitionPrice: parsePrice(lookupColumn(fields, priceColumns)),
		Quantity:         parseQuantity(lookupColumn(fields, quantityColumns)),
		Note:             strings.TrimSpace(lookupColumn(fields, noteColumns)),
	}, nil
}

// canonicalColumns re-keys a raw row by its normalized header names. When
// two headers collapse to the same name the first non-empty value wins,
// in sorted header order.
func canonicalColumns(raw map[string]string) map[string]string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := map[string]string{}
	for _, k := range keys {
		name := canonicalHeader(k)
		if existing, ok := out[name]; ok && strings.TrimSpace(existing) != "" {
			continue
		}
		out[name] = raw[k]
	}
	return out
}

// spreadsheet exports often lead the first header with a byte order mark
func canonicalHeader(s string) string {
	s = strings.ReplaceAll(s, "\uFEFF", "")
	return strings.ToLower(strings.Join(strings.FieldsFunc(s, unicode.IsSpace), ""))
}

func lookupColumn(fields map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := fields[alias]; ok {
			return v
		}
	}
	return ""
}

func isBlank(fields map[string]string) bool {
	for _, v := range fields {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// numericText drops currency marks, thousands separators and unit glyphs
func numericText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(numericText(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

func parseQuantity(s string) int64 {
	d, err := decimal.NewFromString(numericText(s))
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) || d.GreaterThan(maxQuantity) {
		return 0
	}
	return d.IntPart()
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}
