package l3_service

import (
	"context"
	"fmt"
	"stockcheck/internal/domain"
	"stockcheck/internal/logger"
	"stockcheck/internal/metrics"
	"stockcheck/internal/repository"
	l1_service "stockcheck/internal/service/l1"
	"stockcheck/internal/util"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=valuation.service.go -destination=mocks/mock_valuation.service.go

// ValuationService runs one complete valuation pass: normalize the
// holdings, resolve their quotes, aggregate
type ValuationService interface {
	Value(ctx context.Context, rows []map[string]string) *domain.PortfolioValuation
	ValueHoldingsFile(ctx context.Context) (*domain.PortfolioValuation, error)
}

type valuationServiceHandler struct {
	HoldingsRepository       repository.HoldingsRepository
	NormalizerService        l1_service.NormalizerService
	FetchOrchestratorService FetchOrchestratorService
	Clock                    util.Clock
}

func NewValuationService(
	holdingsRepository repository.HoldingsRepository,
	normalizerService l1_service.NormalizerService,
	fetchOrchestratorService FetchOrchestratorService,
	clock util.Clock,
) ValuationService {
	return valuationServiceHandler{
		HoldingsRepository:       holdingsRepository,
		NormalizerService:        normalizerService,
		FetchOrchestratorService: fetchOrchestratorService,
		Clock:                    clock,
	}
}

func (h valuationServiceHandler) Value(ctx context.Context, rows []map[string]string) *domain.PortfolioValuation {
	start := time.Now()
	valuationID := uuid.New()
	log := logger.FromContext(ctx).With("valuationId", valuationID.String())
	ctx = logger.NewContext(ctx, log)

	normalized := h.NormalizerService.Normalize(ctx, rows)
	quotes := h.FetchOrchestratorService.ResolveAll(ctx, domain.HeldSymbols(normalized.Holdings))
	valuation := l1_service.AggregateValuation(normalized.Holdings, quotes)

	elapsed := time.Since(start)
	metrics.ValuationDuration.Observe(elapsed.Seconds())
	log.Infow(
		"valuation complete",
		"holdings", valuation.Summary.TotalCount,
		"priced", valuation.Summary.PricedCount,
		"skipped", len(normalized.Skipped),
		"elapsedMs", elapsed.Milliseconds(),
	)

	return &domain.PortfolioValuation{
		ValuationID: valuationID,
		GeneratedAt: h.Clock.Now(),
		Valuation:   valuation,
		Skipped:     normalized.Skipped,
	}
}

func (h valuationServiceHandler) ValueHoldingsFile(ctx context.Context) (*domain.PortfolioValuation, error) {
	rows, err := h.HoldingsRepository.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return h.Value(ctx, rows), nil
}
