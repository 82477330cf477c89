package repository

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

//go:generate mockgen -source=holdings.repository.go -destination=mocks/mock_holdings_repository.go

// HoldingsRepository reads raw, untyped holding rows keyed by header name.
// Values are not validated here.
type HoldingsRepository interface {
	List() ([]map[string]string, error)
	Read(r io.Reader) ([]map[string]string, error)
}

func NewHoldingsRepository(path string, skipRows int) HoldingsRepository {
	return holdingsRepositoryHandler{
		Path:     path,
		SkipRows: skipRows,
	}
}

type holdingsRepositoryHandler struct {
	Path string
	// lines to drop before the header, for spreadsheet exports that
	// start with a title line
	SkipRows int
}

func (h holdingsRepositoryHandler) List() ([]map[string]string, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings file: %w", err)
	}
	defer f.Close()

	return h.Read(f)
}

func (h holdingsRepositoryHandler) Read(r io.Reader) ([]map[string]string, error) {
	br := bufio.NewReader(r)
	for i := 0; i < h.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return []map[string]string{}, nil
			}
			return nil, fmt.Errorf("failed to skip holdings row %d: %w", i, err)
		}
	}

	rows, err := gocsv.CSVToMaps(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holdings csv: %w", err)
	}
	return rows, nil
}
