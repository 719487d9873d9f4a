package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/glbter/stock-portfolio/entities"
	"github.com/glbter/stock-portfolio/strategy"
)

// CatalogRepo loads a strategy catalog from a csv file with rows
// "strategy,ticker1,ticker2,ticker3". A header row starting with "strategy" is skipped.
type CatalogRepo struct {
	Path string
}

func (r CatalogRepo) GetCatalog() (strategy.Catalog, error) {
	content, err := readCsvFile(r.Path)
	if err != nil {
		return strategy.Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}

	stocks := make(map[entities.StrategyName][]entities.StockTicker, len(content))
	for i, line := range content {
		if i == 0 && strings.EqualFold(strings.TrimSpace(line[0]), "strategy") {
			continue
		}

		if len(line) != strategy.TickersPerStrategy+1 {
			return strategy.Catalog{}, fmt.Errorf("line %d: expected %d columns, got %d", i+1, strategy.TickersPerStrategy+1, len(line))
		}

		name := entities.StrategyName(strings.TrimSpace(line[0]))
		if _, ok := stocks[name]; ok {
			return strategy.Catalog{}, fmt.Errorf("line %d: duplicate strategy %q", i+1, name)
		}

		tickers := make([]entities.StockTicker, 0, strategy.TickersPerStrategy)
		for _, t := range line[1:] {
			tickers = append(tickers, entities.StockTicker(strings.ToUpper(strings.TrimSpace(t))))
		}
		stocks[name] = tickers
	}

	return strategy.NewCatalog(stocks)
}

func readCsvFile(filePath string) ([][]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	return records, nil
}
