package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/glbter/stock-portfolio/entities"
)

const TickersPerStrategy = 3

var ErrUnknownStrategy = errors.New("unknown strategy")

var defaultStocks = map[entities.StrategyName][]entities.StockTicker{
	"Ethical Investing": {"AAPL", "TSLA", "ADBE"},
	"Growth Investing":  {"OXLC", "ECC", "AMD"},
	"Index Investing":   {"VOO", "VTI", "ILTB"},
	"Quality Investing": {"NVDA", "MU", "CSCO"},
	"Value Investing":   {"INTC", "BABA", "GE"},
}

// Catalog maps a strategy name to its fixed ticker list. It is read only after construction.
type Catalog struct {
	stocks map[entities.StrategyName][]entities.StockTicker
	names  []entities.StrategyName
}

func DefaultCatalog() Catalog {
	c, _ := NewCatalog(defaultStocks)
	return c
}

func NewCatalog(stocks map[entities.StrategyName][]entities.StockTicker) (Catalog, error) {
	c := Catalog{
		stocks: make(map[entities.StrategyName][]entities.StockTicker, len(stocks)),
		names:  make([]entities.StrategyName, 0, len(stocks)),
	}

	for name, tickers := range stocks {
		if name == "" {
			return Catalog{}, errors.New("empty strategy name")
		}
		if len(tickers) != TickersPerStrategy {
			return Catalog{}, fmt.Errorf("strategy %q has %d tickers, want %d", name, len(tickers), TickersPerStrategy)
		}
		for _, t := range tickers {
			if t == "" {
				return Catalog{}, fmt.Errorf("strategy %q has an empty ticker", name)
			}
		}

		c.stocks[name] = append([]entities.StockTicker(nil), tickers...)
		c.names = append(c.names, name)
	}

	if len(c.names) == 0 {
		return Catalog{}, errors.New("catalog is empty")
	}

	sort.Slice(c.names, func(i, j int) bool { return c.names[i] < c.names[j] })

	return c, nil
}

func (c Catalog) Names() []entities.StrategyName {
	return append([]entities.StrategyName(nil), c.names...)
}

func (c Catalog) Has(name entities.StrategyName) bool {
	_, ok := c.stocks[name]
	return ok
}

func (c Catalog) Tickers(name entities.StrategyName) ([]entities.StockTicker, error) {
	tickers, ok := c.stocks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}

	return append([]entities.StockTicker(nil), tickers...), nil
}
