// Package allocation splits cash across the stocks of one strategy.
package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glbter/stock-portfolio/entities"
)

var ErrNonPositivePrice = errors.New("non-positive price")

// Weights are applied positionally to a strategy's tickers.
var Weights = []decimal.Decimal{
	decimal.RequireFromString("0.5"),
	decimal.RequireFromString("0.3"),
	decimal.RequireFromString("0.2"),
}

func Amounts(amount decimal.Decimal) []decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(Weights))
	for _, w := range Weights {
		amounts = append(amounts, amount.Mul(w))
	}

	return amounts
}

type Result struct {
	Positions []entities.StockPosition
	Value     decimal.Decimal
}

// Allocate annotates quotes with shares and value. quotes is aligned with the strategy's
// tickers; a nil slot is a ticker that could not be fetched and its amount stays unspent.
// Slots beyond len(Weights) get nothing.
func Allocate(amount decimal.Decimal, quotes []*entities.Quote) (Result, error) {
	res := Result{
		Positions: make([]entities.StockPosition, 0, len(quotes)),
		Value:     decimal.Zero,
	}

	amounts := Amounts(amount)
	for i, q := range quotes {
		if q == nil || i >= len(amounts) {
			continue
		}

		price := decimal.NewFromFloat(q.Price)
		if !price.IsPositive() {
			return Result{}, fmt.Errorf("%w: %s priced at %s", ErrNonPositivePrice, q.Symbol, price)
		}

		shares := amounts[i].Div(price)
		value := shares.Mul(price)

		res.Positions = append(res.Positions, entities.StockPosition{
			Quote:           *q,
			Shares:          shares.InexactFloat64(),
			AllocatedAmount: amounts[i].InexactFloat64(),
			CurrentValue:    value.InexactFloat64(),
		})
		res.Value = res.Value.Add(value)
	}

	return res, nil
}
