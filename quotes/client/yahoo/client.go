// Package yahoo is a quote client backed by the Yahoo Finance quote API.
package yahoo

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glbter/stock-portfolio/entities"
)

type QuoteClient struct {
	get     func(symbol string) (*finance.Quote, error)
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) QuoteClient {
	return QuoteClient{
		get:     quote.Get,
		timeout: timeout,
		logger:  logger.With(zap.String("caller", "YahooQuoteClient")),
	}
}

// Quotes returns one slot per ticker, in input order, nil for tickers that failed.
func (qc QuoteClient) Quotes(ctx context.Context, tickers []entities.StockTicker) ([]*entities.Quote, error) {
	res := make([]*entities.Quote, len(tickers))

	var g errgroup.Group
	for i, ticker := range tickers {
		g.Go(func() error {
			res[i] = qc.quote(ctx, ticker)
			return nil
		})
	}
	_ = g.Wait()

	return res, nil
}

type result struct {
	q   *finance.Quote
	err error
}

func (qc QuoteClient) quote(ctx context.Context, ticker entities.StockTicker) *entities.Quote {
	logger := qc.logger.With(zap.String("method", "Quote"), zap.String("ticker", string(ticker)))

	ctx, cancel := context.WithTimeout(ctx, qc.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		q, err := qc.get(string(ticker))
		done <- result{q: q, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Error(fmt.Errorf("get quote: %w", ctx.Err()).Error())
		return nil
	case r := <-done:
		if r.err != nil {
			logger.Error(fmt.Errorf("get quote: %w", r.err).Error())
			return nil
		}
		if r.q == nil {
			logger.Error("no data available")
			return nil
		}
		return toQuote(ticker, r.q)
	}
}

func toQuote(ticker entities.StockTicker, q *finance.Quote) *entities.Quote {
	symbol := entities.StockTicker(q.Symbol)
	if symbol == "" {
		symbol = ticker
	}

	return &entities.Quote{
		Symbol:            symbol,
		Name:              q.ShortName,
		Price:             q.RegularMarketPrice,
		Change:            q.RegularMarketChange,
		ChangesPercentage: q.RegularMarketChangePercent,
		DayLow:            q.RegularMarketDayLow,
		DayHigh:           q.RegularMarketDayHigh,
		YearLow:           q.FiftyTwoWeekLow,
		YearHigh:          q.FiftyTwoWeekHigh,
		Volume:            float64(q.RegularMarketVolume),
		Open:              q.RegularMarketOpen,
		PreviousClose:     q.RegularMarketPreviousClose,
		Exchange:          q.FullExchangeName,
		Timestamp:         int64(q.RegularMarketTime),
	}
}
