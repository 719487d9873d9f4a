package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glbter/stock-portfolio/entities"
)

const DefaultURL = "https://financialmodelingprep.com/api/v3"

var ErrMalformedQuote = errors.New("malformed quote payload")

// QuoteClient fetches quotes from the Financial Modeling Prep quote endpoint.
type QuoteClient struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
}

func NewClient(url, apiKey string, timeout time.Duration, logger *zap.Logger) QuoteClient {
	return QuoteClient{
		client: resty.New().SetBaseURL(url).SetTimeout(timeout),
		apiKey: apiKey,
		logger: logger.With(zap.String("caller", "QuoteClient")),
	}
}

// Quotes returns one slot per ticker, in input order. A ticker that could not be fetched
// leaves a nil slot. Only malformed payloads are returned as errors.
func (qc QuoteClient) Quotes(ctx context.Context, tickers []entities.StockTicker) ([]*entities.Quote, error) {
	res := make([]*entities.Quote, len(tickers))

	g, ctx := errgroup.WithContext(ctx)
	for i, ticker := range tickers {
		g.Go(func() error {
			q, err := qc.quote(ctx, ticker)
			if err != nil {
				return err
			}
			res[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

type quoteResp struct {
	entities.Quote
	Price *float64 `json:"price"`
}

func (qc QuoteClient) quote(ctx context.Context, ticker entities.StockTicker) (*entities.Quote, error) {
	logger := qc.logger.With(zap.String("method", "Quote"), zap.String("ticker", string(ticker)))

	start := time.Now()
	resp, err := qc.client.R().
		SetContext(ctx).
		SetPathParam("ticker", string(ticker)).
		SetQueryParam("apikey", qc.apiKey).
		Get("/quote/{ticker}")
	logger.Debug("finish request", zap.Duration("duration", time.Since(start)))
	if err != nil {
		logger.Error(fmt.Errorf("send Get request: %w", err).Error())
		return nil, nil
	}

	if resp.StatusCode() != http.StatusOK {
		logger.Error(fmt.Sprintf("responded with %v http code", resp.StatusCode()))
		return nil, nil
	}

	var data []quoteResp
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrMalformedQuote, ticker, err)
	}

	if len(data) == 0 {
		logger.Error("no data available")
		return nil, nil
	}

	if data[0].Price == nil {
		return nil, fmt.Errorf("%w for %s: missing price", ErrMalformedQuote, ticker)
	}

	q := data[0].Quote
	q.Price = *data[0].Price
	if q.Symbol == "" {
		q.Symbol = ticker
	}

	return &q, nil
}
