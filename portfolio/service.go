// Package portfolio builds mocked portfolios from strategies and a cash amount and
// keeps track of their value over time.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/glbter/stock-portfolio/allocation"
	"github.com/glbter/stock-portfolio/entities"
	"github.com/glbter/stock-portfolio/history"
	"github.com/glbter/stock-portfolio/strategy"
)

// QuoteClient returns quotes aligned with tickers, nil where a ticker could not be fetched.
type QuoteClient interface {
	Quotes(ctx context.Context, tickers []entities.StockTicker) ([]*entities.Quote, error)
}

type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snapshot entities.PortfolioSnapshot) error
}

type Service struct {
	catalog   strategy.Catalog
	quotes    QuoteClient
	store     *history.Store
	publisher SnapshotPublisher
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Service)

// WithPublisher publishes a snapshot of every generated portfolio.
func WithPublisher(p SnapshotPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(catalog strategy.Catalog, quotes QuoteClient, store *history.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		quotes:  quotes,
		store:   store,
		now:     time.Now,
		logger:  logger.With(zap.String("caller", "PortfolioService")),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Strategies() []entities.StrategyName {
	return s.catalog.Names()
}

func (s *Service) History(id string) []entities.HistoryPoint {
	return s.store.History(id)
}

// Generate allocates req.Amount across the stocks of every requested strategy and
// records the combined value in the portfolio's history.
func (s *Service) Generate(ctx context.Context, cid string, req Request) (entities.PortfolioResp, error) {
	logger := s.logger.With(zap.String("method", "Generate"), zap.String("cid", cid))

	amount := decimal.NewFromFloat(req.Amount)

	amounts := allocation.Amounts(amount)
	resp := entities.PortfolioResp{
		Input: entities.PortfolioInput{
			Amount:     req.Amount,
			Strategies: req.Strategies,
		},
		Allocation: entities.Allocation{Amounts: make([]float64, 0, len(amounts))},
		Results:    make([]entities.StrategyResult, 0, len(req.Strategies)),
	}
	for _, a := range amounts {
		resp.Allocation.Amounts = append(resp.Allocation.Amounts, a.InexactFloat64())
	}

	total := decimal.Zero
	for _, name := range req.Strategies {
		tickers, err := s.catalog.Tickers(name)
		if err != nil {
			return entities.PortfolioResp{}, fmt.Errorf("resolve tickers: %w", err)
		}

		quotes, err := s.quotes.Quotes(ctx, tickers)
		if err != nil {
			return entities.PortfolioResp{}, fmt.Errorf("fetch quotes for %s: %w", name, err)
		}

		res, err := allocation.Allocate(amount, quotes)
		if err != nil {
			return entities.PortfolioResp{}, fmt.Errorf("allocate %s: %w", name, err)
		}

		if len(res.Positions) < len(tickers) {
			logger.Warn("strategy is under-allocated",
				zap.String("strategy", string(name)),
				zap.Int("fetched", len(res.Positions)),
				zap.Int("expected", len(tickers)),
			)
		}

		resp.Results = append(resp.Results, entities.StrategyResult{
			Strategy:      name,
			Stocks:        res.Positions,
			StrategyValue: res.Value.InexactFloat64(),
		})
		total = total.Add(res.Value)
	}

	now := s.now()
	resp.PortfolioID = history.ComputeID(req.Amount, req.Strategies)
	resp.TotalValue = total.InexactFloat64()
	resp.History = s.store.Record(resp.PortfolioID, resp.TotalValue, now)

	if s.publisher != nil {
		err := s.publisher.PublishSnapshot(ctx, entities.PortfolioSnapshot{
			PortfolioID: resp.PortfolioID,
			CID:         cid,
			Amount:      req.Amount,
			Strategies:  req.Strategies,
			TotalValue:  resp.TotalValue,
			GeneratedAt: now.UTC(),
		})
		if err != nil {
			logger.Error(fmt.Errorf("publish snapshot: %w", err).Error())
		}
	}

	logger.Info("portfolio generated",
		zap.String("portfolio_id", resp.PortfolioID),
		zap.Float64("total_value", resp.TotalValue),
	)

	return resp, nil
}
