package entities

import "time"

type StrategyName string

type StockTicker string

// Quote is a single provider quote. Only Price is required, the rest is passed
// through to the client as received.
type Quote struct {
	Symbol            StockTicker `json:"symbol"`
	Name              string      `json:"name,omitempty"`
	Price             float64     `json:"price"`
	Change            float64     `json:"change"`
	ChangesPercentage float64     `json:"changesPercentage"`
	DayLow            float64     `json:"dayLow,omitempty"`
	DayHigh           float64     `json:"dayHigh,omitempty"`
	YearLow           float64     `json:"yearLow,omitempty"`
	YearHigh          float64     `json:"yearHigh,omitempty"`
	MarketCap         float64     `json:"marketCap,omitempty"`
	Volume            float64     `json:"volume,omitempty"`
	AvgVolume         float64     `json:"avgVolume,omitempty"`
	Open              float64     `json:"open,omitempty"`
	PreviousClose     float64     `json:"previousClose,omitempty"`
	Exchange          string      `json:"exchange,omitempty"`
	EPS               float64     `json:"eps,omitempty"`
	PE                float64     `json:"pe,omitempty"`
	Timestamp         int64       `json:"timestamp,omitempty"`
}

type StockPosition struct {
	Quote
	Shares          float64 `json:"shares"`
	AllocatedAmount float64 `json:"allocated_amount"`
	CurrentValue    float64 `json:"current_value"`
}

type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type PortfolioInput struct {
	Amount     float64        `json:"amount"`
	Strategies []StrategyName `json:"strategies"`
}

type Allocation struct {
	Amounts []float64 `json:"amounts"`
}

type StrategyResult struct {
	Strategy      StrategyName    `json:"strategy"`
	Stocks        []StockPosition `json:"stocks"`
	StrategyValue float64         `json:"strategy_value"`
}

type PortfolioResp struct {
	Input       PortfolioInput   `json:"input"`
	Allocation  Allocation       `json:"allocation"`
	Results     []StrategyResult `json:"results"`
	PortfolioID string           `json:"portfolio_id"`
	TotalValue  float64          `json:"total_value"`
	History     []HistoryPoint   `json:"history"`
}

// PortfolioSnapshot is published to the message broker after every generated portfolio.
type PortfolioSnapshot struct {
	PortfolioID string         `json:"portfolio_id"`
	CID         string         `json:"cid"`
	Amount      float64        `json:"amount"`
	Strategies  []StrategyName `json:"strategies"`
	TotalValue  float64        `json:"total_value"`
	GeneratedAt time.Time      `json:"generated_at"`
}
