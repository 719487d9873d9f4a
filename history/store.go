// Package history derives portfolio identifiers and keeps a short rolling value
// history for each of them in memory.
package history

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glbter/stock-portfolio/entities"
)

const (
	Length = 5

	DateLayout = "2006-01-02"
)

var (
	backfillBase = decimal.RequireFromString("0.95")
	maxSwing     = decimal.RequireFromString("0.03")
)

// Source supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// ComputeID is independent of the order of strategies, so requests for the same amount
// and strategy set share one history.
func ComputeID(amount float64, strategies []entities.StrategyName) string {
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, string(s))
	}
	sort.Strings(names)

	return strconv.FormatFloat(amount, 'f', -1, 64) + "_" + strings.Join(names, "-")
}

type Store struct {
	mu     sync.Mutex
	rnd    Source
	series map[string][]entities.HistoryPoint
}

func NewStore(rnd Source) *Store {
	return &Store{
		rnd:    rnd,
		series: make(map[string][]entities.HistoryPoint),
	}
}

// Record stores total as the value of id for today and returns the resulting series.
// The first time an id is seen the four preceding days are backfilled.
func (s *Store) Record(id string, total float64, today time.Time) []entities.HistoryPoint {
	day := today.Format(DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	points, ok := s.series[id]
	switch {
	case !ok:
		points = s.backfill(total, today)
	case points[len(points)-1].Date == day:
		points[len(points)-1].Value = total
	default:
		points = append(points, entities.HistoryPoint{Date: day, Value: total})
		if len(points) > Length {
			points = append([]entities.HistoryPoint(nil), points[len(points)-Length:]...)
		}
	}
	s.series[id] = points

	return clone(points)
}

func (s *Store) History(id string) []entities.HistoryPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clone(s.series[id])
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.series)
}

// backfill must be called with s.mu held.
func (s *Store) backfill(total float64, today time.Time) []entities.HistoryPoint {
	points := make([]entities.HistoryPoint, 0, Length)

	value := decimal.NewFromFloat(total).Mul(backfillBase)
	for daysAgo := Length - 1; daysAgo > 0; daysAgo-- {
		value = value.Mul(decimal.NewFromInt(1).Add(s.swing())).Round(2)
		points = append(points, entities.HistoryPoint{
			Date:  today.AddDate(0, 0, -daysAgo).Format(DateLayout),
			Value: value.InexactFloat64(),
		})
	}

	return append(points, entities.HistoryPoint{Date: today.Format(DateLayout), Value: total})
}

// swing is uniform in [-maxSwing, maxSwing).
func (s *Store) swing() decimal.Decimal {
	u := decimal.NewFromFloat(s.rnd.Float64())
	return u.Mul(maxSwing.Mul(decimal.NewFromInt(2))).Sub(maxSwing)
}

func clone(points []entities.HistoryPoint) []entities.HistoryPoint {
	res := make([]entities.HistoryPoint, len(points))
	copy(res, points)

	return res
}
