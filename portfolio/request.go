package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glbter/stock-portfolio/entities"
)

const (
	MinAmount     = 5000
	MaxStrategies = 2
)

var (
	ErrInvalidJSON         = errors.New("invalid json")
	ErrMissingFields       = errors.New("missing fields")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidStrategyList = errors.New("invalid strategy list")
	ErrUnknownStrategy     = errors.New("unknown strategy")
)

// ValidationError is a client error. Message is safe to return to the caller.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, msg string) *ValidationError {
	return &ValidationError{Err: err, Message: msg}
}

type Request struct {
	Amount     float64
	Strategies []entities.StrategyName
}

// ParseRequest decodes and validates a portfolio request body. Checks run in a fixed
// order and the first failing one is returned.
func (s *Service) ParseRequest(body []byte) (Request, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return Request{}, invalid(ErrInvalidJSON, "Invalid JSON data")
	}

	rawStrategies, rawAmount := fields["strategies"], fields["amount"]
	if !truthy(rawStrategies) || !truthy(rawAmount) {
		return Request{}, invalid(ErrMissingFields, "Strategies and amount are required")
	}

	amount, ok := rawAmount.(float64)
	if !ok || amount < MinAmount {
		return Request{}, invalid(ErrInvalidAmount, fmt.Sprintf("Amount must be a number at least %d", MinAmount))
	}

	list, ok := rawStrategies.([]any)
	if !ok || len(list) > MaxStrategies {
		return Request{}, invalid(ErrInvalidStrategyList, fmt.Sprintf("Strategies must be a list with at most %d items", MaxStrategies))
	}

	strategies := make([]entities.StrategyName, 0, len(list))
	for _, raw := range list {
		name, ok := raw.(string)
		if !ok || !s.catalog.Has(entities.StrategyName(name)) {
			return Request{}, invalid(ErrUnknownStrategy, fmt.Sprintf("Invalid strategy: %v", raw))
		}
		strategies = append(strategies, entities.StrategyName(name))
	}

	return Request{Amount: amount, Strategies: strategies}, nil
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
