package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/settlement"
)

// MockSettler records settlement calls and optionally fails them
type MockSettler struct {
	mu      sync.Mutex
	Err     error
	results []model.MatchResult

	// Calls receives every result as it is settled
	Calls chan model.MatchResult
}

// Ensure MockSettler implements Settler
var _ settlement.Settler = (*MockSettler)(nil)

// NewMockSettler creates a MockSettler with a buffered Calls channel
func NewMockSettler() *MockSettler {
	return &MockSettler{Calls: make(chan model.MatchResult, 16)}
}

// Settle records the result and returns Err
func (s *MockSettler) Settle(ctx context.Context, result model.MatchResult) error {
	s.mu.Lock()
	s.results = append(s.results, result)
	err := s.Err
	s.mu.Unlock()

	select {
	case s.Calls <- result:
	default:
	}
	return err
}

// Results returns every settled result
func (s *MockSettler) Results() []model.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MatchResult, len(s.results))
	copy(out, s.results)
	return out
}
