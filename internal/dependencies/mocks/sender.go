package mocks

import (
	"sync"

	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/realtime"
)

// Delivery is one event recorded by MockSender.
// Broadcasts are recorded with an empty To.
type Delivery struct {
	To    model.Identity
	Event model.Event
}

// MockSender records every event instead of writing to connections
type MockSender struct {
	mu         sync.Mutex
	deliveries []Delivery
}

// Ensure MockSender implements Sender
var _ realtime.Sender = (*MockSender)(nil)

// NewMockSender creates an empty MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records a targeted event
func (s *MockSender) Send(to model.Identity, event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, Delivery{To: to, Event: event})
}

// Broadcast records an event addressed to every connection
func (s *MockSender) Broadcast(event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, Delivery{Event: event})
}

// All returns a copy of everything recorded so far
func (s *MockSender) All() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

// To returns the events delivered to one identity, in order
func (s *MockSender) To(id model.Identity) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []model.Event
	for _, d := range s.deliveries {
		if d.To == id {
			events = append(events, d.Event)
		}
	}
	return events
}

// Named returns every delivery of the given event name
func (s *MockSender) Named(name model.EventName) []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Delivery
	for _, d := range s.deliveries {
		if d.Event.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// Broadcasts returns how many broadcasts were recorded
func (s *MockSender) Broadcasts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, d := range s.deliveries {
		if d.To == "" {
			count++
		}
	}
	return count
}

// Reset forgets all recorded deliveries
func (s *MockSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = nil
}
