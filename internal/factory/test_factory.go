package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/battleship-go2/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MockSettler *mocks.MockSettler
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockSettler := mocks.NewMockSettler()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, mockSettler, Options{
		ChallengeTTL:      30 * time.Second,
		RoomCodeLength:    5,
		Fleet:             model.DefaultFleet(),
		SettlementTimeout: time.Second,
	}, logger)

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MockSettler: mockSettler,
	}
}
