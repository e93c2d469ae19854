package bot_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/mcoot/battleship-go2/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go2/internal/dependencies/random"
	"github.com/mcoot/battleship-go2/internal/model"
	"github.com/mcoot/battleship-go2/internal/services/bot"
)

type StrategySuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	strategy   *bot.RandomStrategy
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategySuite))
}

func (s *StrategySuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	s.strategy = bot.NewRandomStrategy(s.mockRandom)
}

func (s *StrategySuite) TestLayout_PlacesQueuedPositions() {
	// Horizontal 3 at (0,0), vertical 2 at (5,9)
	s.mockRandom.QueueIntn(0, 0, 0, 1, 5, 9)

	board := s.strategy.Layout(model.Fleet{3, 2})

	s.Require().NoError(board.Validate())
	s.Equal(5, board.ShipCells())
	for _, cell := range []int{0, 1, 2, 59, 69} {
		s.True(board.Occupied(cell), "cell %d", cell)
	}
	s.NotEqual(string(board[0]), string(board[59]))
}

func (s *StrategySuite) TestLayout_RetriesOverlap() {
	// Second ship first lands on the first, then moves to row 1
	s.mockRandom.QueueIntn(0, 0, 0, 0, 0, 0, 0, 1, 0)

	board := s.strategy.Layout(model.Fleet{2, 2})

	s.Equal(4, board.ShipCells())
	for _, cell := range []int{0, 1, 10, 11} {
		s.True(board.Occupied(cell), "cell %d", cell)
	}
}

func (s *StrategySuite) TestLayout_PacksWhenRandomPlacementFails() {
	// The mock returns 0 forever, so every ship after the first collides
	board := s.strategy.Layout(model.Fleet{3, 2})

	s.Equal(5, board.ShipCells())
	for _, cell := range []int{0, 1, 2, 3, 4} {
		s.True(board.Occupied(cell), "cell %d", cell)
	}
}

func (s *StrategySuite) TestChooseTarget_SkipsTriedCells() {
	tried := make([]bool, model.BoardCells)
	tried[0] = true
	tried[1] = true
	s.mockRandom.QueueIntn(0)

	s.Equal(2, s.strategy.ChooseTarget(tried))
}

func (s *StrategySuite) TestChooseTarget_NoneLeft() {
	tried := make([]bool, model.BoardCells)
	for i := range tried {
		tried[i] = true
	}

	s.Equal(-1, s.strategy.ChooseTarget(tried))
}

func TestPropertyLayoutCoversFleet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		sizes := rapid.SliceOfN(rapid.IntRange(1, 5), 1, 8).Draw(t, "fleet")
		fleet := model.Fleet(sizes)

		board := bot.NewRandomStrategy(random.NewSeeded(seed)).Layout(fleet)

		if err := board.Validate(); err != nil {
			t.Fatalf("invalid board: %v", err)
		}
		if got := board.ShipCells(); got != fleet.CellTotal() {
			t.Fatalf("expected %d ship cells, got %d", fleet.CellTotal(), got)
		}
	})
}

func TestPropertyChooseTargetNeverRepeats(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		strategy := bot.NewRandomStrategy(random.NewSeeded(seed))
		tried := make([]bool, model.BoardCells)

		for range model.BoardCells {
			target := strategy.ChooseTarget(tried)
			if target < 0 || target >= model.BoardCells || tried[target] {
				t.Fatalf("bad target %d", target)
			}
			tried[target] = true
		}
		if target := strategy.ChooseTarget(tried); target != -1 {
			t.Fatalf("expected -1 on a spent board, got %d", target)
		}
	})
}
