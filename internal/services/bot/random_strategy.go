package bot

import (
	"fmt"

	"github.com/mcoot/battleship-go2/internal/dependencies/random"
	"github.com/mcoot/battleship-go2/internal/model"
)

// maxPlacementAttempts bounds random placement per ship before packing it
const maxPlacementAttempts = 200

// RandomStrategy places ships at random and fires at random untried cells
type RandomStrategy struct {
	random random.Random
}

// Ensure RandomStrategy implements Strategy
var _ Strategy = (*RandomStrategy)(nil)

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Layout places each ship horizontally or vertically without overlap.
// A ship that cannot be placed at random is packed into the first free cells.
func (s *RandomStrategy) Layout(fleet model.Fleet) model.Board {
	board := make(model.Board, model.BoardCells)
	for i, size := range fleet {
		tag := fmt.Sprintf("ship-%d", i+1)
		if !s.placeRandomly(board, size, tag) {
			pack(board, size, tag)
		}
	}
	return board
}

func (s *RandomStrategy) placeRandomly(board model.Board, size int, tag string) bool {
	if size > BoardSide {
		return false
	}
	for range maxPlacementAttempts {
		horizontal := s.random.Intn(2) == 0
		var row, col, step int
		if horizontal {
			row = s.random.Intn(BoardSide)
			col = s.random.Intn(BoardSide - size + 1)
			step = 1
		} else {
			row = s.random.Intn(BoardSide - size + 1)
			col = s.random.Intn(BoardSide)
			step = BoardSide
		}

		start := row*BoardSide + col
		if !free(board, start, size, step) {
			continue
		}
		for k := range size {
			board[start+k*step] = model.ShipTag(tag)
		}
		return true
	}
	return false
}

func free(board model.Board, start, size, step int) bool {
	for k := range size {
		if board.Occupied(start + k*step) {
			return false
		}
	}
	return true
}

// pack fills the first size free cells in row-major order
func pack(board model.Board, size int, tag string) {
	for i := range board {
		if size == 0 {
			return
		}
		if !board.Occupied(i) {
			board[i] = model.ShipTag(tag)
			size--
		}
	}
}

// ChooseTarget picks a random cell that has not been tried
func (s *RandomStrategy) ChooseTarget(tried []bool) int {
	var open []int
	for i := range model.BoardCells {
		if i >= len(tried) || !tried[i] {
			open = append(open, i)
		}
	}
	if len(open) == 0 {
		return -1
	}
	return open[s.random.Intn(len(open))]
}
