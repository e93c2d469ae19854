package bot

import "github.com/mcoot/battleship-go2/internal/model"

// BoardSide is the width and height of the square board
const BoardSide = 10

// Strategy defines how a bot lays out its fleet and picks targets
type Strategy interface {
	// Layout places every ship of the fleet on a fresh board
	Layout(fleet model.Fleet) model.Board
	// ChooseTarget selects a cell that has not been fired at yet, or -1 if none remain
	ChooseTarget(tried []bool) int
}
