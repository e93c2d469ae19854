package testutil

import "github.com/mcoot/battleship-go2/internal/model"

// Board returns a valid board with ships on the given cells
func Board(cells ...int) model.Board {
	board := make(model.Board, model.BoardCells)
	tag := model.ShipTag("ship")
	for _, cell := range cells {
		board[cell] = tag
	}
	return board
}

// FleetBoard returns a board with the default fleet laid out on cells 0 to 16
func FleetBoard() model.Board {
	return Board(FleetCells()...)
}

// FleetCells lists the occupied cells of FleetBoard
func FleetCells() []int {
	total := model.DefaultFleet().CellTotal()
	cells := make([]int, total)
	for i := range cells {
		cells[i] = i
	}
	return cells
}

// Player builds a player with a FleetBoard
func Player(id model.Identity, name string) model.Player {
	return model.Player{ID: id, Name: name, Board: FleetBoard()}
}
