package model

// Fleet lists the ship sizes every board must carry
type Fleet []int

// DefaultFleet is the classic five-ship fleet
func DefaultFleet() Fleet {
	return Fleet{5, 4, 3, 3, 2}
}

// CellTotal is the number of hits needed to sink the whole fleet
func (f Fleet) CellTotal() int {
	total := 0
	for _, size := range f {
		total += size
	}
	return total
}
