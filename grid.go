package main

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// emptyMark represents an unoccupied cell in the textual form of a grid.
const emptyMark = '.'

// Cell is an occupied grid cell. Owner is the index in Puzzle.Words of the
// word that first wrote the cell.
type Cell struct {
	Letter rune
	Owner  int
}

// Grid is a square matrix of optional cells. The zero Cell marks an empty
// square.
type Grid struct {
	size  int
	cells [][]Cell
}

func newGrid(size int) *Grid {
	if size < 0 {
		size = 0
	}
	cells := make([][]Cell, size)
	for i := range cells {
		cells[i] = make([]Cell, size)
	}
	return &Grid{size: size, cells: cells}
}

// Size returns the side length of the grid.
func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// At returns the cell at (row, col) and whether it is occupied.
func (g *Grid) At(row, col int) (Cell, bool) {
	if !g.inBounds(row, col) {
		return Cell{}, false
	}
	c := g.cells[row][col]
	return c, c.Letter != 0
}

// fits reports whether a word of n letters starting at pl stays on the grid.
func (g *Grid) fits(n int, pl Placement) bool {
	dr, dc := pl.Direction.delta()
	return n > 0 && g.inBounds(pl.Row, pl.Col) && g.inBounds(pl.Row+dr*(n-1), pl.Col+dc*(n-1))
}

// accepts reports whether letters can be written at pl: on the grid, crossing
// at least one cell holding the same letter, and agreeing with every
// occupied cell it covers.
func (g *Grid) accepts(letters []rune, pl Placement) bool {
	if !g.fits(len(letters), pl) {
		return false
	}
	dr, dc := pl.Direction.delta()
	crossings := 0
	for i, r := range letters {
		c, ok := g.At(pl.Row+dr*i, pl.Col+dc*i)
		if !ok {
			continue
		}
		if c.Letter != r {
			return false
		}
		crossings++
	}
	return crossings > 0
}

// write stores letters at pl. Cells already holding a letter keep their
// owner.
func (g *Grid) write(letters []rune, pl Placement, owner int) error {
	if !g.fits(len(letters), pl) {
		return errors.Wrapf(ErrOutOfBounds, "%d letters %s at (%d,%d) on a %dx%d grid",
			len(letters), pl.Direction, pl.Row, pl.Col, g.size, g.size)
	}
	dr, dc := pl.Direction.delta()
	for i, r := range letters {
		cell := &g.cells[pl.Row+dr*i][pl.Col+dc*i]
		if cell.Letter == 0 {
			*cell = Cell{Letter: r, Owner: owner}
		}
	}
	return nil
}

// Rows returns the grid as strings, one per row, with '.' for empty cells.
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	var b strings.Builder
	for i, line := range g.cells {
		b.Reset()
		for _, c := range line {
			if c.Letter == 0 {
				b.WriteRune(emptyMark)
			} else {
				b.WriteRune(c.Letter)
			}
		}
		rows[i] = b.String()
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Size int      `json:"size"`
		Rows []string `json:"rows"`
	}{g.size, g.Rows()})
}
