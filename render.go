package main

import (
	"strings"
	"unicode/utf8"
)

// CellView is what the solver sees of one grid cell.
type CellView struct {
	Open   bool `json:"open"`
	Number int  `json:"number,omitempty"`
}

// Clue is one entry of the across or down clue list.
type Clue struct {
	Number int    `json:"number"`
	Text   string `json:"clue"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Length int    `json:"length"`
}

// View is the renderable form of a puzzle. It never carries solution letters.
type View struct {
	ID     string       `json:"id"`
	Theme  string       `json:"theme,omitempty"`
	Size   int          `json:"size"`
	Cells  [][]CellView `json:"cells"`
	Across []Clue       `json:"across"`
	Down   []Clue       `json:"down"`
}

// Render builds the grid of input cells with clue numbers and the two clue
// lists, both ordered by clue number.
func (p *Puzzle) Render() *View {
	v := &View{
		ID:     p.ID,
		Theme:  p.Theme,
		Size:   p.Size,
		Cells:  make([][]CellView, p.Size),
		Across: []Clue{},
		Down:   []Clue{},
	}
	for row := range v.Cells {
		v.Cells[row] = make([]CellView, p.Size)
		for col := range v.Cells[row] {
			_, v.Cells[row][col].Open = p.Grid.At(row, col)
		}
	}

	for _, w := range p.PlacedWords() {
		start := &v.Cells[w.Row][w.Col]
		// Across and down words may share a start cell, keep the first number.
		if start.Number == 0 {
			start.Number = w.Number
		}

		clue := Clue{Number: w.Number, Text: w.Clue, Row: w.Row, Col: w.Col, Length: w.Len()}
		if w.Direction == Across {
			v.Across = append(v.Across, clue)
		} else {
			v.Down = append(v.Down, clue)
		}
	}
	return v
}

// Position addresses a grid cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Answer is a letter entered by the solver.
type Answer struct {
	Row   int    `json:"row" validate:"min=0"`
	Col   int    `json:"col" validate:"min=0"`
	Value string `json:"value" validate:"max=4"`
}

// Mark is the verdict on a single occupied cell.
type Mark struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Correct bool `json:"correct"`
}

// CheckResult holds one mark per occupied cell, in row-major order.
type CheckResult struct {
	Marks   []Mark `json:"marks"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Solved  bool   `json:"solved"`
}

// Check compares entered letters with the solution, ignoring case. Missing
// entries count as incorrect; entries on empty or off-grid cells are ignored.
func (p *Puzzle) Check(entries map[Position]string) CheckResult {
	res := CheckResult{Marks: []Mark{}}
	for row := 0; row < p.Size; row++ {
		for col := 0; col < p.Size; col++ {
			want, ok := p.ExpectedLetter(row, col)
			if !ok {
				continue
			}
			got := strings.TrimSpace(entries[Position{row, col}])
			m := Mark{Row: row, Col: col, Correct: sameLetter(got, want)}
			if m.Correct {
				res.Correct++
			}
			res.Total++
			res.Marks = append(res.Marks, m)
		}
	}
	res.Solved = res.Total > 0 && res.Correct == res.Total
	return res
}

// sameLetter reports whether entry is the single letter want, in either
// case. Only ASCII lowercase is folded, so look-alikes such as the long s or
// the Kelvin sign never match.
func sameLetter(entry string, want rune) bool {
	r, n := utf8.DecodeRuneInString(entry)
	if n == 0 || n != len(entry) {
		return false
	}
	if 'a' <= r && r <= 'z' {
		r -= 'a' - 'A'
	}
	return r == want
}

// AnswerMap indexes answers by position; later answers win.
func AnswerMap(answers []Answer) map[Position]string {
	m := make(map[Position]string, len(answers))
	for _, a := range answers {
		m[Position{a.Row, a.Col}] = a.Value
	}
	return m
}
