package main

import (
	"context"
	"encoding/json"
	"sort"
	"time"
	"unicode/utf8"
)

// Direction is the orientation of a placed word.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

func (d Direction) perpendicular() Direction {
	if d == Across {
		return Down
	}
	return Across
}

// delta returns the row and column increments between two consecutive letters.
func (d Direction) delta() (int, int) {
	if d == Across {
		return 0, 1
	}
	return 1, 0
}

// WordEntry is one (word, clue) pair given to the generator.
// Text holds uppercase letters only, see NormalizeWord.
type WordEntry struct {
	Text string `json:"text" validate:"notblank,max=40"`
	Clue string `json:"clue" validate:"notblank,max=200"`
}

// Placement is the outcome of placing a single word. When Placed is false
// the other fields are zero and carry no meaning.
type Placement struct {
	Placed    bool
	Row       int
	Col       int
	Direction Direction
	Number    int
}

// PlacedWord pairs an input entry with its placement.
type PlacedWord struct {
	WordEntry
	Placement
}

// Len returns the number of letters of the word.
func (w PlacedWord) Len() int {
	return utf8.RuneCountInString(w.Text)
}

// MarshalJSON omits the coordinates of unplaced words.
func (w PlacedWord) MarshalJSON() ([]byte, error) {
	type placed struct {
		Text      string    `json:"text"`
		Clue      string    `json:"clue"`
		Placed    bool      `json:"placed"`
		Row       *int      `json:"row,omitempty"`
		Col       *int      `json:"col,omitempty"`
		Direction Direction `json:"direction,omitempty"`
		Number    int       `json:"number,omitempty"`
	}
	out := placed{Text: w.Text, Clue: w.Clue, Placed: w.Placed}
	if w.Placed {
		row, col := w.Row, w.Col
		out.Row, out.Col = &row, &col
		out.Direction = w.Direction
		out.Number = w.Number
	}
	return json.Marshal(out)
}

// Puzzle is a generated crossword: the words with their placements and the
// filled grid. It is read-only once Generate returns.
type Puzzle struct {
	ID        string       `json:"id"`
	Theme     string       `json:"theme,omitempty"`
	Size      int          `json:"size"`
	Words     []PlacedWord `json:"words"`
	Grid      *Grid        `json:"grid"`
	CreatedAt time.Time    `json:"created_at"`
}

// Generate places words on a size×size grid.
//
// Words are tried longest first (stable on ties). The first one that fits is
// placed across in the middle of the grid; every following word is laid
// perpendicular to the first already-placed word it shares a letter with and
// can cross without conflict. Words that cannot be placed are kept in the
// result with Placed == false. The returned Words preserve the input order.
// A rejected write is logged through the logger carried by ctx.
func Generate(ctx context.Context, words []WordEntry, size int) *Puzzle {
	p := &Puzzle{
		Size:  size,
		Words: make([]PlacedWord, len(words)),
		Grid:  newGrid(size),
	}
	for i, w := range words {
		p.Words[i].WordEntry = w
	}

	order := make([]int, len(words))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Words[order[a]].Len() > p.Words[order[b]].Len()
	})

	var placed []int // indices into p.Words, in placement order
	number := 1
	for _, idx := range order {
		letters := []rune(p.Words[idx].Text)
		if len(letters) == 0 {
			continue
		}

		var candidate Placement
		if len(placed) == 0 {
			candidate = p.seed(letters)
		} else {
			candidate = p.cross(letters, placed)
		}
		if !candidate.Placed {
			continue
		}

		candidate.Number = number
		if err := p.Grid.write(letters, candidate, idx); err != nil {
			loggerFrom(ctx).Error("crossword: rejected placement", "word", p.Words[idx].Text, "error", err)
			continue
		}
		p.Words[idx].Placement = candidate
		placed = append(placed, idx)
		number++
	}
	return p
}

// seed centers the first word horizontally.
func (p *Puzzle) seed(letters []rune) Placement {
	candidate := Placement{
		Placed:    true,
		Row:       p.Size / 2,
		Col:       (p.Size - len(letters)) / 2,
		Direction: Across,
	}
	if !p.Grid.fits(len(letters), candidate) {
		return Placement{}
	}
	return candidate
}

// cross looks for the first placed word offering a valid intersection.
// Only the first shared letter pair of each placed word is tried.
func (p *Puzzle) cross(letters []rune, placed []int) Placement {
	for _, idx := range placed {
		other := p.Words[idx]
		i1, i2, ok := firstShared(letters, []rune(other.Text))
		if !ok {
			continue
		}

		candidate := Placement{Placed: true, Direction: other.Direction.perpendicular()}
		if other.Direction == Across {
			candidate.Row, candidate.Col = other.Row-i1, other.Col+i2
		} else {
			candidate.Row, candidate.Col = other.Row+i2, other.Col-i1
		}
		if p.Grid.accepts(letters, candidate) {
			return candidate
		}
	}
	return Placement{}
}

// firstShared returns the earliest position in w, then the earliest position
// in other, holding the same letter.
func firstShared(w, other []rune) (int, int, bool) {
	for i1, a := range w {
		for i2, b := range other {
			if a == b {
				return i1, i2, true
			}
		}
	}
	return 0, 0, false
}

// ExpectedLetter returns the solution letter at (row, col).
func (p *Puzzle) ExpectedLetter(row, col int) (rune, bool) {
	c, ok := p.Grid.At(row, col)
	if !ok {
		return 0, false
	}
	return c.Letter, true
}

// PlacedWords returns the placed words ordered by clue number.
func (p *Puzzle) PlacedWords() []PlacedWord {
	out := make([]PlacedWord, 0, len(p.Words))
	for _, w := range p.Words {
		if w.Placed {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
