package main

import (
	"encoding/json"
	"maps"
	"sync"
	"time"
)

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameSession is a shared attempt at solving one puzzle.
type GameSession struct {
	ID        string
	PuzzleID  string
	CreatedAt time.Time

	puzzle  *Puzzle
	mu      sync.Mutex
	players map[string]*Player
	state   [][]string // entered letters [row][col]
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

func newGameSession(id string, p *Puzzle) *GameSession {
	state := make([][]string, p.Size)
	for i := range state {
		state[i] = make([]string, p.Size)
	}
	return &GameSession{
		ID:        id,
		PuzzleID:  p.ID,
		CreatedAt: time.Now(),
		puzzle:    p,
		players:   make(map[string]*Player),
		state:     state,
	}
}

// Puzzle returns the puzzle being solved.
func (g *GameSession) Puzzle() *Puzzle {
	return g.puzzle
}

// AddPlayer adds a player to the session and returns it. Joining twice with
// the same pseudo returns the existing player.
func (g *GameSession) AddPlayer(pseudo string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(g.players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	g.players[pseudo] = p
	return p
}

// RemovePlayer removes a player from the session.
func (g *GameSession) RemovePlayer(pseudo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, pseudo)
}

// Players returns a copy of the connected players keyed by pseudo.
func (g *GameSession) Players() map[string]*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return maps.Clone(g.players)
}

// SetCell sets a letter at a given position. Returns false if out of bounds.
func (g *GameSession) SetCell(row, col int, value string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if row < 0 || row >= len(g.state) || col < 0 || col >= len(g.state[row]) {
		return false
	}
	g.state[row][col] = value
	return true
}

// GetState returns a copy of the entered letters.
func (g *GameSession) GetState() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	cp := make([][]string, len(g.state))
	for i, row := range g.state {
		cp[i] = make([]string, len(row))
		copy(cp[i], row)
	}
	return cp
}

// Check compares the entered letters with the solution.
func (g *GameSession) Check() CheckResult {
	g.mu.Lock()
	entries := make(map[Position]string)
	for row, line := range g.state {
		for col, v := range line {
			if v != "" {
				entries[Position{row, col}] = v
			}
		}
	}
	g.mu.Unlock()

	return g.puzzle.Check(entries)
}

type gameSnapshot struct {
	ID        string             `json:"id"`
	PuzzleID  string             `json:"puzzle_id"`
	Players   map[string]*Player `json:"players"`
	State     [][]string         `json:"state"`
	CreatedAt time.Time          `json:"created_at"`
}

// Snapshot returns a copy of the session suitable for encoding.
func (g *GameSession) Snapshot() gameSnapshot {
	return gameSnapshot{
		ID:        g.ID,
		PuzzleID:  g.PuzzleID,
		Players:   g.Players(),
		State:     g.GetState(),
		CreatedAt: g.CreatedAt,
	}
}

func (g *GameSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}
