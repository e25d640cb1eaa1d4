package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPuzzle(s *Store) *Puzzle {
	return s.SavePuzzle(Generate(context.Background(), entries("CAT", "CAR", "ART"), 10))
}

func TestSaveAndGetPuzzle(t *testing.T) {
	s := NewStore()
	p := newTestPuzzle(s)

	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Same(t, p, s.GetPuzzle(p.ID))
	assert.Nil(t, s.GetPuzzle("nonexistent"))
}

func TestListPuzzles(t *testing.T) {
	s := NewStore()
	first := newTestPuzzle(s)
	time.Sleep(time.Millisecond)
	second := newTestPuzzle(s)

	list := s.ListPuzzles()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recent first")
	assert.Equal(t, first.ID, list[1].ID)
}

func TestCreateGame(t *testing.T) {
	s := NewStore()

	_, err := s.CreateGame("unknown")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	p := newTestPuzzle(s)
	game, err := s.CreateGame(p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, game.PuzzleID)
	assert.Same(t, p, game.Puzzle())
	state := game.GetState()
	require.Len(t, state, 10)
	assert.Len(t, state[0], 10)
	assert.Same(t, game, s.GetGame(game.ID))
	assert.Len(t, s.ListGames(), 1)
}

func TestGameAddPlayer(t *testing.T) {
	s := NewStore()
	game, _ := s.CreateGame(newTestPuzzle(s).ID)

	p1 := game.AddPlayer("Alice")
	p2 := game.AddPlayer("Bob")

	assert.Equal(t, "Alice", p1.Pseudo)
	assert.Equal(t, "Bob", p2.Pseudo)
	assert.NotEqual(t, p1.Color, p2.Color, "players should have different colors")

	// Adding same pseudo returns existing player.
	assert.Same(t, p1, game.AddPlayer("Alice"))

	game.RemovePlayer("Alice")
	assert.NotContains(t, game.Players(), "Alice")
	assert.Contains(t, game.Players(), "Bob")
}

func TestGameSetCell(t *testing.T) {
	s := NewStore()
	game, _ := s.CreateGame(newTestPuzzle(s).ID)

	assert.True(t, game.SetCell(0, 0, "A"))
	assert.False(t, game.SetCell(-1, 0, "X"), "negative row")
	assert.False(t, game.SetCell(0, 10, "X"), "out-of-bounds col")

	assert.Equal(t, "A", game.GetState()[0][0])
}

func TestGetStateCopy(t *testing.T) {
	s := NewStore()
	game, _ := s.CreateGame(newTestPuzzle(s).ID)
	game.SetCell(0, 0, "X")

	state := game.GetState()
	state[0][0] = "Z" // mutate the copy

	assert.Equal(t, "X", game.GetState()[0][0], "GetState should return a copy")
}

func TestGameCheck(t *testing.T) {
	s := NewStore()
	game, _ := s.CreateGame(newTestPuzzle(s).ID)

	for i, r := range "CAT" {
		game.SetCell(5, 3+i, string(r))
	}
	res := game.Check()
	assert.Equal(t, 7, res.Total)
	assert.Equal(t, 3, res.Correct)
	assert.False(t, res.Solved)

	for _, pos := range []Position{{6, 3}, {7, 3}, {6, 4}, {7, 4}} {
		want, _ := game.Puzzle().ExpectedLetter(pos.Row, pos.Col)
		game.SetCell(pos.Row, pos.Col, string(want))
	}
	assert.True(t, game.Check().Solved)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	game, _ := s.CreateGame(newTestPuzzle(s).ID)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			game.SetCell(i%10, i%10, "A")
			game.GetState()
			game.AddPlayer("player" + string(rune('A'+i%26)))
			game.Check()
			s.ListPuzzles()
		}(i)
	}
	wg.Wait()
}
