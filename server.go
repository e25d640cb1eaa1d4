package main

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

//go:embed frontend
var frontendFS embed.FS

const (
	maxBodySize       = 1 << 20 // 1 Mo
	defaultSuggestion = 12
	maxPseudoLen      = 20
)

// Server is the main HTTP server.
type Server struct {
	mux        *http.ServeMux
	store      *Store
	words      WordList
	suggester  WordSuggester
	sse        *Broadcaster
	logger     *slog.Logger
	generateRL *rateLimiter
	moveRL     *rateLimiter
}

// NewServer creates a configured HTTP server. words is the list used when a
// generation request brings neither words nor theme; suggester may be nil.
func NewServer(store *Store, words WordList, suggester WordSuggester, logger *slog.Logger) *Server {
	if words.Size == 0 {
		words.Size = DefaultGridSize
	}
	s := &Server{
		mux:        http.NewServeMux(),
		store:      store,
		words:      words,
		suggester:  suggester,
		sse:        NewBroadcaster(logger),
		logger:     logger,
		generateRL: newRateLimiter(10, time.Minute), // 10 puzzles/min per IP
		moveRL:     newRateLimiter(60, time.Second), // 60 moves/sec per IP
	}
	s.routes()
	return s
}

// Close stops the background work of the server.
func (s *Server) Close() {
	s.generateRL.stop()
	s.moveRL.stop()
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)
	s.mux.HandleFunc("GET /api/puzzles/{id}/solution", s.handleGetSolution)
	s.mux.HandleFunc("POST /api/puzzles/{id}/check", s.handleCheckPuzzle)

	// Game API
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/join", s.handleJoinGame)
	s.mux.HandleFunc("POST /api/games/{id}/move", s.handleMove)
	s.mux.HandleFunc("POST /api/games/{id}/check", s.handleCheckGame)
	s.mux.HandleFunc("GET /api/games/{id}/events", s.handleGameEvents)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /game/{id}", s.handleGamePage)
	s.mux.Handle("GET /", fileServer)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")

	logger := s.logger.With("method", r.Method, "path", r.URL.Path)
	s.mux.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
}

// --- Puzzle handlers ---

type generateRequest struct {
	Size  int         `json:"size" validate:"omitempty,min=5,max=40"`
	Theme string      `json:"theme" validate:"omitempty,max=80"`
	Count int         `json:"count" validate:"omitempty,min=2,max=30"`
	Words []WordEntry `json:"words" validate:"omitempty,max=100,dive"`
}

// POST /api/puzzles: generate a puzzle from the given words, from a theme,
// or from the default list.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())

	if !s.generateRL.allow(clientIP(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	var req generateRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	size := req.Size
	if size == 0 {
		size = s.words.Size
	}

	var words []WordEntry
	theme := strings.TrimSpace(req.Theme)
	switch {
	case len(req.Words) > 0:
		var err error
		if words, err = NormalizeWords(req.Words); err != nil {
			jsonError(w, "Mot invalide : lettres uniquement", http.StatusBadRequest)
			return
		}
	case theme != "":
		if s.suggester == nil {
			jsonError(w, "Suggestion de mots non configurée", http.StatusServiceUnavailable)
			return
		}
		count := req.Count
		if count == 0 {
			count = defaultSuggestion
		}
		var err error
		if words, err = s.suggester.SuggestWords(r.Context(), theme, count); err != nil {
			logger.Error("suggest words", "theme", theme, "error", err)
			jsonError(w, "Erreur lors de la suggestion de mots", http.StatusInternalServerError)
			return
		}
	default:
		words = s.words.Words
		theme = s.words.Theme
	}

	puzzle := Generate(r.Context(), words, size)
	puzzle.Theme = theme
	s.store.SavePuzzle(puzzle)

	placed := len(puzzle.PlacedWords())
	logger.Info("puzzle generated", "id", puzzle.ID, "size", size, "words", len(words), "placed", placed)
	if placed < len(words) {
		logger.Debug("some words were not placed", "id", puzzle.ID, "dropped", len(words)-placed)
	}

	writeJSON(w, http.StatusCreated, puzzle.Render())
}

type puzzleSummary struct {
	ID        string    `json:"id"`
	Theme     string    `json:"theme,omitempty"`
	Size      int       `json:"size"`
	Placed    int       `json:"placed"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	puzzles := s.store.ListPuzzles()
	list := make([]puzzleSummary, len(puzzles))
	for i, p := range puzzles {
		list[i] = puzzleSummary{
			ID:        p.ID,
			Theme:     p.Theme,
			Size:      p.Size,
			Placed:    len(p.PlacedWords()),
			Total:     len(p.Words),
			CreatedAt: p.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/puzzles/{id}: the puzzle as shown to solvers.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, puzzle.Render())
}

// GET /api/puzzles/{id}/solution: placements and filled grid.
func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, puzzle)
}

type checkRequest struct {
	Answers []Answer `json:"answers" validate:"max=1600,dive"`
}

// POST /api/puzzles/{id}/check: check answers without a game session.
func (s *Server) handleCheckPuzzle(w http.ResponseWriter, r *http.Request) {
	puzzle := s.store.GetPuzzle(r.PathValue("id"))
	if puzzle == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}

	var req checkRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	writeJSON(w, http.StatusOK, puzzle.Check(AnswerMap(req.Answers)))
}

// --- Game handlers ---

type createGameRequest struct {
	PuzzleID string `json:"puzzle_id" validate:"notblank"`
}

// POST /api/games: create a game from a puzzle.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	game, err := s.store.CreateGame(req.PuzzleID)
	if err != nil {
		if IsNotFound(err) {
			jsonError(w, "Grille introuvable", http.StatusNotFound)
			return
		}
		loggerFrom(r.Context()).Error("create game", "error", err)
		jsonError(w, "Erreur interne", http.StatusInternalServerError)
		return
	}

	loggerFrom(r.Context()).Info("game created", "game", game.ID, "puzzle", game.PuzzleID)
	writeJSON(w, http.StatusCreated, game)
}

// GET /api/games/{id}: current game state with the puzzle view.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		gameSnapshot
		Puzzle *View `json:"puzzle"`
	}{game.Snapshot(), game.Puzzle().Render()})
}

type joinRequest struct {
	Pseudo string `json:"pseudo" validate:"notblank"`
}

// POST /api/games/{id}/join: join a game with a pseudo.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req joinRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Pseudo invalide", http.StatusBadRequest)
		return
	}

	player := game.AddPlayer(pseudo)
	s.sse.Broadcast(game.ID, Event{Type: eventPlayerJoined, Pseudo: player.Pseudo, Color: player.Color})

	writeJSON(w, http.StatusOK, player)
}

type moveRequest struct {
	Pseudo string `json:"pseudo"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Value  string `json:"value"`
}

// POST /api/games/{id}/move: enter or erase a letter.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !s.moveRL.allow(clientIP(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req moveRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	// Value must be empty (erase) or a single letter A-Z.
	value := strings.ToUpper(strings.TrimSpace(req.Value))
	if value != "" && (utf8.RuneCountInString(value) != 1 || value < "A" || value > "Z") {
		jsonError(w, "Valeur invalide : une lettre A-Z ou vide", http.StatusBadRequest)
		return
	}

	puzzle := game.Puzzle()
	if puzzle.Grid.inBounds(req.Row, req.Col) {
		if _, open := puzzle.Grid.At(req.Row, req.Col); !open {
			jsonError(w, "Case noire", http.StatusBadRequest)
			return
		}
	}

	if !game.SetCell(req.Row, req.Col, value) {
		jsonError(w, "Position hors limites", http.StatusBadRequest)
		return
	}

	s.sse.Broadcast(game.ID, cellUpdateEvent(sanitizePseudo(req.Pseudo), req.Row, req.Col, value))
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/games/{id}/check: check the session's letters and share the result.
func (s *Server) handleCheckGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	result := game.Check()
	if result.Solved {
		loggerFrom(r.Context()).Info("game solved", "game", game.ID)
	}
	s.sse.Broadcast(game.ID, Event{Type: eventChecked, Result: &result})
	writeJSON(w, http.StatusOK, result)
}

// GET /api/games/{id}/events: SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	pseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))
	initial := Event{Type: eventGameState, State: game.GetState(), Players: game.Players()}

	s.sse.ServeSSE(w, r, game.ID, initial, func() {
		if pseudo == "" {
			return
		}
		game.RemovePlayer(pseudo)
		s.sse.Broadcast(game.ID, Event{Type: eventPlayerLeft, Pseudo: pseudo})
	})
}

// --- Frontend page handlers ---

// GET /game/{id}: serve the game page.
func (s *Server) handleGamePage(w http.ResponseWriter, _ *http.Request) {
	data, _ := frontendFS.ReadFile("frontend/game.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// --- Helpers ---

// decodeJSON reads and validates a request body, writing the error response
// itself. With allowEmpty an empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case allowEmpty && errors.Is(err, io.EOF):
		case errors.As(err, &tooLarge):
			jsonError(w, "Requête trop volumineuse", http.StatusRequestEntityTooLarge)
			return false
		default:
			jsonError(w, "Requête invalide", http.StatusBadRequest)
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		jsonError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxPseudoLen {
		s = string([]rune(s)[:maxPseudoLen])
	}
	return s
}
