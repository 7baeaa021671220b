package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bodul/wordsearch/wordbank"
	"github.com/bodul/wordsearch/wordsearch"
)

const (
	wordsPerGame   = 5
	wordsPerTheme  = 13
	minGridSize    = 4
	maxGridSize    = 20
	maxWordsInGame = 20
	minTimeLimit   = 10
	maxTimeLimit   = 3600
)

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	store    *Store
	words    *wordbank.Store
	gemini   wordSuggester
	sse      *Broadcaster
	themeRL  *rateLimiter
	selectRL *rateLimiter
}

// NewServer creates a configured HTTP server. gemini may be nil, in which case
// only themes already in the word bank can be played.
func NewServer(words *wordbank.Store, gemini wordSuggester) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		words:    words,
		gemini:   gemini,
		sse:      NewBroadcaster(),
		themeRL:  newRateLimiter(5, time.Minute),  // 5 themes/min per IP
		selectRL: newRateLimiter(20, time.Second), // 20 drags/sec per IP
	}
	s.store = NewStore(s.onGameEvent)
	s.routes()
	return s
}

// Run sweeps the rate limiters until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.themeRL.run(ctx)
	s.selectRL.run(ctx)
}

func (s *Server) routes() {
	// Theme API
	s.mux.HandleFunc("GET /api/themes", s.handleListThemes)
	s.mux.HandleFunc("POST /api/themes", s.handleCreateTheme)
	s.mux.HandleFunc("GET /api/themes/{name}", s.handleGetTheme)

	// Game API
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("DELETE /api/games/{id}", s.handleDeleteGame)
	s.mux.HandleFunc("POST /api/games/{id}/start", s.handleStartGame)
	s.mux.HandleFunc("POST /api/games/{id}/reset", s.handleResetGame)
	s.mux.HandleFunc("POST /api/games/{id}/join", s.handleJoinGame)
	s.mux.HandleFunc("POST /api/games/{id}/select", s.handleSelect)
	s.mux.HandleFunc("GET /api/games/{id}/events", s.handleGameEvents)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	s.mux.ServeHTTP(w, r)
}

// onGameEvent forwards session events to the game's SSE clients. Terminal
// events are also logged as the game's analytics record.
func (s *Server) onGameEvent(g *GameSession, e wordsearch.Event) {
	if e.Result != nil {
		log.Printf("analytics game=%s theme=%s event=%s found=%d/%d score=%d remaining=%ds elapsed=%s",
			g.ID, g.Theme, e.Type, e.Result.WordsFound, e.Result.TotalWords,
			e.Result.Score, e.Result.Remaining, e.Result.Elapsed.Round(time.Second))
	}
	if err := s.sse.Broadcast(g.ID, e); err != nil {
		log.Printf("Diffusion impossible pour la partie %s : %v", g.ID, err)
	}
}

// --- Theme handlers ---

// GET /api/themes — list theme names.
func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.words.Themes(r.Context())
	if err != nil {
		log.Printf("List themes error: %v", err)
		jsonError(w, "Erreur de lecture des thèmes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}

// GET /api/themes/{name} — words of a theme.
func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	entries, err := s.words.Entries(r.Context(), r.PathValue("name"))
	if errors.Is(err, wordbank.ErrUnknownTheme) {
		jsonError(w, "Thème introuvable", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Theme entries error: %v", err)
		jsonError(w, "Erreur de lecture du thème", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// POST /api/themes — ask Gemini for a new themed word list and store it.
func (s *Server) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	if !s.themeRL.allow(clientKey(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Name   string `json:"name"`
		MaxLen int    `json:"max_len"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || wordbank.ThemeName(req.Name) == "" {
		jsonError(w, "Champ 'name' requis", http.StatusBadRequest)
		return
	}
	if req.MaxLen == 0 {
		req.MaxLen = wordsearch.DefaultSize
	}
	if req.MaxLen < 3 || req.MaxLen > maxGridSize {
		jsonError(w, "Longueur maximale invalide", http.StatusBadRequest)
		return
	}

	entries, err := s.suggestTheme(r.Context(), req.Name, req.MaxLen)
	if err != nil {
		s.themeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"name":    wordbank.ThemeName(req.Name),
		"entries": entries,
	})
}

var errNoSuggester = errors.New("word suggestion not configured")

// suggestTheme asks Gemini for a theme and saves the result in the word bank.
func (s *Server) suggestTheme(ctx context.Context, name string, maxLen int) ([]wordbank.Entry, error) {
	if s.gemini == nil {
		return nil, errNoSuggester
	}
	entries, err := s.gemini.SuggestWords(ctx, wordbank.ThemeName(name), wordsPerTheme, maxLen)
	if err != nil {
		return nil, err
	}
	if err := s.words.SaveTheme(ctx, name, entries); err != nil {
		return nil, err
	}
	log.Printf("Thème %q généré (%d mots)", wordbank.ThemeName(name), len(entries))
	return entries, nil
}

func (s *Server) themeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNoSuggester) {
		jsonError(w, "Génération de thèmes non configurée", http.StatusServiceUnavailable)
		return
	}
	log.Printf("Theme generation error: %v", err)
	jsonError(w, "Erreur lors de la génération du thème", http.StatusBadGateway)
}

// --- Game handlers ---

type createGameRequest struct {
	Theme     string   `json:"theme"`
	Words     []string `json:"words"`
	Count     int      `json:"count"`
	Size      int      `json:"size"`
	TimeLimit int      `json:"time_limit"`
}

// POST /api/games — create a game from a theme or an explicit word list.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "Requête invalide", http.StatusBadRequest)
			return
		}
	}
	if req.Count == 0 {
		req.Count = wordsPerGame
	}
	if req.Size == 0 {
		req.Size = wordsearch.DefaultSize
	}
	if req.TimeLimit == 0 {
		req.TimeLimit = wordsearch.DefaultTimeLimit
	}
	switch {
	case req.Size < minGridSize || req.Size > maxGridSize:
		jsonError(w, "Taille de grille invalide", http.StatusBadRequest)
		return
	case req.Count < 1 || req.Count > maxWordsInGame || len(req.Words) > maxWordsInGame:
		jsonError(w, "Nombre de mots invalide", http.StatusBadRequest)
		return
	case req.TimeLimit < minTimeLimit || req.TimeLimit > maxTimeLimit:
		jsonError(w, "Durée invalide", http.StatusBadRequest)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var theme string
	var entries []wordbank.Entry
	if len(req.Words) > 0 {
		for _, word := range req.Words {
			nw, err := wordsearch.Normalize(word)
			if err != nil {
				jsonError(w, "Mot invalide : lettres uniquement", http.StatusBadRequest)
				return
			}
			entries = append(entries, wordbank.Entry{Word: nw})
		}
	} else {
		theme = wordbank.ThemeName(req.Theme)
		if theme == "" {
			theme = wordbank.DefaultTheme
		}
		all, err := s.words.Entries(r.Context(), theme)
		if errors.Is(err, wordbank.ErrUnknownTheme) && s.gemini != nil {
			if !s.themeRL.allow(clientKey(r)) {
				jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
				return
			}
			all, err = s.suggestTheme(r.Context(), theme, req.Size)
			if err != nil {
				s.themeError(w, err)
				return
			}
		} else if errors.Is(err, wordbank.ErrUnknownTheme) {
			jsonError(w, "Thème introuvable", http.StatusNotFound)
			return
		} else if err != nil {
			log.Printf("Theme entries error: %v", err)
			jsonError(w, "Erreur de lecture du thème", http.StatusInternalServerError)
			return
		}
		entries = wordbank.Pick(all, req.Count, req.Size-2, rng)
	}

	game := s.store.CreateGame(theme, entries, wordsearch.Options{
		Config: wordsearch.Config{
			Size:        req.Size,
			MaxAttempts: wordsearch.DefaultMaxAttempts,
			Alphabet:    wordsearch.DefaultAlphabet,
		},
		TimeLimit: req.TimeLimit,
		Rand:      rng,
	})

	writeJSON(w, http.StatusCreated, game.View())
}

// GET /api/games — list games, most recent first.
func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games := s.store.ListGames()
	views := make([]GameView, len(games))
	for i, g := range games {
		views[i] = g.View()
	}
	writeJSON(w, http.StatusOK, views)
}

// GET /api/games/{id} — current game state.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, game.View())
}

// DELETE /api/games/{id} — stop a game and disconnect its watchers.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.DeleteGame(id) {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	s.sse.CloseGame(id)
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/games/{id}/start — generate the grid and start the clock.
func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	err := game.Start()
	switch {
	case errors.Is(err, wordsearch.ErrAlreadyStarted):
		jsonError(w, "Partie déjà commencée", http.StatusConflict)
		return
	case errors.Is(err, wordsearch.ErrNothingPlaced):
		jsonError(w, "Aucun mot ne tient dans la grille", http.StatusUnprocessableEntity)
		return
	case err != nil:
		log.Printf("Start game %s error: %v", game.ID, err)
		jsonError(w, "Impossible de générer la grille", http.StatusBadRequest)
		return
	}

	view := game.View()
	if len(view.Unplaced) > 0 {
		log.Printf("Partie %s : mots non placés %v", game.ID, view.Unplaced)
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /api/games/{id}/reset — back to the lobby; the next start draws a new grid.
func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	game.Reset()

	view := game.View()
	s.sse.Broadcast(game.ID, map[string]any{"type": "game_reset", "state": view.State})
	writeJSON(w, http.StatusOK, view)
}

// POST /api/games/{id}/join — join a game with a pseudo.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pseudo == "" {
		jsonError(w, "Champ 'pseudo' requis", http.StatusBadRequest)
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Pseudo invalide", http.StatusBadRequest)
		return
	}

	player := game.AddPlayer(pseudo)

	s.sse.Broadcast(game.ID, map[string]string{
		"type":   "player_joined",
		"pseudo": player.Pseudo,
		"color":  player.Color,
	})

	writeJSON(w, http.StatusOK, player)
}

// POST /api/games/{id}/select — a finished drag from start to end.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !s.selectRL.allow(clientKey(r)) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string          `json:"pseudo"`
		Start  wordsearch.Cell `json:"start"`
		End    wordsearch.Cell `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	size := game.Size()
	if size == 0 {
		jsonError(w, "Partie non commencée", http.StatusConflict)
		return
	}
	if !inGrid(req.Start, size) || !inGrid(req.End, size) {
		jsonError(w, "Position hors limites", http.StatusBadRequest)
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	word, err := game.Select(pseudo, req.Start, req.End)
	if errors.Is(err, errNotInProgress) {
		jsonError(w, "Partie terminée", http.StatusConflict)
		return
	}

	resp := struct {
		Word       string `json:"word"`
		Definition string `json:"definition,omitempty"`
	}{Word: word}
	if word != "" {
		resp.Definition = game.Definition(word)
		s.sse.Broadcast(game.ID, map[string]string{
			"type":       "word_claimed",
			"word":       word,
			"pseudo":     pseudo,
			"definition": resp.Definition,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/games/{id}/events — SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	playerPseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	s.sse.ServeSSE(w, r, game.ID, func(c *client) {
		// Send the current game on connect.
		evt, _ := json.Marshal(map[string]any{
			"type": "game_state",
			"game": game.View(),
		})
		c.ch <- evt
	}, func() {
		if playerPseudo != "" {
			game.RemovePlayer(playerPseudo)
			s.sse.Broadcast(game.ID, map[string]string{
				"type":   "player_left",
				"pseudo": playerPseudo,
			})
		}
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func inGrid(c wordsearch.Cell, size int) bool {
	return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
