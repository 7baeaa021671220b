package main

import (
	"sort"
	"sync"

	"github.com/bodul/wordsearch/wordbank"
	"github.com/bodul/wordsearch/wordsearch"
	"github.com/google/uuid"
)

// Store holds all game sessions in memory.
type Store struct {
	mu    sync.RWMutex
	games map[string]*GameSession

	// onEvent receives every session event, tagged with its game.
	onEvent func(g *GameSession, e wordsearch.Event)
}

// NewStore creates an empty store. onEvent may be nil.
func NewStore(onEvent func(g *GameSession, e wordsearch.Event)) *Store {
	return &Store{
		games:   make(map[string]*GameSession),
		onEvent: onEvent,
	}
}

// CreateGame registers a new, not yet started game over entries.
func (s *Store) CreateGame(theme string, entries []wordbank.Entry, opts wordsearch.Options) *GameSession {
	var game *GameSession
	opts.Observer = func(e wordsearch.Event) {
		if s.onEvent != nil {
			s.onEvent(game, e)
		}
	}
	game = newGameSession(uuid.NewString(), theme, entries, opts)

	s.mu.Lock()
	s.games[game.ID] = game
	s.mu.Unlock()

	return game
}

// GetGame returns a game by ID, or nil if not found.
func (s *Store) GetGame(id string) *GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

// ListGames returns all games, most recent first.
func (s *Store) ListGames() []*GameSession {
	s.mu.RLock()
	list := make([]*GameSession, 0, len(s.games))
	for _, g := range s.games {
		list = append(list, g)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// DeleteGame stops and forgets a game. It reports whether the game existed.
func (s *Store) DeleteGame(id string) bool {
	s.mu.Lock()
	g, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()

	if ok {
		g.session.Reset()
	}
	return ok
}
