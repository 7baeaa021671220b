package main

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bodul/wordsearch/wordbank"
	"github.com/bodul/wordsearch/wordsearch"
)

var errNotInProgress = errors.New("game not in progress")

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	Found    int       `json:"found"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameSession is a word search game shared by the players who joined it.
type GameSession struct {
	ID        string
	Theme     string
	CreatedAt time.Time

	session *wordsearch.Session
	entries []wordbank.Entry

	mu      sync.Mutex
	players map[string]*Player
	foundBy map[string]string // word -> pseudo
}

// GameView is the JSON shape of a game.
type GameView struct {
	ID          string            `json:"id"`
	Theme       string            `json:"theme"`
	CreatedAt   time.Time         `json:"created_at"`
	Players     []Player          `json:"players"`
	FoundBy     map[string]string `json:"found_by"`
	Definitions map[string]string `json:"definitions"`
	wordsearch.Snapshot
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

func newGameSession(id, theme string, entries []wordbank.Entry, opts wordsearch.Options) *GameSession {
	return &GameSession{
		ID:        id,
		Theme:     theme,
		CreatedAt: time.Now(),
		session:   wordsearch.NewSession(wordbank.Words(entries), opts),
		entries:   entries,
		players:   make(map[string]*Player),
		foundBy:   make(map[string]string),
	}
}

// AddPlayer adds a player to the game and returns a copy of it. Joining twice
// with the same pseudo returns the existing player.
func (g *GameSession) AddPlayer(pseudo string) Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.players[pseudo]; ok {
		return *p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(g.players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	g.players[pseudo] = p
	return *p
}

// RemovePlayer removes a player from the game.
func (g *GameSession) RemovePlayer(pseudo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, pseudo)
}

// Start generates the puzzle and starts the countdown.
func (g *GameSession) Start() error {
	return g.session.Start()
}

// Reset stops the game and forgets who found what. Players stay.
func (g *GameSession) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.session.Reset()
	g.foundBy = make(map[string]string)
	for _, p := range g.players {
		p.Found = 0
	}
}

// Size returns the grid size the game is played on.
func (g *GameSession) Size() int {
	if p := g.session.Puzzle(); p != nil {
		return p.Grid.Size()
	}
	return 0
}

// Select matches the drag from start to end and credits pseudo with the word.
// g.mu is held across both steps so a concurrent Reset cannot slip in between.
func (g *GameSession) Select(pseudo string, start, end wordsearch.Cell) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	word, ok := g.session.SelectPath(start, end)
	if !ok {
		if g.session.State() != wordsearch.InProgress {
			return "", errNotInProgress
		}
		return "", nil
	}

	g.foundBy[word] = pseudo
	if p, ok := g.players[pseudo]; ok {
		p.Found++
	}
	return word, nil
}

// Definition returns the definition attached to word, if any.
func (g *GameSession) Definition(word string) string {
	return wordbank.Definition(g.entries, word)
}

// View returns a consistent copy of the game for encoding.
func (g *GameSession) View() GameView {
	snap := g.session.Snapshot()

	g.mu.Lock()
	defer g.mu.Unlock()

	v := GameView{
		ID:          g.ID,
		Theme:       g.Theme,
		CreatedAt:   g.CreatedAt,
		Players:     make([]Player, 0, len(g.players)),
		FoundBy:     make(map[string]string, len(g.foundBy)),
		Definitions: make(map[string]string),
		Snapshot:    snap,
	}
	for _, p := range g.players {
		v.Players = append(v.Players, *p)
	}
	sort.Slice(v.Players, func(i, j int) bool {
		return v.Players[i].JoinedAt.Before(v.Players[j].JoinedAt)
	})
	for w, p := range g.foundBy {
		v.FoundBy[w] = p
	}
	for _, pw := range snap.Found {
		if d := wordbank.Definition(g.entries, pw.Word); d != "" {
			v.Definitions[pw.Word] = d
		}
	}
	return v
}
