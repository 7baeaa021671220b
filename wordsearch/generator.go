package wordsearch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultSize        = 8
	DefaultMaxAttempts = 100
	DefaultAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	ErrNoWords     = errors.New("no words to place")
	ErrInvalidWord = errors.New("invalid word")
)

// Rand is the source of randomness used by the generator. *rand.Rand from
// math/rand satisfies it, so tests can pass a seeded source.
type Rand interface {
	Intn(n int) int
}

// Config holds the generation knobs.
type Config struct {
	Size        int    `json:"size"`
	MaxAttempts int    `json:"max_attempts"`
	Alphabet    string `json:"alphabet"`
}

// DefaultConfig returns an 8x8 grid with 100 attempts per word.
func DefaultConfig() Config {
	return Config{
		Size:        DefaultSize,
		MaxAttempts: DefaultMaxAttempts,
		Alphabet:    DefaultAlphabet,
	}
}

// Validate rejects configurations no puzzle can be generated from.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("grid size must be positive, got %d", c.Size)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.Alphabet == "" {
		return fmt.Errorf("alphabet must be non-empty")
	}
	return nil
}

// Normalize trims and upper-cases word, and rejects anything that is not
// made only of letters.
func Normalize(word string) (string, error) {
	w := strings.ToUpper(strings.TrimSpace(word))
	if w == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidWord)
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidWord, word, r)
		}
	}
	return w, nil
}

// Generate builds a Size x Size grid holding as many of words as it can.
// Words are placed longest first; a word that cannot be placed within
// MaxAttempts tries is listed in Puzzle.Unplaced. Remaining cells are filled
// with random letters from the alphabet.
func Generate(words []string, cfg Config, rng Rand) (*Puzzle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	seen := make(map[string]bool, len(words))
	sorted := make([]string, 0, len(words))
	for _, w := range words {
		nw, err := Normalize(w)
		if err != nil {
			return nil, err
		}
		if seen[nw] {
			continue
		}
		seen[nw] = true
		sorted = append(sorted, nw)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	p := &Puzzle{Grid: newGrid(cfg.Size)}
	for _, w := range sorted {
		pw, ok := placeWord(p.Grid, w, cfg.MaxAttempts, rng)
		if !ok {
			p.Unplaced = append(p.Unplaced, w)
			continue
		}
		p.Placed = append(p.Placed, pw)
	}

	alphabet := []rune(cfg.Alphabet)
	for i, r := range p.Grid.cells {
		if r == 0 {
			p.Grid.cells[i] = alphabet[rng.Intn(len(alphabet))]
		}
	}
	return p, nil
}

// placeWord makes up to attempts random tries at writing word into g.
func placeWord(g Grid, word string, attempts int, rng Rand) (PlacedWord, bool) {
	letters := []rune(word)
	if len(letters) > g.Size() {
		return PlacedWord{}, false
	}
	for range attempts {
		dir := Directions[rng.Intn(len(Directions))]
		start, ok := randomStart(g.Size(), len(letters), dir, rng)
		if !ok {
			continue
		}
		cells, ok := tryPlace(g, letters, dir, start)
		if !ok {
			continue
		}
		for i, c := range cells {
			g.set(c, letters[i])
		}
		return PlacedWord{Word: word, Start: start, Direction: dir, Cells: cells}, true
	}
	return PlacedWord{}, false
}

// randomStart picks a start cell from which a word of length n along d
// stays inside a size x size grid.
func randomStart(size, n int, d Direction, rng Rand) (Cell, bool) {
	rlo, rhi := startRange(size, n, d.DRow)
	clo, chi := startRange(size, n, d.DCol)
	if rlo > rhi || clo > chi {
		return Cell{}, false
	}
	return Cell{
		Row: rlo + rng.Intn(rhi-rlo+1),
		Col: clo + rng.Intn(chi-clo+1),
	}, true
}

// startRange returns the inclusive range of start coordinates on one axis.
func startRange(size, n, step int) (lo, hi int) {
	switch {
	case step > 0:
		return 0, size - n
	case step < 0:
		return n - 1, size - 1
	default:
		return 0, size - 1
	}
}

// tryPlace reports whether letters fit along d from start: every cell must be
// in bounds and either empty or already holding the same letter. It does not
// modify the grid.
func tryPlace(g Grid, letters []rune, d Direction, start Cell) ([]Cell, bool) {
	cells := make([]Cell, len(letters))
	for i, want := range letters {
		c := start.Step(d, i)
		if !g.InBounds(c) {
			return nil, false
		}
		if got := g.At(c); got != 0 && got != want {
			return nil, false
		}
		cells[i] = c
	}
	return cells, true
}
