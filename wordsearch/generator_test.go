package wordsearch

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

var bankingWords = []string{"BANK", "SAVE", "CASH", "LOAN", "COIN"}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestGenerateFillsEveryCell(t *testing.T) {
	for seed := range int64(50) {
		p, err := Generate(bankingWords, DefaultConfig(), seeded(seed))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if p.Grid.Size() != DefaultSize {
			t.Fatalf("seed %d: expected size %d, got %d", seed, DefaultSize, p.Grid.Size())
		}
		for r, row := range p.Grid.Rows() {
			if len([]rune(row)) != DefaultSize {
				t.Fatalf("seed %d: row %d has %d letters", seed, r, len(row))
			}
			for _, ch := range row {
				if !strings.ContainsRune(DefaultAlphabet, ch) {
					t.Fatalf("seed %d: unexpected cell %q in row %d", seed, ch, r)
				}
			}
		}
	}
}

func TestGeneratePlacementsReadBack(t *testing.T) {
	for seed := range int64(50) {
		p, err := Generate(bankingWords, DefaultConfig(), seeded(seed))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		for _, pw := range p.Placed {
			if got := p.Read(pw); got != pw.Word {
				t.Fatalf("seed %d: reading %v gives %q, want %q", seed, pw.Cells, got, pw.Word)
			}
			if pw.Cells[0] != pw.Start {
				t.Fatalf("seed %d: %s starts at %v but first cell is %v", seed, pw.Word, pw.Start, pw.Cells[0])
			}
			for i, c := range pw.Cells {
				if want := pw.Start.Step(pw.Direction, i); c != want {
					t.Fatalf("seed %d: %s cell %d is %v, want %v", seed, pw.Word, i, c, want)
				}
			}
		}
	}
}

func TestGenerateOverlapsAgree(t *testing.T) {
	words := []string{"SAVINGS", "DEPOSIT", "BALANCE", "CREDIT", "TRUST", "MONEY", "SAFE", "FEES"}
	for seed := range int64(50) {
		p, err := Generate(words, DefaultConfig(), seeded(seed))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		claimed := make(map[Cell]rune)
		for _, pw := range p.Placed {
			letters := []rune(pw.Word)
			for i, c := range pw.Cells {
				if prev, ok := claimed[c]; ok && prev != letters[i] {
					t.Fatalf("seed %d: cell %v claimed as %q and %q", seed, c, prev, letters[i])
				}
				claimed[c] = letters[i]
			}
		}
	}
}

func TestGenerateBankSaveCash(t *testing.T) {
	p, err := Generate([]string{"BANK", "SAVE", "CASH"}, DefaultConfig(), seeded(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(p.Placed); n < 0 || n > 3 {
		t.Fatalf("expected 0..3 placed words, got %d", n)
	}
	if len(p.Placed)+len(p.Unplaced) != 3 {
		t.Fatalf("expected every word placed or reported, got %d + %d", len(p.Placed), len(p.Unplaced))
	}
	for _, pw := range p.Placed {
		if got := p.Read(pw); got != pw.Word {
			t.Fatalf("reading %s gives %q", pw.Word, got)
		}
	}
}

func TestGenerateSkipsWordLongerThanGrid(t *testing.T) {
	p, err := Generate([]string{"BANK", "ABCDEFGHIJ"}, DefaultConfig(), seeded(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p.Unplaced, []string{"ABCDEFGHIJ"}) {
		t.Fatalf("expected ABCDEFGHIJ unplaced, got %v", p.Unplaced)
	}
	if _, ok := p.Placement("ABCDEFGHIJ"); ok {
		t.Fatal("word longer than the grid should not be placed")
	}
	if _, ok := p.Placement("BANK"); !ok {
		t.Fatal("BANK should be placed on an otherwise empty grid")
	}
}

func TestGenerateLongestFirst(t *testing.T) {
	p, err := Generate([]string{"CAT", "DEPOSIT", "BANK"}, DefaultConfig(), seeded(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The first word always lands on an empty grid.
	if len(p.Placed) == 0 || p.Placed[0].Word != "DEPOSIT" {
		t.Fatalf("expected DEPOSIT to be placed first, got %v", p.Words())
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a, err := Generate(bankingWords, DefaultConfig(), seeded(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate(bankingWords, DefaultConfig(), seeded(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Grid.Rows(), b.Grid.Rows()) {
		t.Fatalf("same seed produced different grids:\n%s\n%s", a.Grid, b.Grid)
	}
	if !reflect.DeepEqual(a.Placed, b.Placed) {
		t.Fatal("same seed produced different placements")
	}
}

func TestGenerateNormalizesAndDeduplicates(t *testing.T) {
	p, err := Generate([]string{" bank ", "BANK", "Save"}, DefaultConfig(), seeded(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Placed) != 2 {
		t.Fatalf("expected 2 placed words, got %v", p.Words())
	}
	for _, w := range []string{"BANK", "SAVE"} {
		if _, ok := p.Placement(w); !ok {
			t.Fatalf("expected %s to be placed", w)
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		words []string
		cfg   Config
	}{
		{"zero size", bankingWords, Config{Size: 0, MaxAttempts: 10, Alphabet: "AB"}},
		{"negative size", bankingWords, Config{Size: -3, MaxAttempts: 10, Alphabet: "AB"}},
		{"zero attempts", bankingWords, Config{Size: 8, MaxAttempts: 0, Alphabet: "AB"}},
		{"empty alphabet", bankingWords, Config{Size: 8, MaxAttempts: 10}},
		{"no words", nil, DefaultConfig()},
		{"blank word", []string{"BANK", "  "}, DefaultConfig()},
		{"digits", []string{"B4NK"}, DefaultConfig()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Generate(tc.words, tc.cfg, seeded(1)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if _, err := Generate(nil, DefaultConfig(), seeded(1)); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
	if _, err := Generate([]string{"B4NK"}, DefaultConfig(), seeded(1)); !errors.Is(err, ErrInvalidWord) {
		t.Fatalf("expected ErrInvalidWord, got %v", err)
	}
}

func TestTryPlace(t *testing.T) {
	g := newGrid(4)
	g.set(Cell{0, 1}, 'A')
	g.set(Cell{1, 1}, 'X')

	if _, ok := tryPlace(g, []rune("BANK"), Horizontal, Cell{0, 0}); !ok {
		t.Fatal("BANK should fit over a matching A")
	}
	if _, ok := tryPlace(g, []rune("SAVE"), Horizontal, Cell{1, 0}); ok {
		t.Fatal("SAVE conflicts with the X at (1,1)")
	}
	if _, ok := tryPlace(g, []rune("BANK"), Horizontal, Cell{0, 1}); ok {
		t.Fatal("BANK from column 1 runs off the grid")
	}
	cells, ok := tryPlace(g, []rune("COIN"), DiagonalUp, Cell{3, 0})
	if !ok {
		t.Fatal("COIN should fit along the empty anti-diagonal")
	}
	want := []Cell{{3, 0}, {2, 1}, {1, 2}, {0, 3}}
	if !reflect.DeepEqual(cells, want) {
		t.Fatalf("expected %v, got %v", want, cells)
	}
	if g.At(Cell{3, 0}) != 0 {
		t.Fatal("tryPlace must not write to the grid")
	}
}

func TestRandomStartStaysInBounds(t *testing.T) {
	rng := seeded(9)
	for _, d := range Directions {
		for n := 1; n <= 8; n++ {
			for range 20 {
				start, ok := randomStart(8, n, d, rng)
				if !ok {
					t.Fatalf("%s: no start for length %d", d.Name, n)
				}
				g := newGrid(8)
				if !g.InBounds(start) || !g.InBounds(start.Step(d, n-1)) {
					t.Fatalf("%s: length %d from %v leaves the grid", d.Name, n, start)
				}
			}
		}
	}
	if _, ok := randomStart(8, 9, Horizontal, rng); ok {
		t.Fatal("a 9 letter word has no start on an 8x8 grid")
	}
}

func TestGridJSONRoundTrip(t *testing.T) {
	p, err := Generate(bankingWords, DefaultConfig(), seeded(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := p.Grid.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var g Grid
	if err := g.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(g.Rows(), p.Grid.Rows()) {
		t.Fatalf("expected %v, got %v", p.Grid.Rows(), g.Rows())
	}
	if err := g.UnmarshalJSON([]byte(`["AB","C"]`)); err == nil {
		t.Fatal("expected an error for a ragged grid")
	}
}
