// Package wordsearch generates word search puzzles and checks player
// selections against them.
package wordsearch

import (
	"encoding/json"
	"fmt"
)

// Cell is a (row, col) position in the grid.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(r%d, c%d)", c.Row, c.Col)
}

// Step returns the cell n steps away from c along d.
func (c Cell) Step(d Direction, n int) Cell {
	return Cell{Row: c.Row + d.DRow*n, Col: c.Col + d.DCol*n}
}

// Direction is a unit vector words are laid out along.
type Direction struct {
	Name string `json:"name"`
	DRow int    `json:"drow"`
	DCol int    `json:"dcol"`
}

var (
	Horizontal   = Direction{Name: "horizontal", DRow: 0, DCol: 1}
	Vertical     = Direction{Name: "vertical", DRow: 1, DCol: 0}
	DiagonalDown = Direction{Name: "diagonal-down", DRow: 1, DCol: 1}
	DiagonalUp   = Direction{Name: "diagonal-up", DRow: -1, DCol: 1}
)

// Directions is the set words may be placed along. Reversed reading is
// handled by the matcher, not by extra directions.
var Directions = []Direction{Horizontal, Vertical, DiagonalDown, DiagonalUp}

// Grid is a square matrix of letters. A zero rune marks an empty cell and
// only exists while a puzzle is being generated.
type Grid struct {
	size  int
	cells []rune
}

func newGrid(size int) Grid {
	return Grid{size: size, cells: make([]rune, size*size)}
}

// Size returns the number of rows (and columns).
func (g Grid) Size() int {
	return g.size
}

// InBounds reports whether c lies inside the grid.
func (g Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}

// At returns the letter at c, or 0 when c is out of bounds or empty.
func (g Grid) At(c Cell) rune {
	if !g.InBounds(c) {
		return 0
	}
	return g.cells[c.Row*g.size+c.Col]
}

func (g Grid) set(c Cell, r rune) {
	g.cells[c.Row*g.size+c.Col] = r
}

// Rows returns the grid as one string per row.
func (g Grid) Rows() []string {
	rows := make([]string, g.size)
	for r := range g.size {
		rows[r] = string(g.cells[r*g.size : (r+1)*g.size])
	}
	return rows
}

func (g Grid) String() string {
	out := ""
	for _, row := range g.Rows() {
		out += row + "\n"
	}
	return out
}

func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*g = newGrid(len(rows))
	for r, row := range rows {
		letters := []rune(row)
		if len(letters) != len(rows) {
			return fmt.Errorf("row %d has %d letters, want %d", r, len(letters), len(rows))
		}
		copy(g.cells[r*g.size:], letters)
	}
	return nil
}

// PlacedWord is a word written into the grid along with the cells it covers,
// in reading order.
type PlacedWord struct {
	Word      string    `json:"word"`
	Start     Cell      `json:"start"`
	Direction Direction `json:"direction"`
	Cells     []Cell    `json:"cells"`
}

// Puzzle is a generated grid and the outcome of placing each word.
type Puzzle struct {
	Grid     Grid         `json:"grid"`
	Placed   []PlacedWord `json:"placed"`
	Unplaced []string     `json:"unplaced,omitempty"`
}

// Read returns the letters found along pw's cells.
func (p *Puzzle) Read(pw PlacedWord) string {
	letters := make([]rune, len(pw.Cells))
	for i, c := range pw.Cells {
		letters[i] = p.Grid.At(c)
	}
	return string(letters)
}

// Placement returns the placement recorded for word.
func (p *Puzzle) Placement(word string) (PlacedWord, bool) {
	for _, pw := range p.Placed {
		if pw.Word == word {
			return pw, true
		}
	}
	return PlacedWord{}, false
}

// Words returns the placed words in placement order.
func (p *Puzzle) Words() []string {
	words := make([]string, len(p.Placed))
	for i, pw := range p.Placed {
		words[i] = pw.Word
	}
	return words
}
