package wordsearch

// Match returns the placed word whose cells equal selection, read either
// forwards or backwards. Words already in found are ignored.
func Match(selection []Cell, placed []PlacedWord, found map[string]bool) (string, bool) {
	for _, pw := range placed {
		if found[pw.Word] {
			continue
		}
		if len(selection) != len(pw.Cells) {
			continue
		}
		if sameForward(selection, pw.Cells) || sameReverse(selection, pw.Cells) {
			return pw.Word, true
		}
	}
	return "", false
}

func sameForward(sel, cells []Cell) bool {
	for i := range sel {
		if sel[i] != cells[i] {
			return false
		}
	}
	return true
}

func sameReverse(sel, cells []Cell) bool {
	last := len(cells) - 1
	for i := range sel {
		if sel[i] != cells[last-i] {
			return false
		}
	}
	return true
}

// Path returns the cells on the straight line from start to end, both
// included. Horizontal, vertical and 45 degree lines are accepted in either
// direction; any other pair of cells yields just start, which can never
// match a word longer than one letter.
func Path(start, end Cell) []Cell {
	dr, dc := end.Row-start.Row, end.Col-start.Col
	ar, ac := abs(dr), abs(dc)
	if ar != 0 && ac != 0 && ar != ac {
		return []Cell{start}
	}
	step := Direction{DRow: sign(dr), DCol: sign(dc)}
	n := max(ar, ac)
	cells := make([]Cell, n+1)
	for i := range cells {
		cells[i] = start.Step(step, i)
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
