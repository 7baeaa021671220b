package wordbank

import "unicode/utf8"

// Shuffler is the randomness Pick needs; *rand.Rand satisfies it.
type Shuffler interface {
	Intn(n int) int
}

// Pick draws count entries at random. Words of at most maxLen letters are
// preferred so they fit a small grid; longer ones only fill the gap when
// there are not enough short words.
func Pick(entries []Entry, count, maxLen int, rng Shuffler) []Entry {
	shuffled := append([]Entry(nil), entries...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	var short, long []Entry
	for _, e := range shuffled {
		if utf8.RuneCountInString(e.Word) <= maxLen {
			short = append(short, e)
		} else {
			long = append(long, e)
		}
	}

	picked := short[:min(count, len(short))]
	if missing := count - len(picked); missing > 0 {
		picked = append(picked, long[:min(missing, len(long))]...)
	}
	return picked
}
