// Package wordbank stores themed vocabulary lists that puzzles are built from.
package wordbank

// Entry is a word together with a definition a grade 5 reader understands.
type Entry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// DefaultTheme is used when a game does not ask for one.
const DefaultTheme = "banking"

// Banking is the built-in financial literacy vocabulary.
var Banking = []Entry{
	{"BANK", "A safe place to keep your money"},
	{"SAVE", "To keep money for later"},
	{"CASH", "Paper money and coins"},
	{"LOAN", "Money borrowed that must be repaid"},
	{"FEES", "Charges for using some services"},
	{"SAFE", "A secure place for valuables"},
	{"COIN", "Small round metal money"},
	{"CREDIT", "Borrowing money to pay back later"},
	{"TRUST", "Believing the bank keeps money safe"},
	{"MONEY", "What we use to buy things"},
	{"DEPOSIT", "Put money INTO your account"},
	{"BALANCE", "How much money you have"},
	{"SAVINGS", "Account to grow your money"},
}

var builtin = map[string][]Entry{
	DefaultTheme: Banking,
}

// Words returns the words of entries in order.
func Words(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Word
	}
	return out
}

// Definition returns the definition of word, or "" when entries lack it.
func Definition(entries []Entry, word string) string {
	for _, e := range entries {
		if e.Word == word {
			return e.Definition
		}
	}
	return ""
}
