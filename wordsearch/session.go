package wordsearch

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	DefaultTimeLimit     = 120 // seconds
	DefaultTick          = time.Second
	DefaultRegenerations = 3
	ScorePerWord         = 10
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNothingPlaced  = errors.New("no word could be placed")
	ErrTimeLimit      = errors.New("time limit must be positive")
)

// State is the lifecycle stage of a Session.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
	TimedOut
)

var stateNames = map[State]string{
	NotStarted: "not_started",
	InProgress: "in_progress",
	Completed:  "completed",
	TimedOut:   "timed_out",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further selection will be accepted.
func (s State) Terminal() bool {
	return s == Completed || s == TimedOut
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for st, n := range stateNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// EventType names what happened in a session.
type EventType string

const (
	EventStarted   EventType = "game_started"
	EventWordFound EventType = "word_found"
	EventTick      EventType = "tick"
	EventCompleted EventType = "game_completed"
	EventTimedOut  EventType = "game_over"
)

// Result summarizes a finished session.
type Result struct {
	State      State         `json:"state"`
	WordsFound int           `json:"words_found"`
	TotalWords int           `json:"total_words"`
	Score      int           `json:"score"`
	Remaining  int           `json:"remaining"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Event is delivered to Options.Observer after each state change.
type Event struct {
	Type      EventType `json:"type"`
	Word      string    `json:"word,omitempty"`
	Cells     []Cell    `json:"cells,omitempty"`
	Remaining int       `json:"remaining"`
	Score     int       `json:"score"`
	Reason    string    `json:"reason,omitempty"`
	Result    *Result   `json:"result,omitempty"`
}

// Options configures a Session. Zero values fall back to the defaults.
type Options struct {
	Config
	TimeLimit     int
	Tick          time.Duration // 0 uses DefaultTick, negative disables the timer
	Regenerations int           // extra generations when words were left out, negative for none
	Rand          Rand
	Observer      func(Event)
}

func (o Options) withDefaults() Options {
	def := DefaultConfig()
	if o.Size == 0 {
		o.Size = def.Size
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = def.MaxAttempts
	}
	if o.Alphabet == "" {
		o.Alphabet = def.Alphabet
	}
	if o.TimeLimit == 0 {
		o.TimeLimit = DefaultTimeLimit
	}
	if o.Tick == 0 {
		o.Tick = DefaultTick
	}
	if o.Regenerations == 0 {
		o.Regenerations = DefaultRegenerations
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Snapshot is a read-only view of a Session. Cells are only revealed for
// words already found.
type Snapshot struct {
	State     State        `json:"state"`
	Grid      *Grid        `json:"grid,omitempty"`
	Words     []string     `json:"words"`
	Found     []PlacedWord `json:"found"`
	Unplaced  []string     `json:"unplaced,omitempty"`
	TimeLimit int          `json:"time_limit"`
	Remaining int          `json:"remaining"`
	Score     int          `json:"score"`
}

// Session is one timed play-through of a puzzle. It is safe for concurrent
// use; the countdown runs on its own goroutine.
type Session struct {
	mu        sync.Mutex
	opts      Options
	words     []string
	state     State
	puzzle    *Puzzle
	found     map[string]bool
	order     []string
	remaining int
	score     int
	startedAt time.Time
	stop      chan struct{}
	epoch     int
}

// NewSession prepares a session for words. Nothing is generated until Start.
func NewSession(words []string, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		opts:      opts,
		words:     append([]string(nil), words...),
		found:     make(map[string]bool),
		remaining: opts.TimeLimit,
	}
}

// Start generates the puzzle and starts the countdown.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != NotStarted {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	if s.opts.TimeLimit < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrTimeLimit, s.opts.TimeLimit)
	}

	p, err := s.generate()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.puzzle = p
	s.state = InProgress
	s.remaining = s.opts.TimeLimit
	s.startedAt = time.Now()
	s.epoch++
	s.startTimer(s.epoch)
	evt := s.eventLocked(EventStarted)
	s.mu.Unlock()

	s.emit(evt)
	return nil
}

// generate runs the generator, retrying while words were left out and
// keeping the attempt that placed the most.
func (s *Session) generate() (*Puzzle, error) {
	var best *Puzzle
	for range max(s.opts.Regenerations, 0) + 1 {
		p, err := Generate(s.words, s.opts.Config, s.opts.Rand)
		if err != nil {
			return nil, err
		}
		if best == nil || len(p.Placed) > len(best.Placed) {
			best = p
		}
		if !s.canPlaceMore(best) {
			break
		}
	}
	if len(best.Placed) == 0 {
		return nil, ErrNothingPlaced
	}
	return best, nil
}

// canPlaceMore reports whether another generation could place a word p left
// out. Words longer than the grid never fit.
func (s *Session) canPlaceMore(p *Puzzle) bool {
	for _, w := range p.Unplaced {
		if utf8.RuneCountInString(w) <= s.opts.Size {
			return true
		}
	}
	return false
}

// Select checks cells against the unfound words. It only has an effect while
// the session is in progress.
func (s *Session) Select(cells []Cell) (string, bool) {
	s.mu.Lock()
	if s.state != InProgress {
		s.mu.Unlock()
		return "", false
	}
	word, ok := Match(cells, s.puzzle.Placed, s.found)
	if !ok {
		s.mu.Unlock()
		return "", false
	}

	s.found[word] = true
	s.order = append(s.order, word)
	s.score += ScorePerWord
	evts := []Event{s.eventLocked(EventWordFound)}
	evts[0].Word = word
	evts[0].Cells = append([]Cell(nil), cells...)

	if len(s.found) == len(s.puzzle.Placed) {
		s.state = Completed
		s.stopTimer()
		evts = append(evts, s.eventLocked(EventCompleted))
	}
	s.mu.Unlock()

	s.emit(evts...)
	return word, true
}

// SelectPath selects the straight line from start to end.
func (s *Session) SelectPath(start, end Cell) (string, bool) {
	return s.Select(Path(start, end))
}

// Tick counts down one second. When the clock reaches zero before every word
// is found the session times out.
func (s *Session) Tick() {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.tick(epoch)
}

// tick reports whether the countdown should keep running.
func (s *Session) tick(epoch int) bool {
	s.mu.Lock()
	if epoch != s.epoch || s.state != InProgress {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	evts := []Event{s.eventLocked(EventTick)}
	if s.remaining <= 0 {
		s.remaining = 0
		s.state = TimedOut
		s.stopTimer()
		evts = append(evts, s.eventLocked(EventTimedOut))
	}
	running := s.state == InProgress
	s.mu.Unlock()

	s.emit(evts...)
	return running
}

// Reset stops the countdown and returns the session to NotStarted. The next
// Start generates a fresh puzzle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimer()
	s.epoch++
	s.state = NotStarted
	s.puzzle = nil
	s.found = make(map[string]bool)
	s.order = nil
	s.score = 0
	s.remaining = s.opts.TimeLimit
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Puzzle returns the generated puzzle, or nil before Start.
func (s *Session) Puzzle() *Puzzle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puzzle
}

// Found returns the found words in the order they were found.
func (s *Session) Found() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Snapshot returns a copy of the visible session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.state,
		Words:     []string{},
		Found:     []PlacedWord{},
		TimeLimit: s.opts.TimeLimit,
		Remaining: s.remaining,
		Score:     s.score,
	}
	if s.puzzle == nil {
		return snap
	}
	g := s.puzzle.Grid
	snap.Grid = &g
	snap.Words = s.puzzle.Words()
	snap.Unplaced = append([]string(nil), s.puzzle.Unplaced...)
	for _, w := range s.order {
		if pw, ok := s.puzzle.Placement(w); ok {
			snap.Found = append(snap.Found, pw)
		}
	}
	return snap
}

func (s *Session) eventLocked(t EventType) Event {
	evt := Event{Type: t, Remaining: s.remaining, Score: s.score}
	switch t {
	case EventTimedOut:
		evt.Reason = "time_up"
		evt.Result = s.resultLocked()
	case EventCompleted:
		evt.Result = s.resultLocked()
	}
	return evt
}

func (s *Session) resultLocked() *Result {
	total := 0
	if s.puzzle != nil {
		total = len(s.puzzle.Placed)
	}
	return &Result{
		State:      s.state,
		WordsFound: len(s.found),
		TotalWords: total,
		Score:      s.score,
		Remaining:  s.remaining,
		Elapsed:    time.Since(s.startedAt),
	}
}

func (s *Session) emit(evts ...Event) {
	if s.opts.Observer == nil {
		return
	}
	for _, e := range evts {
		s.opts.Observer(e)
	}
}

// startTimer launches the countdown goroutine for run epoch. Callers hold mu.
func (s *Session) startTimer(epoch int) {
	if s.opts.Tick < 0 {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	go func() {
		ticker := time.NewTicker(s.opts.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.tick(epoch) {
					return
				}
			}
		}
	}()
}

// stopTimer tears down the countdown goroutine. Callers hold mu.
func (s *Session) stopTimer() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
