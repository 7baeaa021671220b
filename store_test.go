package main

import (
	"sync"
	"testing"
	"time"

	"github.com/bodul/wordsearch/wordbank"
	"github.com/bodul/wordsearch/wordsearch"
)

var testEntries = []wordbank.Entry{
	{Word: "BANK", Definition: "A safe place to keep your money"},
	{Word: "CASH", Definition: "Paper money and coins"},
	{Word: "COIN"},
}

func manualOptions() wordsearch.Options {
	return wordsearch.Options{Tick: -1}
}

func TestCreateAndGetGame(t *testing.T) {
	s := NewStore(nil)
	g := s.CreateGame("banking", testEntries, manualOptions())

	if g.ID == "" {
		t.Fatal("expected game to have an ID")
	}
	if got := s.GetGame(g.ID); got != g {
		t.Fatal("expected to find created game")
	}
	if got := s.GetGame("nonexistent"); got != nil {
		t.Fatal("expected nil for unknown ID")
	}
	if g.View().State != wordsearch.NotStarted {
		t.Fatal("new games wait for an explicit start")
	}
}

func TestStoreListGames(t *testing.T) {
	s := NewStore(nil)
	s.CreateGame("banking", testEntries, manualOptions())
	time.Sleep(time.Millisecond)
	s.CreateGame("banking", testEntries, manualOptions())

	list := s.ListGames()
	if len(list) != 2 {
		t.Fatalf("expected 2 games, got %d", len(list))
	}
	// Most recent first.
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatal("expected games sorted by descending creation time")
	}
}

func TestStoreForwardsEvents(t *testing.T) {
	var mu sync.Mutex
	var got []wordsearch.EventType
	var owner *GameSession
	s := NewStore(func(g *GameSession, e wordsearch.Event) {
		mu.Lock()
		defer mu.Unlock()
		owner = g
		got = append(got, e.Type)
	})

	g := s.CreateGame("banking", testEntries, manualOptions())
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != wordsearch.EventStarted {
		t.Fatalf("expected a start event, got %v", got)
	}
	if owner != g {
		t.Fatal("event should be tagged with its game")
	}
}

func TestGameAddPlayer(t *testing.T) {
	s := NewStore(nil)
	game := s.CreateGame("banking", testEntries, manualOptions())

	p1 := game.AddPlayer("Alice")
	p2 := game.AddPlayer("Bob")

	if p1.Pseudo != "Alice" || p2.Pseudo != "Bob" {
		t.Fatal("unexpected pseudo")
	}
	if p1.Color == p2.Color {
		t.Fatal("players should have different colors")
	}

	// Adding same pseudo returns existing player.
	p1bis := game.AddPlayer("Alice")
	if p1bis.Color != p1.Color {
		t.Fatal("same pseudo should return same player")
	}

	game.RemovePlayer("Bob")
	if n := len(game.View().Players); n != 1 {
		t.Fatalf("expected 1 player after leave, got %d", n)
	}
}

func TestGameSelectCreditsPlayer(t *testing.T) {
	s := NewStore(nil)
	game := s.CreateGame("banking", testEntries, manualOptions())
	game.AddPlayer("Alice")

	if _, err := game.Select("Alice", wordsearch.Cell{}, wordsearch.Cell{Col: 3}); err != errNotInProgress {
		t.Fatalf("expected errNotInProgress before start, got %v", err)
	}
	if err := game.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	pw := game.session.Puzzle().Placed[0]
	word, err := game.Select("Alice", pw.Cells[len(pw.Cells)-1], pw.Cells[0])
	if err != nil || word != pw.Word {
		t.Fatalf("expected %s, got %q (%v)", pw.Word, word, err)
	}

	v := game.View()
	if v.FoundBy[pw.Word] != "Alice" || v.Players[0].Found != 1 {
		t.Fatalf("expected Alice credited, got %+v %+v", v.FoundBy, v.Players)
	}
	if want := wordbank.Definition(testEntries, pw.Word); v.Definitions[pw.Word] != want {
		t.Fatalf("expected definition %q, got %q", want, v.Definitions[pw.Word])
	}

	game.Reset()
	v = game.View()
	if len(v.FoundBy) != 0 || v.Players[0].Found != 0 {
		t.Fatal("reset should clear credits")
	}
}

func TestResetDropsCreditsOfTheOldRound(t *testing.T) {
	s := NewStore(nil)
	game := s.CreateGame("banking", testEntries, manualOptions())
	game.AddPlayer("Alice")

	for range 50 {
		if err := game.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
		pw := game.session.Puzzle().Placed[0]

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			game.Select("Alice", pw.Cells[0], pw.Cells[len(pw.Cells)-1])
		}()
		go func() {
			defer wg.Done()
			game.Reset()
		}()
		wg.Wait()

		v := game.View()
		if v.State != wordsearch.NotStarted {
			t.Fatalf("expected not_started after reset, got %s", v.State)
		}
		if len(v.FoundBy) != 0 || v.Players[0].Found != 0 {
			t.Fatalf("credit leaked past reset: %+v %+v", v.FoundBy, v.Players)
		}
	}
}

func TestDeleteGameStopsSession(t *testing.T) {
	s := NewStore(nil)
	g := s.CreateGame("banking", testEntries, manualOptions())
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.DeleteGame(g.ID) {
		t.Fatal("expected delete to succeed")
	}
	if g.session.State() != wordsearch.NotStarted {
		t.Fatal("deleted game should be stopped")
	}
	if s.DeleteGame(g.ID) {
		t.Fatal("second delete should report a missing game")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(nil)
	game := s.CreateGame("banking", testEntries, manualOptions())
	if err := game.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			game.Select("player", wordsearch.Cell{Row: i % 8}, wordsearch.Cell{Row: i % 8, Col: 3})
			game.View()
			game.AddPlayer("player" + string(rune('A'+i%26)))
			game.session.Tick()
		}(i)
	}
	wg.Wait()
}
