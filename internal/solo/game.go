/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package solo is the single-player mode: no rooms, no timer, a streak of
// consecutive correct answers and forgiving feedback on near misses.
package solo

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/Seednode/cineguess/internal/movie"
	"github.com/Seednode/cineguess/internal/session"
)

type Selector interface {
	Pick(ctx context.Context, f movie.Filter) movie.Movie
}

const (
	MsgCorrect   = "Correct!"
	MsgClose     = "So close! Check your spelling."
	MsgWrong     = "Incorrect, try again!"
	MsgNoHints   = "No more words to reveal!"
	MsgNoMovie   = "No movie loaded."
	MsgEmptyWord = "Type a guess first."
)

type Game struct {
	selector  Selector
	evaluator session.Evaluator
	filter    movie.Filter
	intN      func(n int) int

	current movie.Movie
	words   []movie.Word
	streak  int
	loaded  bool
}

func New(sel Selector, f movie.Filter) *Game {
	return &Game{
		selector:  sel,
		evaluator: session.NewForgiving(),
		filter:    f,
		intN:      rand.IntN,
	}
}

type Outcome struct {
	Verdict session.Verdict
	Streak  int
	Message string

	// Title is set once the round is resolved.
	Title string
}

// Next loads a new movie and returns its redacted description.
func (g *Game) Next(ctx context.Context) string {
	g.current = g.selector.Pick(ctx, g.filter)
	g.words = movie.Words(g.current.Description, g.current.HiddenWordIndices)
	g.loaded = true

	return movie.Render(g.words)
}

func (g *Game) Puzzle() string {
	return movie.Render(g.words)
}

func (g *Game) Streak() int {
	return g.streak
}

func (g *Game) Guess(text string) Outcome {
	if !g.loaded {
		return Outcome{Verdict: session.Wrong, Streak: g.streak, Message: MsgNoMovie}
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{Verdict: session.Wrong, Streak: g.streak, Message: MsgEmptyWord}
	}

	switch v := g.evaluator.Evaluate(text, g.current.Title); v {
	case session.Correct:
		g.streak++
		g.loaded = false
		return Outcome{Verdict: v, Streak: g.streak, Message: MsgCorrect, Title: g.current.Title}
	case session.Close:
		return Outcome{Verdict: v, Streak: g.streak, Message: MsgClose}
	default:
		g.streak = 0
		return Outcome{Verdict: v, Streak: g.streak, Message: MsgWrong}
	}
}

// Hint reveals one random hidden word and costs the streak.
func (g *Game) Hint() (string, bool) {
	g.streak = 0

	var hidden []int
	for i, w := range g.words {
		if w.Hidden {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return MsgNoHints, false
	}

	g.words[hidden[g.intN(len(hidden))]].Hidden = false

	return movie.Render(g.words), true
}

// Skip gives up on the current movie and returns its title.
func (g *Game) Skip() string {
	g.streak = 0
	g.loaded = false

	return g.current.Title
}
