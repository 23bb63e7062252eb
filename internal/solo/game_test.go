/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package solo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/cineguess/internal/movie"
	"github.com/Seednode/cineguess/internal/session"
)

type fixedSelector struct {
	movie movie.Movie
}

func (s fixedSelector) Pick(context.Context, movie.Filter) movie.Movie {
	return s.movie
}

var inception = movie.Movie{
	ID:                "inception",
	Title:             "Inception",
	Description:       "A thief plants an idea.",
	HiddenWordIndices: []int{1, 4},
}

func TestGame_GuessFlow(t *testing.T) {
	g := New(fixedSelector{inception}, movie.Filter{})

	out := g.Guess("inception")
	assert.Equal(t, MsgNoMovie, out.Message)

	assert.Equal(t, "A [REDACTED] plants an [REDACTED]", g.Next(context.Background()))

	out = g.Guess("   ")
	assert.Equal(t, MsgEmptyWord, out.Message)

	out = g.Guess("inceptoin")
	assert.Equal(t, session.Close, out.Verdict)
	assert.Empty(t, out.Title)

	out = g.Guess("Inception!")
	assert.Equal(t, session.Correct, out.Verdict)
	assert.Equal(t, 1, out.Streak)
	assert.Equal(t, "Inception", out.Title)

	g.Next(context.Background())
	out = g.Guess("INCEPTION")
	assert.Equal(t, 2, out.Streak)

	g.Next(context.Background())
	out = g.Guess("memento")
	assert.Equal(t, session.Wrong, out.Verdict)
	assert.Equal(t, 0, out.Streak)
	assert.Equal(t, 0, g.Streak())
}

func TestGame_Hint(t *testing.T) {
	g := New(fixedSelector{inception}, movie.Filter{})
	g.intN = func(int) int { return 0 }
	g.Next(context.Background())
	g.streak = 3

	text, ok := g.Hint()
	require.True(t, ok)
	assert.Equal(t, "A thief plants an [REDACTED]", text)
	assert.Zero(t, g.Streak())

	text, ok = g.Hint()
	require.True(t, ok)
	assert.Equal(t, "A thief plants an idea.", text)
	assert.Equal(t, text, g.Puzzle())

	text, ok = g.Hint()
	assert.False(t, ok)
	assert.Equal(t, MsgNoHints, text)
}

func TestGame_Skip(t *testing.T) {
	g := New(fixedSelector{inception}, movie.Filter{})
	g.Next(context.Background())
	g.Guess("inception")
	g.Next(context.Background())

	assert.Equal(t, "Inception", g.Skip())
	assert.Zero(t, g.Streak())
	assert.Equal(t, MsgNoMovie, g.Guess("inception").Message)
}
