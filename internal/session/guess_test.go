/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := map[string]string{
		"The Matrix!":           "thematrix",
		"the matrix":            "thematrix",
		"  WALL·E  ":            "walle",
		"Se7en":                 "se7en",
		"Amélie":                "amélie",
		"snake_case-and.dots":   "snakecaseanddots",
		"":                      "",
		"?!":                    "",
		"2001: A Space Odyssey": "2001aspaceodyssey",
	}

	for in, want := range tests {
		got := Canonicalize(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, Canonicalize(got), "idempotent for %q", in)
	}

	assert.Equal(t, Canonicalize("The Matrix!"), Canonicalize("the matrix"))
}

func TestExact(t *testing.T) {
	e := Exact{}
	assert.Equal(t, Correct, e.Evaluate("the matrix", "The Matrix"))
	assert.Equal(t, Wrong, e.Evaluate("the matrx", "The Matrix"))
	assert.Equal(t, Wrong, e.Evaluate("", ""))
	assert.Equal(t, Wrong, e.Evaluate("!!", "?"))
}

func TestForgiving(t *testing.T) {
	f := NewForgiving()

	tests := []struct {
		guess, title string
		want         Verdict
	}{
		{"inception", "Inception", Correct},
		{"incepton", "Inception", Close},
		{"inceptoin", "Inception", Close},
		{"incptn", "Inception", Wrong},
		{"incp", "Inception", Wrong},
		{"heet", "Heat", Wrong},
		{"alien", "Aliens", Close},
		{"", "Inception", Wrong},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s vs %s", tt.guess, tt.title), func(t *testing.T) {
			assert.Equal(t, tt.want, f.Evaluate(tt.guess, tt.title))
		})
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "correct", Correct.String())
	assert.Equal(t, "close", Close.String())
	assert.Equal(t, "wrong", Wrong.String())
}

func TestError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newError(KindNotFound, "room %q not found", "ABCD"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, `not-found: room "ABCD" not found`, errors.Unwrap(err).Error())
	assert.Equal(t, "invalid-argument", ErrInvalidArgument.Error())
}
