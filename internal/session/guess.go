/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/Seednode/cineguess/internal/domain"
)

// Canonicalize lowercases s and drops every rune that is not a letter or digit.
func Canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

type Verdict int

const (
	Wrong Verdict = iota
	Close
	Correct
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Close:
		return "close"
	default:
		return "wrong"
	}
}

// Evaluator decides how a guess compares to the secret title.
type Evaluator interface {
	Evaluate(guess, title string) Verdict
}

// Exact accepts canonical equality only. Multiplayer scoring uses it.
type Exact struct{}

func (Exact) Evaluate(guess, title string) Verdict {
	g := Canonicalize(guess)
	if g != "" && g == Canonicalize(title) {
		return Correct
	}
	return Wrong
}

// Forgiving also reports near misses, for single-player feedback. A miss is
// Close when the edit distance is at most MaxDistance and the canonical
// title is longer than MinLength runes.
type Forgiving struct {
	MaxDistance int
	MinLength   int
}

func NewForgiving() Forgiving {
	return Forgiving{MaxDistance: 2, MinLength: 5}
}

func (f Forgiving) Evaluate(guess, title string) Verdict {
	if (Exact{}).Evaluate(guess, title) == Correct {
		return Correct
	}

	g, t := Canonicalize(guess), Canonicalize(title)
	if g == "" || utf8.RuneCountInString(t) <= f.MinLength {
		return Wrong
	}
	if levenshtein.ComputeDistance(g, t) <= f.MaxDistance {
		return Close
	}

	return Wrong
}

// Score returns the points for a correct guess made at now (unix ms) in a
// round ending at roundEnd: a 100 point base plus up to 900 decaying
// linearly to zero over the round.
func Score(roundEnd, now int64) int {
	window := domain.RoundDuration.Milliseconds()

	left := min(max(roundEnd-now, 0), window)

	return 100 + int(900*left/window)
}
