/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package movie

import (
	"context"
	"regexp"
	"strings"
)

const (
	DefaultMinYear = 1900
	DefaultMaxYear = 2099

	// AllGenres disables genre filtering.
	AllGenres = "All"
)

type Movie struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	HiddenWordIndices []int    `json:"hiddenWordIndices"`
	Genres            []string `json:"genres,omitempty"`
	Year              int      `json:"year,omitempty"`
	Rating            float64  `json:"rating,omitempty"`
}

// Fallback is served when no catalog entry survives filtering.
var Fallback = Movie{
	ID:                "fallback",
	Title:             "The Matrix",
	Description:       "A computer hacker learns from mysterious rebels about the true nature of his reality.",
	HiddenWordIndices: []int{2, 5, 8, 9, 12},
	Genres:            []string{"Sci-Fi"},
	Year:              1999,
	Rating:            8.7,
}

type Filter struct {
	Genre     string
	MinYear   int
	MaxYear   int
	MinRating float64
}

// WithDefaults fills unset year bounds the same way an empty room config does.
func (f Filter) WithDefaults() Filter {
	if f.MinYear == 0 {
		f.MinYear = DefaultMinYear
	}
	if f.MaxYear == 0 {
		f.MaxYear = DefaultMaxYear
	}
	if strings.EqualFold(f.Genre, AllGenres) {
		f.Genre = ""
	}
	return f
}

// Match checks year and rating bounds. Genre is applied by the Source.
func (f Filter) Match(m Movie) bool {
	f = f.WithDefaults()
	return m.Year >= f.MinYear && m.Year <= f.MaxYear && m.Rating >= f.MinRating
}

// Query asks a Source for up to Limit movies whose ID sorts at or after
// After, wrapping to the start of the catalog when nothing follows it.
type Query struct {
	Genre string
	After string
	Limit int
}

type Source interface {
	Batch(ctx context.Context, q Query) ([]Movie, error)
}

// Word is one whitespace-separated token of a description.
type Word struct {
	Text   string
	Clean  string
	Hidden bool
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// Words splits a description on single spaces, keeping its indices aligned
// with HiddenWordIndices.
func Words(description string, hidden []int) []Word {
	tokens := strings.Split(description, " ")

	mask := make(map[int]bool, len(hidden))
	for _, i := range hidden {
		mask[i] = true
	}

	words := make([]Word, len(tokens))
	for i, tok := range tokens {
		words[i] = Word{
			Text:   tok,
			Clean:  nonWord.ReplaceAllString(tok, ""),
			Hidden: mask[i],
		}
	}

	return words
}

const Redacted = "REDACTED"

func Render(words []Word) string {
	out := make([]string, len(words))
	for i, w := range words {
		if w.Hidden {
			out[i] = "[" + Redacted + "]"
			continue
		}
		out[i] = w.Text
	}
	return strings.Join(out, " ")
}
