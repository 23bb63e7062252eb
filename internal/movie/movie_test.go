/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package movie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		movie  Movie
		want   bool
	}{
		{"empty filter uses defaults", Filter{}, Movie{Year: 1999, Rating: 1}, true},
		{"zero year excluded by default minimum", Filter{}, Movie{Year: 0}, false},
		{"below min year", Filter{MinYear: 2000}, Movie{Year: 1999}, false},
		{"above max year", Filter{MaxYear: 2000}, Movie{Year: 2001}, false},
		{"inclusive bounds", Filter{MinYear: 2000, MaxYear: 2000}, Movie{Year: 2000}, true},
		{"rating too low", Filter{MinRating: 7.5}, Movie{Year: 2010, Rating: 7.4}, false},
		{"rating equal", Filter{MinRating: 7.5}, Movie{Year: 2010, Rating: 7.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.movie))
		})
	}
}

func TestFilter_WithDefaultsClearsAllGenres(t *testing.T) {
	f := Filter{Genre: "all"}.WithDefaults()
	assert.Empty(t, f.Genre)
	assert.Equal(t, DefaultMinYear, f.MinYear)
	assert.Equal(t, DefaultMaxYear, f.MaxYear)

	f = Filter{Genre: "Drama"}.WithDefaults()
	assert.Equal(t, "Drama", f.Genre)
}

func TestWordsAndRender(t *testing.T) {
	words := Words("A thief, who steals.", []int{1, 3})

	assert.Len(t, words, 4)
	assert.Equal(t, "thief", words[1].Clean)
	assert.True(t, words[1].Hidden)
	assert.False(t, words[2].Hidden)
	assert.Equal(t, "A [REDACTED] who [REDACTED]", Render(words))
}

func TestWords_IgnoresOutOfRangeIndices(t *testing.T) {
	words := Words("one two", []int{5, -1})
	assert.Equal(t, "one two", Render(words))
}
