/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/Seednode/cineguess/internal/movie"
)

// Static is an in-memory movie.Source with the same seek semantics as Store.
type Static struct {
	movies []movie.Movie
}

func NewStatic(movies ...movie.Movie) *Static {
	sorted := slices.Clone(movies)
	for i := range sorted {
		if sorted[i].ID == "" {
			sorted[i].ID = movie.NewKey()
		}
	}
	slices.SortFunc(sorted, func(a, b movie.Movie) int {
		return strings.Compare(a.ID, b.ID)
	})

	return &Static{movies: sorted}
}

func (s *Static) Len() int {
	return len(s.movies)
}

func (s *Static) Batch(_ context.Context, q movie.Query) ([]movie.Movie, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	out := s.collect(q.Genre, q.After, q.Limit)
	if len(out) == 0 && q.After != "" {
		out = s.collect(q.Genre, "", q.Limit)
	}

	return out, nil
}

func (s *Static) collect(genre, after string, limit int) []movie.Movie {
	start, _ := slices.BinarySearchFunc(s.movies, after, func(m movie.Movie, key string) int {
		return strings.Compare(m.ID, key)
	})

	var out []movie.Movie
	for _, m := range s.movies[start:] {
		if genre != "" && !slices.Contains(m.Genres, genre) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}

	return out
}
