/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package selector picks the secret movie for a round.
//
// The catalog can only seek by key, not sample, so each attempt seeks to a
// random key, filters the batch locally and picks uniformly among the
// survivors. After a bounded number of empty attempts the built-in fallback
// movie is returned, so a round always has something to play.
package selector

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/Seednode/cineguess/internal/movie"
)

const (
	Attempts   = 4
	BatchSize  = 10
	GenreBatch = 20
)

type Selector struct {
	source movie.Source
	log    zerolog.Logger

	intN   func(n int) int
	newKey func() string
}

func New(source movie.Source, log zerolog.Logger) *Selector {
	return &Selector{
		source: source,
		log:    log.With().Str("module", "selector").Logger(),
		intN:   rand.IntN,
		newKey: movie.NewKey,
	}
}

// Pick never fails; source errors count as empty attempts.
func (s *Selector) Pick(ctx context.Context, f movie.Filter) movie.Movie {
	f = f.WithDefaults()

	limit := BatchSize
	if f.Genre != "" {
		limit = GenreBatch
	}

	for attempt := 0; attempt < Attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		batch, err := s.source.Batch(ctx, movie.Query{
			Genre: f.Genre,
			After: s.newKey(),
			Limit: limit,
		})
		if err != nil {
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("catalog batch failed")
			continue
		}

		candidates := batch[:0:0]
		for _, m := range batch {
			if f.Match(m) {
				candidates = append(candidates, m)
			}
		}

		if len(candidates) > 0 {
			return candidates[s.intN(len(candidates))]
		}
	}

	s.log.Info().Str("genre", f.Genre).Int("min_year", f.MinYear).Int("max_year", f.MaxYear).
		Float64("min_rating", f.MinRating).Msg("no eligible movie, using fallback")

	return movie.Fallback
}
