/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Seednode/cineguess/internal/movie"
	"github.com/Seednode/cineguess/internal/session"
)

var requiredColumns = []string{"Title", "Plot"}

// ParseCSV reads the scraped catalog format: Title, Year, Rating, Genre and
// HiddenIndices (both pipe separated) and Plot. Rows without a guessable
// title or a plot are skipped; unparseable numbers become zero.
func ParseCSV(r io.Reader) ([]movie.Movie, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var movies []movie.Movie
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		m := movie.Movie{
			Title:             field(rec, "Title"),
			Description:       field(rec, "Plot"),
			HiddenWordIndices: splitIndices(field(rec, "HiddenIndices")),
		}
		// A title with no letters or digits canonicalizes to nothing and
		// could never be guessed.
		if session.Canonicalize(m.Title) == "" || m.Description == "" {
			continue
		}

		m.Year, _ = strconv.Atoi(field(rec, "Year"))
		m.Rating, _ = strconv.ParseFloat(field(rec, "Rating"), 64)

		if g := field(rec, "Genre"); g != "" && g != "Unknown" {
			m.Genres = strings.Split(g, "|")
		}

		movies = append(movies, m)
	}

	return movies, nil
}

// Import parses r and inserts every movie in a single transaction.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	movies, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, m := range movies {
		if _, err := insertTx(ctx, tx, m); err != nil {
			return 0, err
		}
	}

	return len(movies), tx.Commit()
}
