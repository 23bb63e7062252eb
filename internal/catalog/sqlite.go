/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Seednode/cineguess/internal/movie"
)

//go:embed schema.sql
var embeddedSchema embed.FS

var ErrNotFound = errors.New("movie not found")

// Store is a movie.Source backed by SQLite.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InitSchema() error {
	if _, err := s.db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return err
	}

	b, err := embeddedSchema.ReadFile("schema.sql")
	if err != nil {
		return err
	}

	_, err = s.db.Exec(strings.TrimSpace(string(b)))
	return err
}

// ---------- Writes ----------

// Insert stores m, generating an ID when m.ID is empty, and returns the ID.
func (s *Store) Insert(ctx context.Context, m movie.Movie) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id, err := insertTx(ctx, tx, m)
	if err != nil {
		return "", err
	}

	return id, tx.Commit()
}

func insertTx(ctx context.Context, tx *sql.Tx, m movie.Movie) (string, error) {
	if m.ID == "" {
		m.ID = movie.NewKey()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO movies(id, title, description, hidden_indices, year, rating) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Description, joinIndices(m.HiddenWordIndices), m.Year, m.Rating)
	if err != nil {
		return "", fmt.Errorf("insert movie %q: %w", m.Title, err)
	}

	for _, g := range m.Genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO movie_genres(movie_id, genre) VALUES (?, ?)`, m.ID, g); err != nil {
			return "", fmt.Errorf("insert genre %q: %w", g, err)
		}
	}

	return m.ID, nil
}

// ---------- Reads ----------

const selectMovie = `SELECT m.id, m.title, m.description, m.hidden_indices, m.year, m.rating,
	COALESCE((SELECT group_concat(genre, '|') FROM movie_genres WHERE movie_id = m.id), '')
	FROM movies m`

func (s *Store) Get(ctx context.Context, id string) (movie.Movie, error) {
	row := s.db.QueryRowContext(ctx, selectMovie+` WHERE m.id = ?`, id)

	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return movie.Movie{}, ErrNotFound
	}
	return m, err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM movies`).Scan(&n)
	return n, err
}

// Batch implements movie.Source with a seek on the primary key.
func (s *Store) Batch(ctx context.Context, q movie.Query) ([]movie.Movie, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}

	movies, err := s.batch(ctx, q.Genre, q.After, q.Limit)
	if err != nil {
		return nil, err
	}
	if len(movies) > 0 || q.After == "" {
		return movies, nil
	}

	// Seek key sorted past the last ID; wrap around.
	return s.batch(ctx, q.Genre, "", q.Limit)
}

func (s *Store) batch(ctx context.Context, genre, after string, limit int) ([]movie.Movie, error) {
	var (
		query strings.Builder
		args  []any
	)

	query.WriteString(selectMovie)
	if genre != "" {
		query.WriteString(` JOIN movie_genres g ON g.movie_id = m.id AND g.genre = ?`)
		args = append(args, genre)
	}
	query.WriteString(` WHERE m.id >= ? ORDER BY m.id LIMIT ?`)
	args = append(args, after, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []movie.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (movie.Movie, error) {
	var (
		m              movie.Movie
		hidden, genres string
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &hidden, &m.Year, &m.Rating, &genres); err != nil {
		return movie.Movie{}, err
	}

	m.HiddenWordIndices = splitIndices(hidden)
	if genres != "" {
		m.Genres = strings.Split(genres, "|")
	}

	return m, nil
}

func joinIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "|")
}

func splitIndices(s string) []int {
	out := []int{}
	for _, part := range strings.Split(s, "|") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
