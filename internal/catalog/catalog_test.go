/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/cineguess/internal/movie"
)

const sampleCSV = `Title,Year,Rating,Genre,Plot,HiddenIndices
The Matrix,1999,8.7,Action|Sci-Fi,A computer hacker learns the truth.,1|3
Inception,2010,8.8,Sci-Fi,A thief plants an idea.,2
Heat,1995,bad,Crime,A detective hunts a crew.,
,2001,5,Drama,No title here.,
Clueless,1995,6.9,Unknown,A rich girl plays matchmaker.,0
`

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.SetMaxOpenConns(1)

	s := New(db)
	require.NoError(t, s.InitSchema())
	return s
}

func TestParseCSV(t *testing.T) {
	movies, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, movies, 4)

	assert.Equal(t, "The Matrix", movies[0].Title)
	assert.Equal(t, 1999, movies[0].Year)
	assert.InDelta(t, 8.7, movies[0].Rating, 0.001)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, movies[0].Genres)
	assert.Equal(t, []int{1, 3}, movies[0].HiddenWordIndices)

	assert.Zero(t, movies[2].Rating)
	assert.Empty(t, movies[2].HiddenWordIndices)
	assert.Nil(t, movies[3].Genres)
}

func TestParseCSV_SkipsUnguessableTitles(t *testing.T) {
	in := "Title,Plot\n!!!,A title made of punctuation.\n$9,Money talks.\n"

	movies, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "$9", movies[0].Title)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Title,Year\nHeat,1995\n"))
	assert.Error(t, err)
}

func TestStore_ImportAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Import(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	id, err := s.Insert(ctx, movie.Movie{ID: "fixed", Title: "Alien", Description: "In space.", Genres: []string{"Horror"}, Year: 1979})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	m, err := s.Get(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "Alien", m.Title)
	assert.Equal(t, []string{"Horror"}, m.Genres)
	assert.Empty(t, m.HiddenWordIndices)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	for _, m := range []movie.Movie{
		{ID: "b", Title: "B", Description: "b", Genres: []string{"Drama"}, Year: 2000},
		{ID: "d", Title: "D", Description: "d", Genres: []string{"Comedy"}, Year: 2000},
		{ID: "f", Title: "F", Description: "f", Genres: []string{"Drama", "Comedy"}, Year: 2000},
	} {
		_, err := s.Insert(ctx, m)
		require.NoError(t, err)
	}
}

func ids(movies []movie.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func TestStore_BatchSeeksAndWraps(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	got, err := s.Batch(ctx, movie.Query{After: "c", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "f"}, ids(got))

	got, err = s.Batch(ctx, movie.Query{After: "z", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, ids(got))

	got, err = s.Batch(ctx, movie.Query{Genre: "Drama", After: "c", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, ids(got))

	got, err = s.Batch(ctx, movie.Query{Genre: "Horror", After: "a"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStatic_BatchMatchesStore(t *testing.T) {
	st := NewStatic(
		movie.Movie{ID: "f", Genres: []string{"Drama", "Comedy"}},
		movie.Movie{ID: "b", Genres: []string{"Drama"}},
		movie.Movie{ID: "d", Genres: []string{"Comedy"}},
	)
	ctx := context.Background()

	got, _ := st.Batch(ctx, movie.Query{After: "c", Limit: 10})
	assert.Equal(t, []string{"d", "f"}, ids(got))

	got, _ = st.Batch(ctx, movie.Query{After: "z", Limit: 2})
	assert.Equal(t, []string{"b", "d"}, ids(got))

	got, _ = st.Batch(ctx, movie.Query{Genre: "Drama", After: "c"})
	assert.Equal(t, []string{"f"}, ids(got))

	assert.Equal(t, 3, st.Len())
}

func TestBuiltin(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)
	require.Equal(t, 13, s.Len())

	batch, err := s.Batch(context.Background(), movie.Query{Limit: 100})
	require.NoError(t, err)

	for _, m := range batch {
		words := movie.Words(m.Description, nil)
		require.NotEmpty(t, m.HiddenWordIndices, m.Title)
		for _, i := range m.HiddenWordIndices {
			assert.Less(t, i, len(words), m.Title)
		}
	}
}
