package backend

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"rezepte/internal/recipe"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	empty, err := s.List(ctx, 123)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a, err := s.Create(ctx, recipe.CreateRequest{Name: "Pizza", Instructions: "Backen", Category: "Hauptgericht", UserID: 123})
	require.NoError(t, err)
	assert.Positive(t, a.ID)

	b, err := s.Create(ctx, recipe.CreateRequest{Name: "Salat", UserID: 7})
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)

	mine, err := s.List(ctx, 123)
	require.NoError(t, err)
	want := []recipe.Recipe{
		{ID: a.ID, Name: "Pizza", Instructions: "Backen", Category: "Hauptgericht", UserID: 123},
	}
	if diff := cmp.Diff(want, mine); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	none, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none, "no owner, no recipes")

	assert.ErrorIs(t, s.Delete(ctx, a.ID, 7), ErrNotFound, "someone else's recipe")
	require.NoError(t, s.Delete(ctx, a.ID, 123))
	assert.ErrorIs(t, s.Delete(ctx, a.ID, 123), ErrNotFound)

	rest, err := s.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, b.ID, rest[0].ID)
}

func TestSQLStore_CreateRejectsEmptyName(t *testing.T) {
	s := openMemory(t)
	_, err := s.Create(context.Background(), recipe.CreateRequest{Name: " "})
	require.Error(t, err)
}

func TestOpen_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rezepte.db")
	s, err := Open(context.Background(), "sqlite", path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	assert.ErrorContains(t, err, "unsupported driver")
}

func newMockStore(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewSQLStore(db, driver), mock
}

func TestSQLStore_PostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM rezepte WHERE user_id = $1 ORDER BY id`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name_rezept", "anleitung_rezept", "kategorie", "user_id"}).
			AddRow(1, "Suppe", "Kochen", "", 5))
	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4) RETURNING id`)).
		WithArgs("Brot", "Backen", "", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM rezepte WHERE id = $1 AND user_id = $2`)).
		WithArgs(42, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []recipe.Recipe{{ID: 1, Name: "Suppe", Instructions: "Kochen", UserID: 5}}, got)

	created, err := s.Create(context.Background(), recipe.CreateRequest{Name: "Brot", Instructions: "Backen", UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)

	require.NoError(t, s.Delete(context.Background(), 42, 5))
}

func TestSQLStore_ErrorPaths(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("migrate", func(t *testing.T) {
		s, mock := newMockStore(t, "sqlite")
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS rezepte").WillReturnError(boom)
		err := s.Migrate(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("list query", func(t *testing.T) {
		s, mock := newMockStore(t, "sqlite")
		mock.ExpectQuery("SELECT id").WillReturnError(boom)
		_, err := s.List(context.Background(), 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("list rows", func(t *testing.T) {
		s, mock := newMockStore(t, "sqlite")
		mock.ExpectQuery("SELECT id").WillReturnRows(
			sqlmock.NewRows([]string{"id", "name_rezept", "anleitung_rezept", "kategorie", "user_id"}).
				AddRow(1, "A", "", "", 1).
				RowError(0, boom))
		_, err := s.List(context.Background(), 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("insert", func(t *testing.T) {
		s, mock := newMockStore(t, "sqlite")
		mock.ExpectQuery("INSERT INTO rezepte").WillReturnError(boom)
		_, err := s.Create(context.Background(), recipe.CreateRequest{Name: "A"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("delete exec", func(t *testing.T) {
		s, mock := newMockStore(t, "sqlite")
		mock.ExpectExec("DELETE FROM rezepte").WithArgs(3, 1).WillReturnError(boom)
		assert.ErrorIs(t, s.Delete(context.Background(), 3, 1), boom)
	})

	t.Run("delete missing", func(t *testing.T) {
		s, mock := newMockStore(t, "sqlite")
		mock.ExpectExec("DELETE FROM rezepte").WithArgs(3, 1).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, s.Delete(context.Background(), 3, 1), ErrNotFound)
	})
}
