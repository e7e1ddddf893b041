// Package backend is a small development server speaking the recipe API.
// It persists recipes with database/sql on SQLite (default) or PostgreSQL.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rezepte/internal/logging"
	"rezepte/internal/recipe"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when deleting a recipe that does not exist or
// belongs to another user.
var ErrNotFound = errors.New("recipe not found")

// Store persists recipes.
type Store interface {
	List(ctx context.Context, userID int) ([]recipe.Recipe, error)
	Create(ctx context.Context, req recipe.CreateRequest) (recipe.Recipe, error)
	Delete(ctx context.Context, id, userID int) error
	Close() error
}

// dialect covers the differences between the supported drivers.
type dialect struct {
	driver string
	schema string
	// placeholder returns the n-th (1-based) bind parameter.
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	"sqlite": {
		driver: "sqlite",
		schema: `
	CREATE TABLE IF NOT EXISTS rezepte (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_rezept TEXT NOT NULL,
		anleitung_rezept TEXT NOT NULL DEFAULT '',
		kategorie TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_rezepte_user ON rezepte(user_id);`,
		placeholder: func(int) string { return "?" },
	},
	"postgres": {
		driver: "postgres",
		schema: `
	CREATE TABLE IF NOT EXISTS rezepte (
		id SERIAL PRIMARY KEY,
		name_rezept TEXT NOT NULL,
		anleitung_rezept TEXT NOT NULL DEFAULT '',
		kategorie TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_rezepte_user ON rezepte(user_id);`,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	},
}

// SQLStore is a Store over database/sql.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

// Open connects to driver/dsn and applies the schema. For SQLite the parent
// directory of a file DSN is created.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
		}
	}

	s := NewSQLStore(db, driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("Recipe store ready (driver=%s)", driver)
	return s, nil
}

// NewSQLStore wraps an open database. Unknown drivers fall back to SQLite syntax.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	d, ok := dialects[driver]
	if !ok {
		d = dialects["sqlite"]
	}
	return &SQLStore{db: db, d: d}
}

// Migrate creates the recipe table if needed.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// List returns the recipes owned by userID in id order.
func (s *SQLStore) List(ctx context.Context, userID int) ([]recipe.Recipe, error) {
	query := `SELECT id, name_rezept, anleitung_rezept, kategorie, user_id FROM rezepte WHERE user_id = ` +
		s.d.placeholder(1) + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	out := []recipe.Recipe{}
	for rows.Next() {
		var r recipe.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Instructions, &r.Category, &r.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return out, nil
}

// Create inserts a recipe and returns it with its assigned id.
func (s *SQLStore) Create(ctx context.Context, req recipe.CreateRequest) (recipe.Recipe, error) {
	if err := req.Validate(); err != nil {
		return recipe.Recipe{}, err
	}
	p := s.d.placeholder
	query := fmt.Sprintf(
		`INSERT INTO rezepte (name_rezept, anleitung_rezept, kategorie, user_id) VALUES (%s, %s, %s, %s) RETURNING id`,
		p(1), p(2), p(3), p(4))

	r := recipe.Recipe{Name: req.Name, Instructions: req.Instructions, Category: req.Category, UserID: req.UserID}
	if err := s.db.QueryRowContext(ctx, query, r.Name, r.Instructions, r.Category, r.UserID).Scan(&r.ID); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	logging.StoreDebug("Inserted recipe %d for user %d", r.ID, r.UserID)
	return r, nil
}

// Delete removes a recipe owned by userID. It returns ErrNotFound when no
// row matched, including when the recipe belongs to someone else.
func (s *SQLStore) Delete(ctx context.Context, id, userID int) error {
	p := s.d.placeholder
	res, err := s.db.ExecContext(ctx, `DELETE FROM rezepte WHERE id = `+p(1)+` AND user_id = `+p(2), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
