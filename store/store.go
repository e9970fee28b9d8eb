// Package store keeps the grain reference and recipe catalogue in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tbxark/grainagent/types"
)

var ErrNotConfigured = errors.New("catalog store is not configured")

const schema = `
CREATE TABLE IF NOT EXISTS grain_references (
	standard_name TEXT PRIMARY KEY,
	updated_at    TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS grain_aliases (
	alias         TEXT NOT NULL,
	standard_name TEXT NOT NULL,
	PRIMARY KEY (alias, standard_name),
	FOREIGN KEY (standard_name) REFERENCES grain_references(standard_name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recipes (
	recipe_key TEXT PRIMARY KEY,
	recipe_no  TEXT NOT NULL,
	recipe_nm  TEXT NOT NULL,
	enabled    INTEGER NOT NULL DEFAULT 1,
	sort_order INTEGER NOT NULL DEFAULT 0
);
`

// Store manages the catalogue in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertGrain replaces a grain reference and its aliases.
func (s *Store) UpsertGrain(ctx context.Context, g GrainReference) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertGrain(ctx, tx, g)
	})
}

// AliasMap maps every folded alias, the standard name included, to the
// standard name.
func (s *Store) AliasMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT standard_name, standard_name FROM grain_references
		UNION ALL
		SELECT alias, standard_name FROM grain_aliases
		ORDER BY 2, 1`)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	aliases := map[string]string{}
	for rows.Next() {
		var alias, canonical string
		if err := rows.Scan(&alias, &canonical); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if key := types.GrainKey(alias); key != "" {
			aliases[key] = canonical
		}
	}
	return aliases, rows.Err()
}

func (s *Store) UpsertRecipe(ctx context.Context, r CatalogRecipe) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertRecipe(ctx, tx, r, 0)
	})
}

// ListRecipes returns the enabled recipes in catalogue order.
func (s *Store) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_key, recipe_no, recipe_nm FROM recipes
		WHERE enabled = 1
		ORDER BY sort_order, recipe_key`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []types.Recipe{}
	for rows.Next() {
		var r types.Recipe
		if err := rows.Scan(&r.RecipeKey, &r.RecipeNo, &r.RecipeNm); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// Seed writes a whole catalogue in one transaction.
func (s *Store) Seed(ctx context.Context, c *Catalog) (SeedStats, error) {
	var stats SeedStats
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, g := range c.Grains {
			if err := upsertGrain(ctx, tx, g); err != nil {
				return err
			}
			stats.Grains++
			stats.Aliases += len(g.Synonyms)
		}
		for i, r := range c.Recipes {
			if err := upsertRecipe(ctx, tx, r, i); err != nil {
				return err
			}
			stats.Recipes++
		}
		return nil
	})
	return stats, err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func upsertGrain(ctx context.Context, tx *sql.Tx, g GrainReference) error {
	if g.StandardName == "" {
		return errors.New("grain reference without standard_name")
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO grain_references (standard_name) VALUES (?)
		ON CONFLICT(standard_name) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`, g.StandardName); err != nil {
		return fmt.Errorf("upsert grain %q: %w", g.StandardName, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grain_aliases WHERE standard_name = ?`, g.StandardName); err != nil {
		return fmt.Errorf("clear aliases of %q: %w", g.StandardName, err)
	}
	for _, alias := range g.Synonyms {
		if alias == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO grain_aliases (alias, standard_name) VALUES (?, ?)`, alias, g.StandardName); err != nil {
			return fmt.Errorf("insert alias %q: %w", alias, err)
		}
	}
	return nil
}

func upsertRecipe(ctx context.Context, tx *sql.Tx, r CatalogRecipe, order int) error {
	if r.Key == "" {
		return errors.New("recipe without key")
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (recipe_key, recipe_no, recipe_nm, enabled, sort_order) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(recipe_key) DO UPDATE SET
			recipe_no = excluded.recipe_no,
			recipe_nm = excluded.recipe_nm,
			enabled = excluded.enabled,
			sort_order = excluded.sort_order`,
		r.Key, r.No, r.Name, r.IsEnabled(), order); err != nil {
		return fmt.Errorf("upsert recipe %q: %w", r.Key, err)
	}
	return nil
}
