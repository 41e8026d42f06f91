// Package repository provides data access layers for companion data.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// HeroRepository handles database operations for canonical heroes.
type HeroRepository interface {
	// Upsert inserts or updates a hero row keyed by canonical name.
	Upsert(ctx context.Context, hero *models.Hero) error

	// GetByName retrieves a hero by canonical name, or nil when absent.
	GetByName(ctx context.Context, name string) (*models.Hero, error)

	// ListNames returns every canonical hero name, ordered case-insensitively.
	ListNames(ctx context.Context) ([]string, error)

	// List returns all hero rows ordered by name.
	List(ctx context.Context) ([]*models.Hero, error)
}

// heroRepository is the concrete implementation of HeroRepository.
type heroRepository struct {
	db *sql.DB
}

// NewHeroRepository creates a new hero repository.
func NewHeroRepository(db *sql.DB) HeroRepository {
	return &heroRepository{db: db}
}

// Upsert inserts or updates a hero row keyed by canonical name.
func (r *heroRepository) Upsert(ctx context.Context, hero *models.Hero) error {
	query := `
		INSERT INTO heroes (hero, url, role, lane, specialty, win_rate, tier, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hero) DO UPDATE SET
			url = excluded.url,
			role = excluded.role,
			lane = excluded.lane,
			specialty = excluded.specialty,
			win_rate = excluded.win_rate,
			tier = excluded.tier,
			updated_at = excluded.updated_at
	`

	updatedAt := hero.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		hero.Name,
		hero.URL,
		hero.Role,
		hero.Lane,
		hero.Specialty,
		hero.WinRate,
		hero.Tier,
		updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert hero: %w", err)
	}

	return nil
}

// GetByName retrieves a hero by canonical name.
func (r *heroRepository) GetByName(ctx context.Context, name string) (*models.Hero, error) {
	query := `
		SELECT hero, url, role, lane, specialty, win_rate, tier, updated_at
		FROM heroes
		WHERE hero = ?
	`

	hero := &models.Hero{}
	var updatedAt string
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&hero.Name,
		&hero.URL,
		&hero.Role,
		&hero.Lane,
		&hero.Specialty,
		&hero.WinRate,
		&hero.Tier,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hero by name: %w", err)
	}

	if t, perr := time.Parse(time.RFC3339, updatedAt); perr == nil {
		hero.UpdatedAt = t
	}

	return hero, nil
}

// ListNames returns every canonical hero name.
func (r *heroRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT hero FROM heroes ORDER BY hero COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hero names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan hero name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hero names: %w", err)
	}

	return names, nil
}

// List returns all hero rows ordered by name.
func (r *heroRepository) List(ctx context.Context) ([]*models.Hero, error) {
	query := `
		SELECT hero, url, role, lane, specialty, win_rate, tier, updated_at
		FROM heroes
		ORDER BY hero COLLATE NOCASE
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list heroes: %w", err)
	}
	defer rows.Close()

	var heroes []*models.Hero
	for rows.Next() {
		hero := &models.Hero{}
		var updatedAt string
		if err := rows.Scan(
			&hero.Name,
			&hero.URL,
			&hero.Role,
			&hero.Lane,
			&hero.Specialty,
			&hero.WinRate,
			&hero.Tier,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan hero: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, updatedAt); perr == nil {
			hero.UpdatedAt = t
		}
		heroes = append(heroes, hero)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate heroes: %w", err)
	}

	return heroes, nil
}
