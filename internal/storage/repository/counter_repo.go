package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// CounterRepository handles database operations for counter-matchup edges.
type CounterRepository interface {
	// GetRelations returns all heroes the given hero has the relation against,
	// in insertion order.
	GetRelations(ctx context.Context, hero string, kind models.RelationKind) ([]string, error)

	// GetRelationHits returns the subset of the hero's relations whose target
	// appears in enemies. The intersection runs in SQL, not in the caller.
	GetRelationHits(ctx context.Context, hero string, enemies []string, kind models.RelationKind) ([]string, error)

	// ReplaceForHero deletes the hero's existing edges and inserts the given
	// relation lists. Used by the scraping pipeline on every refresh.
	ReplaceForHero(ctx context.Context, hero string, strongAgainst, weakAgainst []string) error
}

// counterRepository is the concrete implementation of CounterRepository.
type counterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new counter repository.
func NewCounterRepository(db *sql.DB) CounterRepository {
	return &counterRepository{db: db}
}

// GetRelations returns all heroes the given hero has the relation against.
func (r *counterRepository) GetRelations(ctx context.Context, hero string, kind models.RelationKind) ([]string, error) {
	query := `
		SELECT other_hero FROM counters
		WHERE hero = ? AND relation = ?
	`

	rows, err := r.db.QueryContext(ctx, query, hero, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	return scanHeroNames(rows)
}

// GetRelationHits returns the subset of the hero's relations targeting enemies.
func (r *counterRepository) GetRelationHits(ctx context.Context, hero string, enemies []string, kind models.RelationKind) ([]string, error) {
	if len(enemies) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(enemies))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT other_hero FROM counters
		WHERE hero = ? AND relation = ? AND other_hero IN (%s)
	`, placeholders)

	args := make([]any, 0, len(enemies)+2)
	args = append(args, hero, string(kind))
	for _, e := range enemies {
		args = append(args, e)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relation hits: %w", err)
	}
	defer rows.Close()

	return scanHeroNames(rows)
}

// ReplaceForHero deletes and reinserts the hero's counter edges.
func (r *counterRepository) ReplaceForHero(ctx context.Context, hero string, strongAgainst, weakAgainst []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM counters WHERE hero = ?`, hero); err != nil {
		return fmt.Errorf("failed to delete counters: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	insert := `
		INSERT OR REPLACE INTO counters (hero, other_hero, relation, updated_at)
		VALUES (?, ?, ?, ?)
	`

	for _, other := range strongAgainst {
		if other == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, hero, other, string(models.StrongAgainst), now); err != nil {
			return fmt.Errorf("failed to insert strong_against edge: %w", err)
		}
	}
	for _, other := range weakAgainst {
		if other == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, hero, other, string(models.WeakAgainst), now); err != nil {
			return fmt.Errorf("failed to insert weak_against edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit counters: %w", err)
	}

	return nil
}

// scanHeroNames collects a single-column result set of hero names.
func scanHeroNames(rows *sql.Rows) ([]string, error) {
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
