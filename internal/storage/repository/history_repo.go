package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// ErrInvalidRecord is returned when a game record fails write-time validation.
var ErrInvalidRecord = errors.New("invalid game record")

// HistoryRepository handles database operations for the user's game history.
//
// The game_history table is a soft dependency: on a fresh installation it may
// not exist yet. Read methods treat a missing table as an empty history and
// never fail because of it.
type HistoryRepository interface {
	// Create inserts a validated game record and sets its ID.
	Create(ctx context.Context, rec *models.GameRecord) error

	// ListByHero returns every record where the user played the given hero,
	// oldest first.
	ListByHero(ctx context.Context, hero string) ([]*models.GameRecord, error)

	// ListAll returns the full history, oldest first.
	ListAll(ctx context.Context) ([]*models.GameRecord, error)

	// Recent returns the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]*models.GameRecord, error)

	// ListWithNotes returns records carrying at least minNoteLen characters of
	// notes, newest first. Hero filters to one hero when non-empty.
	ListWithNotes(ctx context.Context, hero string, minNoteLen int) ([]*models.GameRecord, error)

	// Delete removes one record by id.
	Delete(ctx context.Context, id int) error

	// Available reports whether the game_history table exists yet.
	Available(ctx context.Context) (bool, error)
}

// historyRepository is the concrete implementation of HistoryRepository.
type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new game history repository.
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Create inserts a validated game record.
func (r *historyRepository) Create(ctx context.Context, rec *models.GameRecord) error {
	if rec.Hero == "" {
		return fmt.Errorf("%w: hero is required", ErrInvalidRecord)
	}
	if len(rec.Enemies) == 0 {
		return fmt.Errorf("%w: at least one enemy is required", ErrInvalidRecord)
	}
	if rec.Result != "Win" && rec.Result != "Loss" {
		return fmt.Errorf("%w: result must be Win or Loss, got %q", ErrInvalidRecord, rec.Result)
	}

	date := rec.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	teammates, err := json.Marshal(emptyIfNil(rec.Teammates))
	if err != nil {
		return fmt.Errorf("failed to encode teammates: %w", err)
	}
	enemies, err := json.Marshal(rec.Enemies)
	if err != nil {
		return fmt.Errorf("failed to encode enemies: %w", err)
	}

	query := `
		INSERT INTO game_history
			(date, your_hero, your_role, teammates, enemies, result,
			 mvp_status, kills, deaths, assists, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		date,
		rec.Hero,
		rec.Role,
		string(teammates),
		string(enemies),
		rec.Result,
		rec.MVPStatus,
		rec.Kills,
		rec.Deaths,
		rec.Assists,
		rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create game record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rec.ID = int(id)
	rec.Date = date

	return nil
}

// ListByHero returns records for one hero, oldest first.
func (r *historyRepository) ListByHero(ctx context.Context, hero string) ([]*models.GameRecord, error) {
	query := gameRecordColumns + `
		FROM game_history
		WHERE your_hero = ?
		ORDER BY date ASC, game_id ASC
	`
	return r.queryRecords(ctx, query, hero)
}

// ListAll returns the full history, oldest first.
func (r *historyRepository) ListAll(ctx context.Context) ([]*models.GameRecord, error) {
	query := gameRecordColumns + `
		FROM game_history
		ORDER BY date ASC, game_id ASC
	`
	return r.queryRecords(ctx, query)
}

// Recent returns the most recent records, newest first.
func (r *historyRepository) Recent(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	query := gameRecordColumns + `
		FROM game_history
		ORDER BY date DESC, game_id DESC
		LIMIT ?
	`
	return r.queryRecords(ctx, query, limit)
}

// ListWithNotes returns records carrying notes.
func (r *historyRepository) ListWithNotes(ctx context.Context, hero string, minNoteLen int) ([]*models.GameRecord, error) {
	if hero != "" {
		query := gameRecordColumns + `
			FROM game_history
			WHERE notes IS NOT NULL AND LENGTH(notes) >= ? AND your_hero = ?
			ORDER BY date DESC, game_id DESC
		`
		return r.queryRecords(ctx, query, minNoteLen, hero)
	}

	query := gameRecordColumns + `
		FROM game_history
		WHERE notes IS NOT NULL AND LENGTH(notes) >= ?
		ORDER BY date DESC, game_id DESC
	`
	return r.queryRecords(ctx, query, minNoteLen)
}

// Delete removes one record by id.
func (r *historyRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM game_history WHERE game_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete game record: %w", err)
	}
	return nil
}

const gameRecordColumns = `
	SELECT game_id, date, your_hero, your_role, teammates, enemies, result,
	       mvp_status, kills, deaths, assists, notes, created_at
`

func (r *historyRepository) Available(ctx context.Context) (bool, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'game_history'`,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check game history table: %w", err)
	}
	return true, nil
}

// queryRecords runs a game_history query, mapping a missing table to an empty
// result instead of an error.
func (r *historyRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.GameRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	var records []*models.GameRecord
	for rows.Next() {
		rec := &models.GameRecord{}
		var teammates, enemies sql.NullString
		var createdAt sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.Date,
			&rec.Hero,
			&rec.Role,
			&teammates,
			&enemies,
			&rec.Result,
			&rec.MVPStatus,
			&rec.Kills,
			&rec.Deaths,
			&rec.Assists,
			&rec.Notes,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}

		rec.Teammates = decodeNameList(teammates)
		rec.Enemies = decodeNameList(enemies)
		if createdAt.Valid {
			if t, perr := time.Parse("2006-01-02 15:04:05", createdAt.String); perr == nil {
				rec.CreatedAt = t
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game history: %w", err)
	}

	return records, nil
}

// decodeNameList parses a JSON array column, tolerating NULL and malformed
// values by returning an empty list.
func decodeNameList(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(col.String), &names); err != nil {
		return nil
	}
	return names
}

// isMissingTable reports whether err is sqlite's missing-table error.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
