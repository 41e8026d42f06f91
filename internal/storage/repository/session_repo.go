package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// ErrSessionNotFound is returned when a draft session id does not exist.
var ErrSessionNotFound = errors.New("draft session not found")

// SessionUpdate carries the fields a draft-in-progress may change. Nil fields
// are left untouched.
type SessionUpdate struct {
	Hero      *string
	Role      *string
	Enemies   []string
	Teammates []string
	Banned    []string
}

// SessionResult carries the post-game fields recorded on completion.
type SessionResult struct {
	Result    string
	Kills     int
	Deaths    int
	Assists   int
	MVPStatus *string
	Notes     *string
}

// SessionRepository manages live draft session rows.
type SessionRepository interface {
	// CreateOrResume returns the current in-progress session id, creating a
	// new row when none exists. Stale in-progress sessions older than a day
	// are cleaned up first.
	CreateOrResume(ctx context.Context) (int, error)

	// Update applies draft-progress changes to a session.
	Update(ctx context.Context, id int, upd SessionUpdate) error

	// Complete marks a session completed and records the game result.
	Complete(ctx context.Context, id int, res SessionResult) error

	// Get returns one session, or ErrSessionNotFound.
	Get(ctx context.Context, id int) (*models.DraftSession, error)

	// GetActive returns the newest in-progress session, or nil when none.
	GetActive(ctx context.Context) (*models.DraftSession, error)

	// Cancel deletes a session.
	Cancel(ctx context.Context, id int) error

	// Recent returns the newest sessions, for the history view.
	Recent(ctx context.Context, limit int) ([]*models.DraftSession, error)

	// CleanupAbandoned removes stale in-progress sessions and returns the
	// number deleted.
	CleanupAbandoned(ctx context.Context) (int, error)

	// Stats summarizes the sessions table.
	Stats(ctx context.Context) (*models.SessionStats, error)

	// CopyToHistory copies a completed session into game history. The session
	// must have a hero and at least one enemy.
	CopyToHistory(ctx context.Context, id int, history HistoryRepository) (*models.GameRecord, error)
}

// sessionRepository is the concrete implementation of SessionRepository.
type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new draft session repository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// CreateOrResume returns the active session id, creating one when needed.
func (r *sessionRepository) CreateOrResume(ctx context.Context) (int, error) {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM draft_sessions
		WHERE status = 'in_progress'
		  AND datetime(started_at) < datetime('now', '-1 day')
	`); err != nil {
		return 0, fmt.Errorf("failed to clean up stale sessions: %w", err)
	}

	var id int
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id FROM draft_sessions
		WHERE status = 'in_progress'
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up active session: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO draft_sessions (status) VALUES ('in_progress')`)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}

	return int(newID), nil
}

// Update applies draft-progress changes to a session.
func (r *sessionRepository) Update(ctx context.Context, id int, upd SessionUpdate) error {
	var sets []string
	var args []any

	if upd.Hero != nil {
		sets = append(sets, "your_hero = ?")
		args = append(args, *upd.Hero)
	}
	if upd.Role != nil {
		sets = append(sets, "your_role = ?")
		args = append(args, *upd.Role)
	}
	for _, col := range []struct {
		name  string
		value []string
	}{
		{"enemies", upd.Enemies},
		{"teammates", upd.Teammates},
		{"banned", upd.Banned},
	} {
		if col.value == nil {
			continue
		}
		encoded, err := json.Marshal(col.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", col.name, err)
		}
		sets = append(sets, col.name+" = ?")
		args = append(args, string(encoded))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE draft_sessions SET " + joinSets(sets) + " WHERE session_id = ?"
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Complete marks a session completed and records the game result.
func (r *sessionRepository) Complete(ctx context.Context, id int, res SessionResult) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE draft_sessions
		SET status = 'completed',
			completed_at = CURRENT_TIMESTAMP,
			result = ?,
			kills = ?,
			deaths = ?,
			assists = ?,
			mvp_status = ?,
			notes = ?
		WHERE session_id = ?
	`, res.Result, res.Kills, res.Deaths, res.Assists, res.MVPStatus, res.Notes, id)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// Get returns one session.
func (r *sessionRepository) Get(ctx context.Context, id int) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, sessionColumns+` FROM draft_sessions WHERE session_id = ?`, id)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// GetActive returns the newest in-progress session, or nil.
func (r *sessionRepository) GetActive(ctx context.Context) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, sessionColumns+`
		FROM draft_sessions
		WHERE status = 'in_progress'
		ORDER BY started_at DESC
		LIMIT 1
	`)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return session, nil
}

// Cancel deletes a session.
func (r *sessionRepository) Cancel(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM draft_sessions WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to cancel session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Recent returns the newest sessions.
func (r *sessionRepository) Recent(ctx context.Context, limit int) ([]*models.DraftSession, error) {
	rows, err := r.db.QueryContext(ctx, sessionColumns+`
		FROM draft_sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.DraftSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// CleanupAbandoned removes stale in-progress sessions.
// A session is stale after 24 hours, or after 1 hour with no hero picked.
func (r *sessionRepository) CleanupAbandoned(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM draft_sessions
		WHERE status = 'in_progress'
		  AND (
			datetime(started_at) < datetime('now', '-1 day')
			OR (your_hero IS NULL AND datetime(started_at) < datetime('now', '-1 hour'))
		  )
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleaned sessions: %w", err)
	}
	return int(n), nil
}

// Stats summarizes the sessions table.
func (r *sessionRepository) Stats(ctx context.Context) (*models.SessionStats, error) {
	var stats models.SessionStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0)
		FROM draft_sessions
	`).Scan(&stats.Total, &stats.Completed, &stats.InProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to query session stats: %w", err)
	}
	stats.Abandoned = stats.Total - stats.Completed - stats.InProgress
	return &stats, nil
}

// CopyToHistory copies a completed session into game history.
func (r *sessionRepository) CopyToHistory(ctx context.Context, id int, history HistoryRepository) (*models.GameRecord, error) {
	session, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionCompleted {
		return nil, fmt.Errorf("session %d is not completed", id)
	}
	if session.Hero == nil || *session.Hero == "" {
		return nil, fmt.Errorf("%w: session has no hero picked", ErrInvalidRecord)
	}
	if len(session.Enemies) == 0 {
		return nil, fmt.Errorf("%w: session has no enemies", ErrInvalidRecord)
	}

	rec := &models.GameRecord{
		Date:      time.Now().Format("2006-01-02"),
		Hero:      *session.Hero,
		Role:      session.Role,
		Teammates: session.Teammates,
		Enemies:   session.Enemies,
		Result:    derefOr(session.Result, "Loss"),
		MVPStatus: session.MVPStatus,
		Kills:     session.Kills,
		Deaths:    session.Deaths,
		Assists:   session.Assists,
		Notes:     session.Notes,
	}
	if err := history.Create(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

const sessionColumns = `
	SELECT session_id, status, started_at, completed_at,
	       your_hero, your_role, enemies, teammates, banned,
	       result, mvp_status, kills, deaths, assists, notes
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.DraftSession, error) {
	session := &models.DraftSession{}
	var startedAt string
	var completedAt sql.NullString
	var enemies, teammates, banned sql.NullString

	err := row.Scan(
		&session.ID,
		&session.Status,
		&startedAt,
		&completedAt,
		&session.Hero,
		&session.Role,
		&enemies,
		&teammates,
		&banned,
		&session.Result,
		&session.MVPStatus,
		&session.Kills,
		&session.Deaths,
		&session.Assists,
		&session.Notes,
	)
	if err != nil {
		return nil, err
	}

	if t, perr := time.Parse("2006-01-02 15:04:05", startedAt); perr == nil {
		session.StartedAt = t
	}
	if completedAt.Valid {
		if t, perr := time.Parse("2006-01-02 15:04:05", completedAt.String); perr == nil {
			session.CompletedAt = &t
		}
	}
	session.Enemies = decodeNameList(enemies)
	session.Teammates = decodeNameList(teammates)
	session.Banned = decodeNameList(banned)

	return session, nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
