package indexdb

import (
	"context"
	"database/sql"
	"errors"

	"geopits.dev/internal/sim/world"
)

// TokenLedger returns the tokens a session currently holds according to
// the index: collects minus deposits since its last reset, in (i, j, id)
// order.
func (s *SQLiteIndex) TokenLedger(ctx context.Context, sessionID string) ([]world.TokenKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cell_i, cell_j, local_id,
			SUM(CASE kind WHEN 'COLLECT' THEN 1 ELSE -1 END) AS net
		FROM events
		WHERE session_id = ?
			AND kind IN ('COLLECT', 'DEPOSIT')
			AND seq > (SELECT COALESCE(MAX(seq), 0) FROM events WHERE session_id = ? AND kind = 'RESET')
		GROUP BY cell_i, cell_j, local_id
		HAVING net > 0
		ORDER BY cell_i, cell_j, local_id`, sessionID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []world.TokenKey
	for rows.Next() {
		var k world.TokenKey
		var net int
		if err := rows.Scan(&k.I, &k.J, &k.LocalID, &net); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// EventCounts returns the number of indexed events per kind for a session.
func (s *SQLiteIndex) EventCounts(ctx context.Context, sessionID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

type SessionRecord struct {
	ID       string `json:"session_id"`
	WorldID  string `json:"world_id"`
	Seed     string `json:"seed"`
	OpenedAt string `json:"opened_at"`
	ClosedAt string `json:"closed_at,omitempty"`
}

func (s *SQLiteIndex) Session(ctx context.Context, id string) (SessionRecord, bool, error) {
	var r SessionRecord
	var closed *string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, world_id, seed, opened_at, closed_at FROM sessions WHERE session_id = ?`, id,
	).Scan(&r.ID, &r.WorldID, &r.Seed, &r.OpenedAt, &closed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, false, nil
		}
		return r, false, err
	}
	if closed != nil {
		r.ClosedAt = *closed
	}
	return r, true, nil
}

// Sessions lists indexed sessions, most recently opened first.
func (s *SQLiteIndex) Sessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, world_id, seed, opened_at, COALESCE(closed_at, '') FROM sessions ORDER BY opened_at DESC, session_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.ID, &r.WorldID, &r.Seed, &r.OpenedAt, &r.ClosedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
