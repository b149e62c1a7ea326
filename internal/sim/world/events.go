package world

import "geopits.dev/internal/sim/board"

const (
	EventMove       = "MOVE"
	EventActivate   = "ACTIVATE"
	EventDeactivate = "DEACTIVATE"
	EventCollect    = "COLLECT"
	EventDeposit    = "DEPOSIT"
	EventReset      = "RESET"
)

// Event records one state transition of a World. A session's events carry
// enough to rebuild it from the same seed (see cmd/replay).
type Event struct {
	Seq       uint64         `json:"seq"`
	Kind      string         `json:"kind"`
	WorldID   string         `json:"world_id"`
	SessionID string         `json:"session_id,omitempty"`
	Cell      *board.CellRef `json:"cell,omitempty"`
	LocalID   *int           `json:"local_id,omitempty"`
	Tokens    int            `json:"tokens,omitempty"`
	Points    int            `json:"points"`
	Pos       Position       `json:"pos"`
}

// EventLogger receives every Event a World emits. Implemented in
// internal/persistence/*.
type EventLogger interface {
	WriteEvent(ev Event) error
}
