package world

import (
	"geopits.dev/internal/protocol"
	"geopits.dev/internal/sim/board"
)

// GetActiveCacheSites returns the active caches ordered by (i, j).
func (w *World) GetActiveCacheSites() []*CacheSite { return w.activeSorted() }

// ActiveSite returns the live site at cell, if any.
func (w *World) ActiveSite(cell board.CellRef) (*CacheSite, bool) {
	s, ok := w.active[cell]
	return s, ok
}

func (w *World) Player() PlayerView {
	v := PlayerView{
		Position: w.player.pos,
		Cell:     w.player.cell.Ref(),
		Points:   w.player.points,
	}
	for _, t := range w.player.inventory.Held() {
		v.Held = append(v.Held, t.Key())
	}
	return v
}

// History returns a copy of the movement trail, oldest first.
func (w *World) History() []Position {
	out := make([]Position, len(w.history))
	copy(out, w.history)
	return out
}

type SurveyEntry struct {
	Cell   board.CellRef `json:"cell"`
	Tokens int           `json:"tokens"`
	Active bool          `json:"active"`
}

// Survey lists cache-bearing cells in the half-open neighbourhood
// [-radius, radius) around the player without activating anything. Tokens
// is the generated size, not the live count.
func (w *World) Survey(radius int) []SurveyEntry {
	var out []SurveyEntry
	for _, c := range w.board.NeighborCells(w.player.cell, radius) {
		if !w.gen.Spawns(c.I(), c.J()) {
			continue
		}
		_, active := w.active[c.Ref()]
		out = append(out, SurveyEntry{
			Cell:   c.Ref(),
			Tokens: w.gen.TokenCount(c.I(), c.J()),
			Active: active,
		})
	}
	return out
}

func (w *World) Params() protocol.WorldParams {
	return protocol.WorldParams{
		Seed:               w.cfg.Seed,
		GridStep:           w.cfg.GridStep,
		NeighborhoodRadius: w.cfg.NeighborhoodRadius,
		SpawnProbability:   w.cfg.SpawnProbability,
		MaxTokensPerCache:  w.cfg.MaxTokensPerCache,
		MoveStep:           w.cfg.MoveStep,
	}
}

// BuildState renders the world into a STATE message.
func (w *World) BuildState(sessionID string) protocol.StateMsg {
	p := w.Player()
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		Seq:             w.seq,
		Player: protocol.PlayerState{
			Pos:    [2]float64{p.Position.X, p.Position.Y},
			Cell:   [2]int{p.Cell.I, p.Cell.J},
			Points: p.Points,
			Held:   make([]string, 0, len(p.Held)),
		},
		Caches: make([]protocol.CacheState, 0, len(w.active)),
	}
	for _, k := range p.Held {
		msg.Player.Held = append(msg.Player.Held, k.String())
	}
	for _, s := range w.activeSorted() {
		cs := protocol.CacheState{
			Cell:      [2]int{s.cell.I(), s.cell.J()},
			Total:     s.Total(),
			Remaining: s.RemainingCount(),
			Tokens:    make([]protocol.TokenState, 0, len(s.tokens)),
		}
		for _, t := range s.tokens {
			cs.Tokens = append(cs.Tokens, protocol.TokenState{ID: t.localID, Collected: t.collected})
		}
		msg.Caches = append(msg.Caches, cs)
	}
	return msg
}

// ResultMsg converts a transfer outcome for a STATE message.
func ResultMsg(op string, r TransferResult) *protocol.TransferResult {
	out := &protocol.TransferResult{Op: op, Code: string(r.Code)}
	if r.Token != nil {
		out.Token = r.Token.Key().String()
	}
	return out
}
