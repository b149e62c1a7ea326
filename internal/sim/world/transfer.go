package world

import "geopits.dev/internal/sim/board"

type TransferCode string

const (
	TransferOK               TransferCode = "OK"
	TransferStale            TransferCode = "STALE"
	TransferNoToken          TransferCode = "NO_TOKEN"
	TransferAlreadyCollected TransferCode = "ALREADY_COLLECTED"
	TransferNothingHeld      TransferCode = "NOTHING_HELD"
)

// TransferResult reports the outcome of a collect or deposit. Every code
// other than TransferOK means no state changed.
type TransferResult struct {
	Code   TransferCode
	Token  *Token
	Points int
}

func (r TransferResult) OK() bool { return r.Code == TransferOK }

// isLive reports whether site is the instance currently active for its cell.
// A pointer kept across a window exit is stale even if the cell re-entered.
func (w *World) isLive(site *CacheSite) bool {
	if site == nil {
		return false
	}
	cur, ok := w.active[site.cell.Ref()]
	return ok && cur == site
}

func (w *World) collect(site *CacheSite, localID int) TransferResult {
	p := &w.player
	if !w.isLive(site) {
		return TransferResult{Code: TransferStale, Points: p.points}
	}
	t := site.Token(localID)
	if t == nil {
		return TransferResult{Code: TransferNoToken, Points: p.points}
	}
	if t.collected {
		return TransferResult{Code: TransferAlreadyCollected, Token: t, Points: p.points}
	}
	t.collected = true
	p.points++
	p.inventory.insert(t)

	ref := site.cell.Ref()
	id := t.localID
	w.emit(Event{Kind: EventCollect, Cell: &ref, LocalID: &id, Tokens: site.RemainingCount()})
	return TransferResult{Code: TransferOK, Token: t, Points: p.points}
}

// deposit returns the earliest collected held token to its origin cache.
// site must be live; it is the cache the player interacted with.
func (w *World) deposit(site *CacheSite) TransferResult {
	p := &w.player
	if !w.isLive(site) {
		return TransferResult{Code: TransferStale, Points: p.points}
	}
	t := p.inventory.firstHeld()
	if t == nil {
		return TransferResult{Code: TransferNothingHeld, Points: p.points}
	}
	t.collected = false
	p.points--

	ref := t.cell.Ref()
	id := t.localID
	ev := Event{Kind: EventDeposit, Cell: &ref, LocalID: &id}
	if origin, ok := w.active[ref]; ok {
		ev.Tokens = origin.RemainingCount()
	}
	w.emit(ev)
	return TransferResult{Code: TransferOK, Token: t, Points: p.points}
}

// returnAll deposits every held token.
func (w *World) returnAll() int {
	n := 0
	for _, t := range w.player.inventory.Held() {
		t.collected = false
		n++
	}
	w.player.points = 0
	return n
}

// OnCollectRequest collects token localID from the active cache at cell.
func (w *World) OnCollectRequest(cell board.CellRef, localID int) TransferResult {
	return w.collect(w.active[cell], localID)
}

// OnDepositRequest deposits the earliest held token via the active cache at
// cell.
func (w *World) OnDepositRequest(cell board.CellRef) TransferResult {
	return w.deposit(w.active[cell])
}

// CollectFrom is OnCollectRequest for hosts that keep *CacheSite handles.
func (w *World) CollectFrom(site *CacheSite, localID int) TransferResult {
	return w.collect(site, localID)
}

// DepositInto is OnDepositRequest for hosts that keep *CacheSite handles.
func (w *World) DepositInto(site *CacheSite) TransferResult {
	return w.deposit(site)
}
