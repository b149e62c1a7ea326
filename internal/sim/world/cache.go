package world

import (
	"fmt"

	"geopits.dev/internal/sim/board"
	"geopits.dev/internal/sim/luck"
)

// WorldGen holds everything that decides cache placement and size. Two
// worlds with equal WorldGen generate identical caches for every cell.
type WorldGen struct {
	Seed              string
	SpawnProbability  float64
	MaxTokensPerCache int
}

// Spawns reports whether cell (i, j) hosts a cache.
func (g WorldGen) Spawns(i, j int) bool {
	return luck.Below(g.SpawnProbability, g.Seed, i, j)
}

// TokenCount is the generated size of the cache at (i, j). It is only
// meaningful when Spawns(i, j) is true.
func (g WorldGen) TokenCount(i, j int) int {
	return luck.Scaled(g.MaxTokensPerCache, g.Seed, i, j, luck.TagTotalCoins)
}

// TokenKey is the global identity of a token within one world.
type TokenKey struct {
	I       int `json:"i"`
	J       int `json:"j"`
	LocalID int `json:"local_id"`
}

func (k TokenKey) String() string { return fmt.Sprintf("%d:%d#%d", k.I, k.J, k.LocalID) }

func (k TokenKey) Cell() board.CellRef { return board.CellRef{I: k.I, J: k.J} }

type Token struct {
	cell      *board.Cell
	localID   int
	collected bool
}

func (t *Token) Cell() *board.Cell { return t.cell }
func (t *Token) LocalID() int      { return t.localID }
func (t *Token) Collected() bool   { return t.collected }

func (t *Token) Key() TokenKey {
	return TokenKey{I: t.cell.I(), J: t.cell.J(), LocalID: t.localID}
}

// CacheSite is the generated content of one active cell.
type CacheSite struct {
	cell   *board.Cell
	tokens []*Token
}

// MaybeCreate evaluates the spawn decision for cell and, if it hosts a
// cache, allocates its tokens with local ids 0..n-1, all uncollected.
func MaybeCreate(cell *board.Cell, gen WorldGen) *CacheSite {
	if !gen.Spawns(cell.I(), cell.J()) {
		return nil
	}
	n := gen.TokenCount(cell.I(), cell.J())
	site := &CacheSite{
		cell:   cell,
		tokens: make([]*Token, n),
	}
	for id := 0; id < n; id++ {
		site.tokens[id] = &Token{cell: cell, localID: id}
	}
	return site
}

func (s *CacheSite) Cell() *board.Cell { return s.cell }

// Total is the number of tokens generated for the site, collected or not.
func (s *CacheSite) Total() int { return len(s.tokens) }

// RemainingCount counts uncollected tokens. It is derived on every call so
// it cannot drift from the tokens' flags.
func (s *CacheSite) RemainingCount() int {
	n := 0
	for _, t := range s.tokens {
		if !t.collected {
			n++
		}
	}
	return n
}

// Token returns the token with the given local id, or nil if out of range.
func (s *CacheSite) Token(localID int) *Token {
	if localID < 0 || localID >= len(s.tokens) {
		return nil
	}
	return s.tokens[localID]
}

// Tokens returns the site's tokens in local id order. The slice is a copy.
func (s *CacheSite) Tokens() []*Token {
	out := make([]*Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// bind swaps freshly generated tokens for the instances the inventory
// already tracks, so each key maps to exactly one *Token.
func (s *CacheSite) bind(inv *Inventory) int {
	bound := 0
	for id, t := range s.tokens {
		if held := inv.Get(t.Key()); held != nil {
			s.tokens[id] = held
			bound++
		}
	}
	return bound
}
