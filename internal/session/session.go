// Package session hosts private worlds for concurrent transports. Each
// Session serializes access to its World under one lock.
package session

import (
	"errors"
	"time"

	"github.com/sasha-s/go-deadlock"

	"geopits.dev/internal/protocol"
	"geopits.dev/internal/sim/board"
	"geopits.dev/internal/sim/world"
)

type Session struct {
	ID      string
	Seed    string
	Created time.Time

	mu       deadlock.Mutex
	w        *world.World
	lastUsed time.Time
}

func (s *Session) lock() func() {
	s.mu.Lock()
	return func() {
		s.lastUsed = time.Now()
		s.mu.Unlock()
	}
}

func (s *Session) Welcome() protocol.WelcomeMsg {
	defer s.lock()()
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       s.ID,
		WorldParams:     s.w.Params(),
	}
}

func (s *Session) State() protocol.StateMsg {
	defer s.lock()()
	return s.w.BuildState(s.ID)
}

// Move steps the player one cell in the named direction.
func (s *Session) Move(direction string) (protocol.StateMsg, error) {
	dir, err := world.ParseDirection(direction)
	if err != nil {
		return protocol.StateMsg{}, err
	}
	defer s.lock()()
	if _, err := s.w.Step(dir); err != nil {
		return protocol.StateMsg{}, err
	}
	return s.w.BuildState(s.ID), nil
}

// MoveTo places the player at an absolute position.
func (s *Session) MoveTo(x, y float64) (protocol.StateMsg, error) {
	defer s.lock()()
	if _, err := s.w.OnPlayerMove(world.Position{X: x, Y: y}); err != nil {
		return protocol.StateMsg{}, err
	}
	return s.w.BuildState(s.ID), nil
}

func (s *Session) Collect(cell [2]int, localID int) protocol.StateMsg {
	defer s.lock()()
	res := s.w.OnCollectRequest(board.CellRef{I: cell[0], J: cell[1]}, localID)
	st := s.w.BuildState(s.ID)
	st.Result = world.ResultMsg(protocol.TypeCollect, res)
	return st
}

func (s *Session) Deposit(cell [2]int) protocol.StateMsg {
	defer s.lock()()
	res := s.w.OnDepositRequest(board.CellRef{I: cell[0], J: cell[1]})
	st := s.w.BuildState(s.ID)
	st.Result = world.ResultMsg(protocol.TypeDeposit, res)
	return st
}

func (s *Session) Reset() protocol.StateMsg {
	defer s.lock()()
	s.w.Reset()
	return s.w.BuildState(s.ID)
}

func (s *Session) Survey(radius int) []world.SurveyEntry {
	defer s.lock()()
	return s.w.Survey(radius)
}

func (s *Session) History() []world.Position {
	defer s.lock()()
	return s.w.History()
}

func (s *Session) activeCaches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.w.GetActiveCacheSites())
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// ErrorCode maps session and world errors to protocol error codes.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return protocol.ErrSessionNotFound
	case errors.Is(err, ErrLimit):
		return protocol.ErrSessionLimit
	case errors.Is(err, board.ErrInvalidCoordinate):
		return protocol.ErrInvalidCoordinate
	case errors.Is(err, world.ErrUnknownDirection), errors.Is(err, world.ErrInvalidConfig):
		return protocol.ErrBadRequest
	}
	return protocol.ErrInternal
}
