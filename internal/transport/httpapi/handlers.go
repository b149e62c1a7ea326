package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"geopits.dev/internal/protocol"
	"geopits.dev/internal/session"
)

const maxSurveyRadius = 64

type CreateSessionRequest struct {
	Seed string `json:"seed,omitempty"`
}

type SessionResponse struct {
	Welcome protocol.WelcomeMsg `json:"welcome"`
	State   protocol.StateMsg   `json:"state"`
}

// MoveRequest is either a step (direction) or an absolute position.
type MoveRequest struct {
	Direction string   `json:"direction,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
}

type CollectRequest struct {
	Cell    [2]int `json:"cell"`
	LocalID int    `json:"local_id"`
}

type DepositRequest struct {
	Cell [2]int `json:"cell"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid request body: "+err.Error())
		return
	}
	s, err := h.sessions.Create(req.Seed)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, SessionResponse{Welcome: s.Welcome(), State: s.State()})
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string][]string{"sessions": h.sessions.IDs()})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, SessionResponse{Welcome: s.Welcome(), State: s.State()})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCaches(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"caches": s.State().Caches})
}

func (h *Handler) Survey(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	radius := 8
	if v := r.URL.Query().Get("radius"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxSurveyRadius {
			h.respondError(w, http.StatusBadRequest, protocol.ErrBadRequest, "radius must be an integer in [0,64]")
			return
		}
		radius = n
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"radius": radius, "caches": s.Survey(radius)})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"history": s.History()})
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req MoveRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid request body: "+err.Error())
		return
	}
	var (
		st  protocol.StateMsg
		err error
	)
	switch {
	case req.Direction != "":
		st, err = s.Move(req.Direction)
	case req.X != nil && req.Y != nil:
		st, err = s.MoveTo(*req.X, *req.Y)
	default:
		h.respondError(w, http.StatusBadRequest, protocol.ErrBadRequest, "direction or x/y required")
		return
	}
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, st)
}

func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req CollectRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, s.Collect(req.Cell, req.LocalID))
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req DepositRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, protocol.ErrBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, s.Deposit(req.Cell))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, s.Reset())
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err)
		return nil, false
	}
	return s, true
}

// decodeBody accepts an empty body as the zero request.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Warn("encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, protocol.NewError(code, message))
}

// respondErr maps a session or world error to a status and protocol code.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	code := session.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case protocol.ErrSessionNotFound:
		status = http.StatusNotFound
	case protocol.ErrSessionLimit:
		status = http.StatusServiceUnavailable
	case protocol.ErrBadRequest, protocol.ErrInvalidCoordinate:
		status = http.StatusBadRequest
	default:
		h.log.WithError(err).Error("request failed")
	}
	h.respondError(w, status, code, err.Error())
}
