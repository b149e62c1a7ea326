package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"geopits.dev/internal/protocol"
	"geopits.dev/internal/session"
)

// Server speaks the JSON protocol over websockets. Every connection owns a
// private session that is closed when the connection ends.
type Server struct {
	sessions *session.Manager
	log      logrus.FieldLogger

	upgrader websocket.Upgrader
}

func NewServer(m *session.Manager, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		sessions: m,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		log := s.log.WithField("session", sess.ID)
		defer func() {
			_ = s.sessions.Delete(sess.ID)
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan any, 16)

		// Writer goroutine.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case v := <-out:
					if err := writeJSON(conn, v); err != nil {
						log.WithError(err).Debug("ws write failed")
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			reply := s.dispatch(sess, msg)
			select {
			case out <- reply:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()
		<-done
	}
}

// dispatch applies one client message and returns the reply.
func (s *Server) dispatch(sess *session.Session, msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError(protocol.ErrProtoBadRequest, "invalid json")
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(protocol.ErrProtoBadRequest, "bad protocol_version")
	}

	switch base.Type {
	case protocol.TypeMove:
		var m protocol.MoveMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewError(protocol.ErrProtoBadRequest, err.Error())
		}
		return stateOrError(sess.Move(m.Direction))
	case protocol.TypePosition:
		var m protocol.PositionMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewError(protocol.ErrProtoBadRequest, err.Error())
		}
		return stateOrError(sess.MoveTo(m.X, m.Y))
	case protocol.TypeCollect:
		var m protocol.CollectMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewError(protocol.ErrProtoBadRequest, err.Error())
		}
		return sess.Collect(m.Cell, m.LocalID)
	case protocol.TypeDeposit:
		var m protocol.DepositMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return protocol.NewError(protocol.ErrProtoBadRequest, err.Error())
		}
		return sess.Deposit(m.Cell)
	case protocol.TypeReset:
		return sess.Reset()
	}
	return protocol.NewError(protocol.ErrProtoBadRequest, "unknown message type: "+base.Type)
}

func stateOrError(st protocol.StateMsg, err error) any {
	if err != nil {
		return protocol.NewError(session.ErrorCode(err), err.Error())
	}
	return st
}

func (s *Server) handshake(conn *websocket.Conn) *session.Session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}

	sess, err := s.sessions.Create(hello.Seed)
	if err != nil {
		_ = writeJSON(conn, protocol.NewError(session.ErrorCode(err), err.Error()))
		return nil
	}
	s.log.WithField("session", sess.ID).WithField("client", hello.ClientName).Info("ws client joined")

	// Send welcome + initial state immediately.
	if err := writeJSON(conn, sess.Welcome()); err != nil {
		_ = s.sessions.Delete(sess.ID)
		return nil
	}
	if err := writeJSON(conn, sess.State()); err != nil {
		_ = s.sessions.Delete(sess.ID)
		return nil
	}
	return sess
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
