// Command bot is a websocket client that wanders a private world and picks
// up every token it stands on.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"geopits.dev/internal/logging"
	"geopits.dev/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "bot", "client name")
		seed  = flag.String("seed", "", "world seed (optional)")
		steps = flag.Int("steps", 200, "moves before quitting")
		rseed = flag.Int64("rand", 1, "seed for the walk")
	)
	flag.Parse()

	logger := logging.New().WithField("bot", *name)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.WithError(err).Fatal("dial")
	}
	defer conn.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	b := &bot{conn: conn, log: logger, r: rand.New(rand.NewSource(*rseed)), steps: *steps}
	st, err := b.run(*name, *seed)
	if err != nil {
		logger.WithError(err).Fatal("bot stopped")
	}
	logger.WithField("points", st.Player.Points).WithField("held", len(st.Player.Held)).Info("done")
}

var directions = []string{"N", "S", "E", "W"}

type bot struct {
	conn  *websocket.Conn
	log   logrus.FieldLogger
	r     *rand.Rand
	steps int
}

// run performs the handshake and walks until steps moves are spent. It
// returns the last STATE seen.
func (b *bot) run(name, seed string) (*protocol.StateMsg, error) {
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      name,
		Seed:            seed,
	}
	if err := b.conn.WriteJSON(hello); err != nil {
		return nil, fmt.Errorf("send HELLO: %w", err)
	}

	var last *protocol.StateMsg
	moves := 0
	for {
		_, msg, err := b.conn.ReadMessage()
		if err != nil {
			return last, err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.log.WithField("session", w.SessionID).WithField("seed", w.WorldParams.Seed).Info("WELCOME")

		case protocol.TypeError:
			var e protocol.ErrorMsg
			_ = json.Unmarshal(msg, &e)
			return last, errors.New(e.Code + ": " + e.Message)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			last = &st
			if st.Result != nil && st.Result.Code == "OK" {
				b.log.WithField("op", st.Result.Op).WithField("token", st.Result.Token).Debug("transfer")
			}
			next := nextAction(&st, b.r)
			if _, isMove := next.(protocol.MoveMsg); isMove {
				if moves >= b.steps {
					return last, nil
				}
				moves++
			}
			if err := b.conn.WriteJSON(next); err != nil {
				return last, err
			}
		}
	}
}

// nextAction collects the first remaining token in the player's cell, or
// takes a random step.
func nextAction(st *protocol.StateMsg, r *rand.Rand) any {
	for _, c := range st.Caches {
		if c.Cell != st.Player.Cell || c.Remaining == 0 {
			continue
		}
		for _, t := range c.Tokens {
			if !t.Collected {
				return protocol.CollectMsg{
					Type:            protocol.TypeCollect,
					ProtocolVersion: protocol.Version,
					Cell:            c.Cell,
					LocalID:         t.ID,
				}
			}
		}
	}
	return protocol.MoveMsg{
		Type:            protocol.TypeMove,
		ProtocolVersion: protocol.Version,
		Direction:       directions[r.Intn(len(directions))],
	}
}
