package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"geopits.dev/internal/sim/world"
)

// SQLiteIndex is a queryable read model of the event journal. Writes are
// queued and applied by a single writer goroutine; when the queue is full
// they are dropped and counted.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders sends against close(ch): senders hold it shared, Close
	// holds it exclusively while flipping closed.
	mu     sync.RWMutex
	closed bool

	dropEvents   atomic.Uint64
	dropSessions atomic.Uint64
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqSessionOpen
	reqSessionClose
	reqSync
)

type req struct {
	kind reqKind

	event   world.Event
	session sessionRow
	done    chan struct{}
}

type sessionRow struct {
	ID      string
	WorldID string
	Seed    string
	At      string
}

type Stats struct {
	QueueDepth       int
	QueueCapacity    int
	DropEventTotal   uint64
	DropSessionTotal uint64
}

const queueSize = 65536

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, queueSize),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			seed TEXT NOT NULL,
			opened_at TEXT NOT NULL,
			closed_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			world_id TEXT NOT NULL,
			cell_i INTEGER,
			cell_j INTEGER,
			local_id INTEGER,
			tokens INTEGER NOT NULL,
			points INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(session_id, kind, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_cell ON events(cell_i, cell_j);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropEventTotal:   s.dropEvents.Load(),
		DropSessionTotal: s.dropSessions.Load(),
	}
}

func (s *SQLiteIndex) WriteEvent(ev world.Event) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- req{kind: reqEvent, event: ev}:
	default:
		// Drop if the indexer falls behind; the JSONL journal remains the source of truth.
		s.dropEvents.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSessionOpen(id, worldID, seed string) {
	s.enqueueSession(req{kind: reqSessionOpen, session: sessionRow{ID: id, WorldID: worldID, Seed: seed, At: now()}})
}

func (s *SQLiteIndex) RecordSessionClose(id string) {
	s.enqueueSession(req{kind: reqSessionClose, session: sessionRow{ID: id, At: now()}})
}

func (s *SQLiteIndex) enqueueSession(r req) {
	if s == nil || r.session.ID == "" {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropSessions.Add(1)
	}
}

// Sync blocks until every write queued before the call is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil
	}
	select {
	case s.ch <- req{kind: reqSync, done: done}:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(session_id,seq,kind,world_id,cell_i,cell_j,local_id,tokens,points,x,y,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	openSession, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(session_id,world_id,seed,opened_at) VALUES(?,?,?,?)`)
	closeSession, _ := s.db.Prepare(`UPDATE sessions SET closed_at=? WHERE session_id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertEvent, openSession, closeSession} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		if r.kind == reqSync {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEvent:
			ev := r.event
			raw, _ := json.Marshal(ev)
			var ci, cj sql.NullInt64
			if ev.Cell != nil {
				ci = sql.NullInt64{Int64: int64(ev.Cell.I), Valid: true}
				cj = sql.NullInt64{Int64: int64(ev.Cell.J), Valid: true}
			}
			exec(insertEvent,
				ev.SessionID,
				int64(ev.Seq),
				ev.Kind,
				ev.WorldID,
				ci, cj,
				nullInt(ev.LocalID),
				ev.Tokens,
				ev.Points,
				ev.Pos.X, ev.Pos.Y,
				string(raw),
			)
		case reqSessionOpen:
			se := r.session
			exec(openSession, se.ID, se.WorldID, se.Seed, se.At)
		case reqSessionClose:
			se := r.session
			exec(closeSession, se.At, se.ID)
		}
		// Commit when idle too: queries share the single connection.
		if tx != nil && (len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
