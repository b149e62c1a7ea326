package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"geopits.dev/internal/logging"
	"geopits.dev/internal/persistence/indexdb"
	persistlog "geopits.dev/internal/persistence/log"
	"geopits.dev/internal/session"
	"geopits.dev/internal/sim/tuning"
	"geopits.dev/internal/sim/world"
	"geopits.dev/internal/transport/httpapi"
	"geopits.dev/internal/transport/ws"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		tuningPath  = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir     = flag.String("data", "./data", "runtime data directory (event journal + index)")
		seed        = flag.String("seed", "", "world seed override (default: tuning world_seed)")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite event index")
		maxSessions = flag.Int("max_sessions", 1024, "max concurrent sessions (0 = unlimited)")
		idle        = flag.Duration("session_idle", 30*time.Minute, "close sessions idle for longer than this (0 = never)")
	)
	flag.Parse()

	logger := logging.New()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Warnf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if s := strings.TrimSpace(*seed); s != "" {
		tune.WorldSeed = s
	}

	sinks, closeSinks, idx := openSinks(*dataDir, *disableDB, logger)
	defer closeSinks()

	sessions := session.NewManager(session.Config{
		Tuning:      tune,
		Events:      sinks,
		Recorder:    recorderOrNil(idx),
		Logger:      logger,
		MaxSessions: *maxSessions,
	})

	ctx, cancel := signalContext()
	defer cancel()

	if *idle > 0 {
		go expireLoop(ctx, sessions, *idle, logger)
	}

	router := httpapi.NewRouter(httpapi.Config{
		Sessions: sessions,
		WS:       ws.NewServer(sessions, logger).Handler(),
		Index:    idx,
		Logger:   logger,
	})
	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.WithField("seed", tune.WorldSeed).WithField("radius", tune.NeighborhoodRadius).Infof("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	// Hijacked websocket connections outlive Shutdown; close their sessions
	// while the sinks are still open.
	for _, id := range sessions.IDs() {
		_ = sessions.Delete(id)
	}
}

// openSinks wires the event journal and, unless disabled, the sqlite index.
func openSinks(dataDir string, disableDB bool, logger *logrus.Logger) (world.EventLogger, func(), *indexdb.SQLiteIndex) {
	var sinks persistlog.MultiLogger
	var closers []func() error

	if envBool("GEOPITS_JOURNAL", true) {
		j := persistlog.NewEventLogger(dataDir)
		sinks = append(sinks, j)
		closers = append(closers, j.Close)
	}

	var idx *indexdb.SQLiteIndex
	if !disableDB {
		var err error
		idx, err = indexdb.OpenSQLite(filepath.Join(dataDir, "index", "events.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		sinks = append(sinks, idx)
		closers = append(closers, idx.Close)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.WithError(err).Warn("close sink")
			}
		}
	}
	if len(sinks) == 0 {
		return nil, closeAll, idx
	}
	return sinks, closeAll, idx
}

func recorderOrNil(idx *indexdb.SQLiteIndex) session.Recorder {
	if idx == nil {
		return nil
	}
	return idx
}

func expireLoop(ctx context.Context, m *session.Manager, idle time.Duration, logger logrus.FieldLogger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Expire(idle); n > 0 {
				logger.WithField("closed", n).Info("expired idle sessions")
			}
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
