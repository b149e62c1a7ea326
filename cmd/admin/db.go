package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"geopits.dev/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/events.sqlite)")
	sessionID := fs.String("session", "", "session id (ledger, counts)")
	limit := fs.Int("limit", 20, "result limit (sessions)")
	_ = fs.Parse(args)

	q := "sessions"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "events.sqlite")
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	if err := runQuery(context.Background(), os.Stdout, idx, q, *sessionID, *limit); err != nil {
		fmt.Fprintln(os.Stderr, q+":", err)
		os.Exit(1)
	}
}

func runQuery(ctx context.Context, out io.Writer, idx *indexdb.SQLiteIndex, q, sessionID string, limit int) error {
	if q != "sessions" && sessionID == "" {
		return fmt.Errorf("missing -session")
	}
	switch q {
	case "sessions":
		recs, err := idx.Sessions(ctx, limit)
		if err != nil {
			return err
		}
		for _, r := range recs {
			printJSON(out, r)
		}

	case "ledger":
		held, err := idx.TokenLedger(ctx, sessionID)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(held))
		for _, k := range held {
			keys = append(keys, k.String())
		}
		printJSON(out, map[string]any{"session_id": sessionID, "points": len(held), "held": keys})

	case "counts":
		counts, err := idx.EventCounts(ctx, sessionID)
		if err != nil {
			return err
		}
		printJSON(out, map[string]any{"session_id": sessionID, "events": counts})

	default:
		return fmt.Errorf("unknown query %q", q)
	}
	return nil
}
