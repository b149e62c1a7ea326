package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	sessionID := fs.String("session", "", "session id")
	_ = fs.Parse(args)

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "missing -session")
		os.Exit(2)
	}
	if err := fetch(os.Stdout, *baseURL, "/v1/sessions/"+*sessionID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	if err := fetch(os.Stdout, *baseURL, "/v1/sessions"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fetch GETs path from the server and copies the body to out. Non-2xx
// responses are errors after the body is written.
func fetch(out io.Writer, baseURL, path string) error {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Fprintln(out, strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%s: %s", u, resp.Status)
	}
	return nil
}
