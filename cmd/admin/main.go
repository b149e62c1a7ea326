// Command admin inspects a running server, its sqlite index and the world
// layout for a seed.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"geopits.dev/internal/sim/tuning"
	"geopits.dev/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "list":
			listCmd(os.Args[2:])
			return
		}
	}
	surveyCmd(os.Args[1:])
}

// surveyCmd prints the caches around a position without running a server.
func surveyCmd(args []string) {
	fs := flag.NewFlagSet("survey", flag.ExitOnError)
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
	seed := fs.String("seed", "", "world seed (default: tuning seed)")
	x := fs.Float64("x", world.DefaultStart.X, "latitude")
	y := fs.Float64("y", world.DefaultStart.Y, "longitude")
	radius := fs.Int("radius", 0, "survey radius in cells (default: neighborhood radius)")
	_ = fs.Parse(args)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}
	if err := runSurvey(os.Stdout, tune, *seed, world.Position{X: *x, Y: *y}, *radius); err != nil {
		fmt.Fprintln(os.Stderr, "survey:", err)
		os.Exit(1)
	}
}

func runSurvey(out io.Writer, tune tuning.Tuning, seed string, at world.Position, radius int) error {
	cfg := tune.WorldConfig("survey", seed)
	cfg.Start = &at
	w, err := world.New(cfg)
	if err != nil {
		return err
	}
	if radius <= 0 {
		radius = w.Config().NeighborhoodRadius
	}
	for _, e := range w.Survey(radius) {
		printJSON(out, e)
	}
	return nil
}

func printJSON(out io.Writer, v any) {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
