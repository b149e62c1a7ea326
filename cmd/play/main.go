// Command play is a terminal client for a local private world.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gdamore/tcell"

	"geopits.dev/internal/logging"
	persistlog "geopits.dev/internal/persistence/log"
	"geopits.dev/internal/sim/tuning"
	"geopits.dev/internal/sim/world"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.String("seed", "", "world seed override")
		journal    = flag.String("journal", "", "write the event journal under this directory (optional)")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load tuning: %v", err)
		}
		tune = tuning.Defaults()
	}

	// The terminal owns stdout; keep the logger quiet.
	opts := []world.Option{world.WithLogger(logging.Discard())}
	if *journal != "" {
		j := persistlog.NewEventLogger(*journal)
		defer j.Close()
		opts = append(opts, world.WithEventLogger(j))
	}
	w, err := world.New(tune.WorldConfig("local", *seed), opts...)
	if err != nil {
		log.Fatalf("new world: %v", err)
	}

	if err := run(newView(w)); err != nil {
		log.Fatalln(err)
	}
}

func run(v *gameView) error {
	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()

	for {
		v.Draw(scr)
		scr.Show()
		switch ev := scr.PollEvent().(type) {
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			scr.Sync()
		}
	}
}
