// Command explorervis shows a live exploration run in a window.
package main

import (
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/explorer-nav/internal/config"
	"github.com/elektrokombinacija/explorer-nav/internal/vis"
)

func main() {
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Load(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	logger, closeLog, err := cfg.Log.OpenLogger(os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	w, err := cfg.World()
	if err != nil {
		log.Fatal(err)
	}
	application, err := vis.NewApp(cfg.Simulation(w, logger))
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Explorer - "+w.Name),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		closeLog()
		os.Exit(0)
	}()
	app.Main()
}
