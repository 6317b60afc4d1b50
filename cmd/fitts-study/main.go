package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/lixenwraith/fitts/core"
	"github.com/lixenwraith/fitts/study"
)

var (
	configFlag = flag.String("config", "", "Config file (default: search ./config and . for fitts.yaml)")
	pidFlag    = flag.String("pid", "", "Participant ID, overrides config")
	cursorFlag = flag.String("cursor", "", "Cursor type: point or bubble, overrides config")
	seedFlag   = flag.Uint64("seed", 0, "Random seed, overrides config (0 keeps config)")
	debugFlag  = flag.Bool("debug", false, "Enable debug logging")
	reportFlag = flag.String("report", "", "Print per-condition means from a trial CSV and exit")
)

func main() {
	// Panic Recovery: restore the terminal before printing the stack
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if *reportFlag != "" {
		if err := report(*reportFlag, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(overrides{
		pid:    *pidFlag,
		cursor: *cursorFlag,
		seed:   *seedFlag,
		debug:  *debugFlag,
	}, *configFlag); err != nil {
		fmt.Fprintf(os.Stderr, "fitts-study: %v\n", err)
		if errors.Is(err, study.ErrConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
