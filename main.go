package main

import (
	"os"
	"os/signal"

	"github.com/arnvid/scenery-go/cmd"
	"github.com/arnvid/scenery-go/internal/scenery"
	"github.com/charmbracelet/log"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	scenery.AppVersion = version
	scenery.CommitDate = buildDate
	scenery.Commit = commit

	// signal handler channel
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		sig := <-c

		// ctrl+c handler
		log.Debugf("Got %s signal. aborting...\n", sig)

		os.Exit(0)
	}()

	cmd.Execute()
}
