package cmd

import (
	"os"

	"github.com/achilleasa/glint/log"
	"github.com/urfave/cli"
)

var logger = log.New("glint")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// Fatal logs err and terminates the process.
func Fatal(err error) {
	logger.Critical(err)
	os.Exit(1)
}
