package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

const version = "0.3.0"

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "gobs"
	app.Version = version
	app.Usage = "size the next trade of a trading bot from its own history"
	app.Writer = out
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file",
			EnvVars: []string{"GOBS_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "log debug messages (sizing trace)",
		},
		&cli.BoolFlag{
			Name:  "info",
			Usage: "log info messages",
		},
	}
	app.Commands = []*cli.Command{
		strategiesCommand,
		sizeCommand,
		recordCommand,
		serveCommand,
	}
	return app
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
