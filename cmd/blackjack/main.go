package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play at a local table"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket table server"`
	Join     JoinCmd          `cmd:"" help:"Join a table on a remote server"`
	Simulate SimulateCmd      `cmd:"" help:"Auto-play rounds and report the results"`
	Stats    StatsCmd         `cmd:"" help:"Summarise a round history file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player blackjack, at a local table or over WebSocket"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
