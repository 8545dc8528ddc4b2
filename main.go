package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-viaplay-cli/actions"
	"github.com/PiotrWarzachowski/go-viaplay-cli/actions/browse"
	"github.com/PiotrWarzachowski/go-viaplay-cli/actions/export"
	"github.com/PiotrWarzachowski/go-viaplay-cli/actions/login"
	"github.com/PiotrWarzachowski/go-viaplay-cli/actions/play"
	"github.com/PiotrWarzachowski/go-viaplay-cli/actions/profiles"
)

func main() {
	cmd := &cli.Command{
		Name:    "go-viaplay-cli",
		Usage:   "Viaplay CLI tool",
		Version: "0.0.1-prerelease",
		Flags:   actions.GlobalFlags,
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("Viaplay CLI - Use 'go-viaplay-cli help' for available commands")
			return nil
		},
		Commands: []*cli.Command{
			login.LoginCommand,
			login.LogoutCommand,
			login.StatusCommand,
			profiles.ProfilesCommand,
			browse.BrowseCommand,
			play.PlayCommand,
			export.ExportCommand,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
