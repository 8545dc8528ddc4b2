package export

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-viaplay-cli/actions"
)

// ExportCommand feeds an IPTV manager listening on a local port
var ExportCommand = &cli.Command{
	Name:  "export",
	Usage: "Send channels or the programme guide to an IPTV manager",
	Commands: []*cli.Command{
		{
			Name:   "channels",
			Usage:  "Send the channel list (JSON-STREAMS)",
			Flags:  []cli.Flag{portFlag()},
			Action: exportAction("channels"),
		},
		{
			Name:   "epg",
			Usage:  "Send the programme guide (JSON-EPG)",
			Flags:  []cli.Flag{portFlag()},
			Action: exportAction("epg"),
		},
	},
}

func portFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Usage:   "Port the IPTV manager listens on (default from config or VIAPLAY_EXPORT_PORT)",
	}
}

func exportAction(what string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		o := actions.Overrides(cmd)
		o.ExportPort = int(cmd.Int("port"))

		p, err := actions.NewProviderWith(o)
		if err != nil {
			return err
		}

		if err := p.Export(ctx, what, o.ExportPort); err != nil {
			return actions.Explain(err)
		}

		fmt.Printf("✓ Sent %s to IPTV manager on port %d\n", what, p.Config.Export.Port)
		return nil
	}
}
