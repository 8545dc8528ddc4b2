package play

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-viaplay-cli/actions"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
)

// PlayCommand resolves a guid into playable URLs
var PlayCommand = &cli.Command{
	Name:      "play",
	Usage:     "Resolve the stream of a programme or live channel",
	ArgsUsage: "<guid>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "pin",
			Usage: "Parental control PIN",
		},
		&cli.BoolFlag{
			Name:  "tve",
			Usage: "Request TV Everywhere (catch-up) access",
		},
		&cli.BoolFlag{
			Name:  "subs",
			Usage: "Download subtitles to the settings folder",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print as JSON",
		},
	},
	Action: playAction,
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	guid := cmd.Args().First()
	if guid == "" {
		return fmt.Errorf("please provide a guid (see 'go-viaplay-cli browse')")
	}

	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	opts := viaplay.StreamOptions{
		PinCode: cmd.String("pin"),
		TVE:     cmd.Bool("tve"),
	}

	var reporter *CLIReporter
	var pr viaplay.ProgressReporter
	if cmd.Bool("subs") && !cmd.Bool("json") {
		reporter = NewCLIReporter()
		pr = reporter
	}

	result, err := p.PlayWithProgress(ctx, guid, opts, cmd.Bool("subs"), pr)
	if reporter != nil {
		reporter.Wait()
	}
	if err != nil {
		if errors.Is(err, viaplay.ErrNoStreamURL) {
			return fmt.Errorf("no playable stream for %s", guid)
		}
		return actions.Explain(err)
	}

	if cmd.Bool("json") {
		return actions.PrintJSON(result)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  🎬 Manifest: %s\n", result.Stream.MPDURL)
	fmt.Printf("  🔑 License:  %s\n", result.Stream.LicenseURL)
	fmt.Printf("  🆔 Release:  %s\n", result.Stream.ReleasePID)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for i, sub := range result.Stream.Subtitles {
		prefix := "├─"
		if i == len(result.Stream.Subtitles)-1 {
			prefix = "└─"
		}
		lang, _ := viaplay.SubtitleLanguage(sub)
		fmt.Printf("   %s 💬 %s %s\n", prefix, lang, sub)
	}
	for _, path := range result.SubtitlePaths {
		fmt.Printf("   💾 %s\n", path)
	}

	return nil
}
