package profiles

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-viaplay-cli/actions"
)

var ProfilesCommand = &cli.Command{
	Name:  "profiles",
	Usage: "List the profiles of your account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print as JSON",
		},
	},
	Action: profilesAction,
}

func profilesAction(ctx context.Context, cmd *cli.Command) error {
	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	profiles, err := p.Client.Profiles(ctx)
	if err != nil {
		return actions.Explain(err)
	}

	if cmd.Bool("json") {
		return actions.PrintJSON(profiles)
	}

	if len(profiles) == 0 {
		fmt.Println("📭 No profiles found")
		return nil
	}

	for i, profile := range profiles {
		prefix := "├─"
		if i == len(profiles)-1 {
			prefix = "└─"
		}
		active := ""
		if profile.ID == p.Config.ProfileID {
			active = " *"
		}
		fmt.Printf("%s %s%s (%s)", prefix, profile.Name, active, profile.ID)
		if profile.Owner != "" {
			fmt.Printf(" [%s]", profile.Owner)
		}
		if profile.Lang != "" {
			fmt.Printf(" %s", profile.Lang)
		}
		fmt.Println()
	}

	fmt.Println("\nUse --profile <id> or VIAPLAY_PROFILE_ID to pick one")
	return nil
}
