package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/config"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
	"github.com/PiotrWarzachowski/go-viaplay-cli/providers"
)

// GlobalFlags are defined on the root command and visible to every subcommand.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "settings",
		Usage: "Settings folder (cookie file, device id, subtitles)",
	},
	&cli.StringFlag{
		Name:    "country",
		Aliases: []string{"c"},
		Usage:   "Viaplay country site (se, dk, no, fi, pl, lt, nl, ee, gb)",
	},
	&cli.StringFlag{
		Name:  "profile",
		Usage: "Profile id sent with every request",
	},
	&cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "Log requests and responses",
	},
}

func Overrides(cmd *cli.Command) config.Overrides {
	return config.Overrides{
		SettingsDir: cmd.String("settings"),
		Country:     cmd.String("country"),
		ProfileID:   cmd.String("profile"),
		Debug:       cmd.Bool("debug"),
	}
}

func NewProvider(cmd *cli.Command) (*providers.ViaplayProvider, error) {
	return NewProviderWith(Overrides(cmd))
}

func NewProviderWith(o config.Overrides) (*providers.ViaplayProvider, error) {
	return providers.NewViaplayProvider(o)
}

// Explain turns service errors into something a user can act on.
func Explain(err error) error {
	if err == nil {
		return nil
	}
	var se *viaplay.ServiceError
	if errors.As(err, &se) {
		fmt.Println("❌ Not logged in or session expired")
		fmt.Println("\nPlease login first using: go-viaplay-cli login")
		return cli.Exit(fmt.Sprintf("viaplay refused the request (%s)", se.Name), 1)
	}
	return err
}

func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
