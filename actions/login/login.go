package login

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/PiotrWarzachowski/go-viaplay-cli/actions"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
)

// activationWindow applies when the service does not say when the code expires.
const activationWindow = 15 * time.Minute

// LoginCommand is the CLI command for device activation
var LoginCommand = &cli.Command{
	Name:  "login",
	Usage: "Activate this device on your Viaplay account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Force new activation even if session exists",
		},
	},
	Action: loginAction,
}

var LogoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Logout from your Viaplay account",
	Action: logoutAction,
}

var StatusCommand = &cli.Command{
	Name:   "status",
	Usage:  "Check current login status",
	Action: statusAction,
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("force") && p.LoggedIn(ctx) {
		user, _ := p.Client.Session().User()
		fmt.Printf("✓ Already logged in (user %s)\n", user)
		fmt.Printf("  Session storage: %s\n", p.Store.GetBasePath())
		return nil
	}

	data, err := p.Client.GetActivationData(ctx)
	if err != nil {
		return err
	}

	fmt.Println("To activate this device:")
	fmt.Printf("  1. Go to %s\n", data.VerificationURL)
	fmt.Printf("  2. Enter the code: %s\n\n", data.UserCode)

	deadline := data.Expires
	if deadline.IsZero() {
		deadline = time.Now().Add(activationWindow)
	}

	if err := waitForActivation(ctx, p.Client, data, deadline); err != nil {
		return err
	}

	user, _ := p.Client.Session().User()
	fmt.Printf("\n✓ Successfully logged in\n")
	if user != "" {
		fmt.Printf("  User ID: %s\n", user)
	}
	fmt.Printf("  Session saved to: %s\n", p.Store.GetBasePath())
	return nil
}

// waitForActivation polls AuthorizeDevice at the interval the service asked
// for until the code is entered or expires.
func waitForActivation(ctx context.Context, client *viaplay.Client, data *viaplay.ActivationData, deadline time.Time) error {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	ticker := time.NewTicker(data.Interval)
	defer ticker.Stop()

	for {
		err := client.AuthorizeDevice(ctx, data)
		if err == nil {
			return nil
		}
		if !viaplay.IsServiceError(err) {
			return fmt.Errorf("activation failed: %w", err)
		}

		if time.Now().After(deadline) {
			return viaplay.ErrActivationExpired
		}
		if interactive {
			fmt.Printf("\r⏳ Waiting for activation... %s left ", time.Until(deadline).Round(time.Second))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	if !p.Store.HasSession() {
		fmt.Println("Not currently logged in")
		return nil
	}

	if err := p.Client.LogOut(ctx); err != nil {
		fmt.Printf("⚠ Warning: API logout failed: %v\n", err)
		if err := p.Store.DeleteSession(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		p.Client.Session().Clear()
		fmt.Println("✓ Local session deleted")
		return nil
	}

	fmt.Println("✓ Successfully logged out")
	return nil
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	if !p.Store.HasSession() {
		fmt.Println("Status: Not logged in")
		fmt.Println("\nUse 'go-viaplay-cli login' to authenticate")
		return nil
	}

	err = p.Client.ValidateSession(ctx)
	switch {
	case err == nil:
		fmt.Println("Status: Logged in")
		if user, _ := p.Client.Session().User(); user != "" {
			fmt.Printf("  User ID: %s\n", user)
		}
	case viaplay.IsServiceError(err):
		fmt.Println("Status: Session expired")
		fmt.Println("\nUse 'go-viaplay-cli login --force' to activate again")
	case errors.Is(err, context.Canceled):
		return err
	default:
		fmt.Printf("Status: Unknown (%v)\n", err)
	}

	fmt.Printf("  Session: %s\n", p.Client.State())
	fmt.Printf("  Country: %s\n", p.Config.Country)
	if p.Config.ProfileID != "" {
		fmt.Printf("  Profile: %s\n", p.Config.ProfileID)
	}
	fmt.Printf("  Storage: %s\n", p.Store.GetBasePath())

	return nil
}
