package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/cardtoken/cmd/app/commands"
	"github.com/allisson/cardtoken/internal/app"
	"github.com/allisson/cardtoken/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{
		serverCommand(version),
		createSessionKeyCommand(),
		createAPITokenCommand(),
	}
	return append(cmds, getTokenizeCommands()...)
}

func serverCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Start the sandbox issuer HTTP server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return commands.RunServer(ctx, version)
		},
	}
}

func createSessionKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-session-key",
		Usage: "Generate or verify the SESSION_KEEPER_URI that seals issuer session keys",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kms-key-uri",
				Aliases: []string{"k"},
				Usage:   "Existing KMS key URI to verify (omit to generate a local base64key:// key)",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, func(container *app.Container) error {
				return commands.RunCreateSessionKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("format"),
				)
			})
		},
	}
}

func createAPITokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-api-token",
		Usage: "Generate an issuer API token and the Argon2id hash the issuer stores",
		Flags: []cli.Flag{formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withContainer(ctx, func(container *app.Container) error {
				credentials, err := container.CredentialService()
				if err != nil {
					return err
				}
				return commands.RunCreateAPIToken(
					credentials,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			})
		},
	}
}

// withContainer runs fn against a container built from the environment and shuts the
// container down afterwards.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() {
		if err := container.Shutdown(context.WithoutCancel(ctx)); err != nil {
			container.Logger().Error("failed to shutdown container", slog.Any("error", err))
		}
	}()
	return fn(container)
}
