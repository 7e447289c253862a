package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/cardtoken/cmd/app/commands"
	"github.com/allisson/cardtoken/internal/app"
	tokenizationDomain "github.com/allisson/cardtoken/internal/tokenization/domain"
)

func getTokenizeCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "tokenize",
			Usage: "Exchange one hosted-fields form for a payment token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "cardholder-name",
					Aliases: []string{"n"},
					Usage:   "Cardholder name",
				},
				&cli.StringFlag{
					Name:     "card-number",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Card number ciphertext produced by the hosted fields",
				},
				&cli.StringFlag{
					Name:     "cvv",
					Required: true,
					Usage:    "CVV ciphertext produced by the hosted fields",
				},
				&cli.StringFlag{
					Name:     "expiry",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Expiry date in MM/YY format",
				},
				formatFlag(),
				skipPreflightFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					orchestrator, err := container.Orchestrator()
					if err != nil {
						return fmt.Errorf("failed to initialize tokenization client: %w", err)
					}

					return commands.RunTokenize(
						ctx,
						orchestrator,
						container.Logger(),
						commands.DefaultIO().Writer,
						tokenizationDomain.UpstreamFormData{
							CardholderName: cmd.String("cardholder-name"),
							EncCardNumber:  cmd.String("card-number"),
							EncCVV:         cmd.String("cvv"),
							ExpiryDate:     cmd.String("expiry"),
						},
						cmd.String("format"),
						time.Now(),
						cmd.Bool("skip-preflight"),
					)
				})
			},
		},
		{
			Name:  "tokenize-batch",
			Usage: "Tokenize hosted-fields forms read as JSON lines from stdin",
			Flags: []cli.Flag{formatFlag(), skipPreflightFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					useCase, err := container.TokenizationUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize tokenization client: %w", err)
					}

					return commands.RunTokenizeBatch(
						ctx,
						useCase,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("format"),
						time.Now(),
						cmd.Bool("skip-preflight"),
					)
				})
			},
		},
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func skipPreflightFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "skip-preflight",
		Usage: "Submit without validating the form locally first",
	}
}
