package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/remote"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const (
	msgLoginRequired  = "Please login to access the form"
	msgSessionExpired = "Your session has expired. Please login again."
)

type fillFlags struct {
	rollNumber string
	name       string
	baseURL    string
	configPath string
}

func newFillCmd() *cobra.Command {
	var flags fillFlags

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Log in, fetch the assigned form and fill it section by section",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			baseURL := cfg.Remote.BaseURL
			if flags.baseURL != "" {
				baseURL = flags.baseURL
			}

			logger := logging.NewWithWriter(cfg.Env, cmd.ErrOrStderr())
			client, err := remote.New(baseURL,
				remote.WithTimeout(cfg.Remote.Timeout),
				remote.WithPaths(remote.Paths{
					CreateIdentity: cfg.Remote.CreateIdentityPath,
					FetchForm:      cfg.Remote.FetchFormPath,
					SubmitForm:     cfg.Remote.SubmitFormPath,
				}),
				remote.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			driver := tui.NewSurveyDriver(cmd.OutOrStdout())
			err = fill(ctx, flags.rollNumber, flags.name, client, driver, logger)
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&flags.rollNumber, "roll-number", "", "roll number to log in with")
	cmd.Flags().StringVar(&flags.name, "name", "", "name to log in with")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "form service base URL (overrides the configuration)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to the configuration file")
	return cmd
}

// fill runs the terminal flow: validate the login input, create the identity,
// fetch the form and walk its sections until it is submitted.
func fill(ctx context.Context, rollNumber, name string, client *remote.Client, driver tui.PromptDriver, logger *slog.Logger) error {
	input := validation.NewLoginInput(rollNumber, name)
	if msg := validation.Login(input); msg != "" {
		return errors.New(msg)
	}
	identity := model.Identity{RollNumber: input.RollNumber, Name: input.Name}

	if err := client.CreateIdentity(ctx, identity); err != nil {
		return errors.New(remote.Message(remote.OpCreateIdentity, err))
	}
	store := auth.NewMemoryStore()
	store.Set(identity)

	schema, err := client.FetchForm(ctx, identity.RollNumber)
	if err != nil {
		if remote.IsUnauthorized(err) {
			store.Clear()
			return errors.New(msgSessionExpired)
		}
		return errors.New(remote.Message(remote.OpFetchForm, err))
	}

	state, err := session.New(schema, session.WithTransitionDelay(0))
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "form loaded", slog.String("form", schema.Title), slog.Int("sections", len(schema.Sections)))

	renderer, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithErrorDescriber(func(err error) (string, bool) {
			if remote.IsUnauthorized(err) {
				store.Clear()
				return msgSessionExpired, true
			}
			return remote.Message(remote.OpSubmitForm, err), false
		}),
	)
	if err != nil {
		return err
	}

	err = renderer.Run(ctx, state, func(ctx context.Context, values model.Values) error {
		current, ok := store.Get()
		if !ok {
			return errors.New(msgLoginRequired)
		}
		return client.SubmitForm(ctx, current.RollNumber, values)
	})
	if remote.IsUnauthorized(err) {
		return errors.New(msgSessionExpired)
	}
	return err
}
