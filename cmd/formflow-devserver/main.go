// Command formflow-devserver serves a form schema file with the endpoints of
// the remote form service, for local runs of formflow and formflow-cli.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/devserver"
	"github.com/goliatone/go-formflow/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		schemaPath string
		addr       string
		env        string
	)

	cmd := &cobra.Command{
		Use:          "formflow-devserver",
		Short:        "Serve a form schema with the form service endpoints",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(env)

			schema, err := devserver.LoadSchema(schemaPath)
			if err != nil {
				return err
			}
			dev, err := devserver.New(schema, devserver.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, &http.Server{
				Addr:              addr,
				Handler:           dev.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON or YAML form schema")
	cmd.Flags().StringVar(&addr, "addr", "localhost:5000", "listen address")
	cmd.Flags().StringVar(&env, "env", "dev", "log format: dev, staging or prod")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func serve(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("devserver listening", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("devserver stopped")
	return nil
}
