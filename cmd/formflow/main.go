// Command formflow serves the multi-step form web application.
//
//	formflow -config config/local.yaml
//
// or, with the environment variable:
//
//	CONFIG_PATH=config/local.yaml formflow
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/remote"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration YAML file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log := logging.New(cfg.Env)
	log.Info("starting formflow", slog.String("env", cfg.Env))

	var (
		contract *remote.Contract
		err      error
	)
	if cfg.Remote.ContractPath != "" {
		contract, err = formflow.LoadContractFile(context.Background(), cfg.Remote.ContractPath)
		if err != nil {
			log.Error("load remote contract", slog.Any("error", err))
			os.Exit(1)
		}
	}

	secret := cfg.Session.Secret
	if secret == "" {
		// Validate only lets an empty secret through in dev.
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("session.secret not set, using an ephemeral secret")
	}

	app, err := formflow.NewHandler(formflow.Options{
		BaseURL: cfg.Remote.BaseURL,
		Paths: formflow.Paths{
			CreateIdentity: cfg.Remote.CreateIdentityPath,
			FetchForm:      cfg.Remote.FetchFormPath,
			SubmitForm:     cfg.Remote.SubmitFormPath,
		},
		Timeout:         cfg.Remote.Timeout,
		Contract:        contract,
		Secret:          secret,
		CookieName:      cfg.Session.CookieName,
		SecureCookie:    cfg.Session.Secure,
		TransitionDelay: &cfg.Form.TransitionDelay,
		IdleTimeout:     cfg.Form.IdleTimeout,
		Logger:          log,
	})
	if err != nil {
		log.Error("configure application", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      app,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server started", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", slog.Any("error", err))
		return
	}
	log.Info("server stopped")
}
