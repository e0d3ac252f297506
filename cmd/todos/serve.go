package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v2"
)

func runServe(c *cli.Context) error {
	cfg, err := configFromCLI(c)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		errs <- app.serve(nil)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case err := <-errs:
		app.close(context.Background())
		return err
	case sig := <-sigs:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return app.shutdown(ctx)
}

// configFromCLI loads the config file and env overrides, then applies flags
func configFromCLI(c *cli.Context) (AppConfig, error) {
	cfg, err := LoadConfig(c.String(flagConfig))
	if err != nil {
		return AppConfig{}, err
	}

	if v := c.String(flagAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := c.String(flagDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := c.String(flagDSN); v != "" {
		cfg.Database.DSN = v
	}
	if v := c.String(flagLogLevel); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
