package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd runs the WebSocket table server.
type ServeCmd struct {
	Config   string `kong:"short='c',default='blackjack.hcl',help='Path to HCL configuration file'"`
	Addr     string `kong:"short='a',help='Bind address (overrides config)'"`
	Port     int    `kong:"short='p',help='Bind port (overrides config)'"`
	LogLevel string `kong:"short='l',help='Log level (overrides config)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)
	if cfg.Server.LogFile != "" {
		fileLogger, closeLog, err := shared.SetupFileLogger(cfg.Server.LogFile, cfg.Server.LogLevel)
		if err != nil {
			return err
		}
		defer closeLog()
		logger = fileLogger
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting blackjack server",
		"addr", cfg.GetServerAddress(),
		"decks", cfg.Table.Decks,
		"minBet", cfg.Table.MinBet,
		"maxBet", cfg.Table.MaxBet,
		"store", cfg.Store.Backend,
		"auth", cfg.Auth.Mode)

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
