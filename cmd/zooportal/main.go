package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/zooportal/tui/internal/api"
	"github.com/zooportal/tui/internal/app"
	"github.com/zooportal/tui/internal/config"
	"github.com/zooportal/tui/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "zooportal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := session.Open(cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	sess, err := store.Restore()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	client := api.New(cfg.Server.BaseURL, cfg.Server.Timeout, logger)

	logger.WithFields(logrus.Fields{
		"server":    cfg.Server.BaseURL,
		"logged_in": sess.LoggedIn(),
	}).Info("starting zooportal")

	p := tea.NewProgram(app.New(client, store, sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// newLogger builds the client logger. The TUI owns the terminal, so logging
// goes to a file or is discarded entirely.
func newLogger(cfg config.LogConfig) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}
