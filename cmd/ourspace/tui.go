package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/app"
	"github.com/nhle/ourspace/internal/credential"
)

func runTUI() error {
	s, err := openStore()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	var sessions *credential.Sessions
	if sessions, err = openSessions(); err != nil {
		logger.Warn("keyring unavailable, sessions will not be remembered", zap.Error(err))
		sessions = nil
	}

	m := app.New(app.Options{
		Store:      s,
		Config:     cfg,
		ConfigPath: configPath,
		Sessions:   sessions,
		Logger:     logger,
		Now:        now,
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
