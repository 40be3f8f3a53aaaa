package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/sound"
	"github.com/lox/blackjack/internal/tui"
)

// JoinCmd plays at a table hosted by a remote server.
type JoinCmd struct {
	Server   string `kong:"short='s',default='ws://localhost:8080/ws',help='WebSocket server URL'"`
	Name     string `kong:"short='n',help='Player name (defaults to your settings)'"`
	Token    string `kong:"help='Auth token, if the server requires one'"`
	Session  string `kong:"help='Session ID to resume'"`
	Bet      int    `kong:"help='Default stake for the bet command (defaults to your settings)'"`
	NoSound  bool   `kong:"help='Disable sound cues'"`
	NoColor  bool   `kong:"help='Disable colored output'"`
	LogFile  string `kong:"help='Debug log file (the TUI owns the terminal)'"`
	LogLevel string `kong:"default='info',help='Log level for the debug log'"`
}

func (c *JoinCmd) Run() error {
	logger, closeLog, err := shared.SetupFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	prefs := loadSettings(logger)
	name := c.Name
	if name == "" {
		name = prefs.PlayerName
	}
	bet := c.Bet
	if bet == 0 {
		bet = prefs.DefaultBet
	}

	wsClient := client.NewClient(c.Server, logger)
	if err := wsClient.Connect(); err != nil {
		return err
	}
	defer func() { _ = wsClient.Disconnect() }()

	helloCtx, cancelHello := context.WithTimeout(context.Background(), 10*time.Second)
	welcome, err := wsClient.Hello(helloCtx, name, c.Token, c.Session)
	cancelHello()
	if err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	logger.Info("joined table",
		"session", welcome.SessionID,
		"resumed", welcome.Resumed,
		"decks", welcome.Rules.Decks)

	model := tui.NewTUIModel(logger)
	player := sound.NewPlayer(logger, prefs.Sound && !c.NoSound)
	defer player.Close()

	model.AddLogEntry(fmt.Sprintf("Connected to %s as %s", c.Server, welcome.PlayerName))
	if welcome.Resumed {
		model.AddLogEntry(fmt.Sprintf("Resumed session %s", welcome.SessionID))
	} else {
		model.AddLogEntry(fmt.Sprintf("Session %s (resume later with --session)", welcome.SessionID))
	}
	model.AddLogEntry(fmt.Sprintf("Table rules: %d decks, stakes $%d-$%d",
		welcome.Rules.Decks, welcome.Rules.MinBet, welcome.Rules.MaxBet))
	model.AddLogEntry("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := tui.NewBridge(tui.NewRemoteTable(wsClient), model, logger,
		tui.WithDefaultBet(bet),
		tui.WithSound(player),
	)
	bridge.Start(ctx)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
