package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/settings"
	"github.com/lox/blackjack/internal/sound"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the table against a local engine.
type PlayCmd struct {
	Balance   int    `kong:"default='1000',help='Starting bankroll'"`
	Bet       int    `kong:"help='Default stake for the bet command (defaults to your settings)'"`
	Decks     int    `kong:"help='Decks in the shoe (defaults to your settings)'"`
	MinBet    int    `kong:"help='Table minimum (defaults to the house rules)'"`
	MaxBet    int    `kong:"help='Table maximum (defaults to the house rules)'"`
	Seed      *int64 `kong:"help='Deterministic shuffle seed (omit for a secure shuffle)'"`
	NoSound   bool   `kong:"help='Disable sound cues'"`
	NoColor   bool   `kong:"help='Disable colored output'"`
	History   string `kong:"help='Round history file (defaults to ~/.blackjack/history.jsonl)'"`
	NoHistory bool   `kong:"help='Disable round history recording'"`
	LogFile   string `kong:"help='Debug log file (the TUI owns the terminal)'"`
	LogLevel  string `kong:"default='info',help='Log level for the debug log'"`
}

func (c *PlayCmd) Run() error {
	logger, closeLog, err := shared.SetupFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	prefs := loadSettings(logger)
	decks := c.Decks
	if decks == 0 {
		decks = prefs.DeckCount
	}
	bet := c.Bet
	if bet == 0 {
		bet = prefs.DefaultBet
	}

	rng := randutil.NewSecure()
	if c.Seed != nil {
		logger.Info("using deterministic seed", "seed", *c.Seed)
		rng = randutil.New(*c.Seed)
	}

	model := tui.NewTUIModel(logger)
	player := sound.NewPlayer(logger, prefs.Sound && !c.NoSound)
	defer player.Close()

	// Subscribers attach before the engine exists so the first round's
	// banner reaches the transcript.
	bus := game.NewEventBus()
	bus.Subscribe(tui.NewTranscript(model))
	bus.Subscribe(player)

	engine, err := game.NewGame(game.Config{
		InitialBalance: c.Balance,
		DeckCount:      decks,
		MinBet:         c.MinBet,
		MaxBet:         c.MaxBet,
	}, rng, game.WithLogger(logger), game.WithEventBus(bus))
	if err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithDefaultBet(bet),
		tui.WithSound(player),
	}
	if !c.NoHistory {
		path := c.History
		if path == "" {
			if path, err = defaultHistoryPath(); err != nil {
				return err
			}
		}
		opts = append(opts, tui.WithHistory(history.NewRecorder(path, logger)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := tui.NewBridge(tui.NewLocalTable(engine), model, logger, opts...)
	bridge.Start(ctx)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// loadSettings reads user preferences, falling back to the defaults
// when the file is missing or unreadable.
func loadSettings(logger *log.Logger) settings.Settings {
	path, err := settings.DefaultPath()
	if err != nil {
		logger.Warn("could not resolve settings path", "error", err)
		return settings.Default()
	}
	prefs, err := settings.Load(path)
	if err != nil {
		logger.Warn("could not load settings", "path", path, "error", err)
	}
	return prefs
}

func defaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".blackjack", "history.jsonl"), nil
}
