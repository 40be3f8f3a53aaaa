// Package settings loads and saves per-user preferences from
// ~/.blackjack/settings.yaml. Missing files and fields fall back to
// defaults so a fresh install needs no setup.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lox/blackjack/internal/fileutil"
)

// Settings are the user's table preferences.
type Settings struct {
	PlayerName string `yaml:"player_name"`
	DefaultBet int    `yaml:"default_bet"`
	DeckCount  int    `yaml:"deck_count"`
	Sound      bool   `yaml:"sound"`
}

// Default returns the out of the box settings.
func Default() Settings {
	return Settings{
		PlayerName: "player",
		DefaultBet: 10,
		DeckCount:  6,
		Sound:      true,
	}
}

// DefaultPath returns the settings file location under the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".blackjack", "settings.yaml"), nil
}

// Load reads settings from path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse settings: %w", err)
	}

	if s.PlayerName == "" {
		s.PlayerName = Default().PlayerName
	}
	if s.DefaultBet <= 0 {
		s.DefaultBet = Default().DefaultBet
	}
	if s.DeckCount <= 0 {
		s.DeckCount = Default().DeckCount
	}
	return s, nil
}

// Save writes settings to path atomically, creating the directory if
// needed.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
