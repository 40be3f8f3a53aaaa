package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	in := Settings{
		PlayerName: "dana",
		DefaultBet: 25,
		DeckCount:  2,
		Sound:      false,
	}

	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadFillsMissingFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("player_name: lee\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lee", s.PlayerName)
	assert.Equal(t, Default().DefaultBet, s.DefaultBet)
	assert.Equal(t, Default().DeckCount, s.DeckCount)
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml::"), 0o644))

	s, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadNormalisesInvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_bet: -5\ndeck_count: 0\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().DefaultBet, s.DefaultBet)
	assert.Equal(t, Default().DeckCount, s.DeckCount)
}
