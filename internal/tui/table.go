package tui

import (
	"context"

	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/game"
)

// Table is the playing surface the bridge drives. It is either an
// in-process engine or a remote session over the wire; the command loop
// cannot tell the difference.
type Table interface {
	// Do applies a player action. The returned snapshot has any house
	// turns (dealer draw, settlement) already played, so it is always
	// at the next decision point.
	Do(ctx context.Context, action game.ActionType, hand, amount int) (game.Snapshot, error)

	// State returns the current snapshot without acting.
	State(ctx context.Context) (game.Snapshot, error)

	// Events is the pushed event stream for remote tables. Local
	// tables return nil; their events reach the transcript through
	// the engine bus instead.
	Events() <-chan client.Event
}

// LocalTable plays against an engine in the same process.
type LocalTable struct {
	game *game.Game
}

// NewLocalTable wraps an engine. Subscribe a Transcript (and the sound
// player) to the engine bus before playing; the table itself only moves
// the game forward.
func NewLocalTable(g *game.Game) *LocalTable {
	return &LocalTable{game: g}
}

func (t *LocalTable) Do(ctx context.Context, action game.ActionType, hand, amount int) (game.Snapshot, error) {
	if err := t.game.Apply(action, hand, amount); err != nil {
		return game.Snapshot{}, err
	}
	if err := t.game.Advance(); err != nil {
		return game.Snapshot{}, err
	}
	return t.game.State(), nil
}

func (t *LocalTable) State(ctx context.Context) (game.Snapshot, error) {
	return t.game.State(), nil
}

func (t *LocalTable) Events() <-chan client.Event {
	return nil
}

// RemoteTable plays against a server session through the client. The
// server advances house turns itself, so Do maps straight onto the wire
// protocol.
type RemoteTable struct {
	client *client.Client
}

// NewRemoteTable wraps a connected client.
func NewRemoteTable(c *client.Client) *RemoteTable {
	return &RemoteTable{client: c}
}

func (t *RemoteTable) Do(ctx context.Context, action game.ActionType, hand, amount int) (game.Snapshot, error) {
	return t.client.Do(ctx, action.String(), hand, amount)
}

func (t *RemoteTable) State(ctx context.Context) (game.Snapshot, error) {
	return t.client.State(ctx)
}

func (t *RemoteTable) Events() <-chan client.Event {
	return t.client.Events()
}

// Transcript renders engine events into the table log. It subscribes
// to the engine bus for local play; remote play gets the same lines
// pre-rendered in the server's event frames.
type Transcript struct {
	tui       *TUIModel
	formatter *game.EventFormatter
}

// NewTranscript creates a transcript writer for the model.
func NewTranscript(tui *TUIModel) *Transcript {
	return &Transcript{tui: tui, formatter: game.NewEventFormatter()}
}

// OnEvent implements game.EventSubscriber.
func (t *Transcript) OnEvent(event game.GameEvent) {
	line := t.formatter.FormatEvent(event)
	if line == "" {
		return
	}
	if event.EventType() == game.EventTypeRoundStarted {
		t.tui.AddLogEntryAndScrollToShow(line)
		return
	}
	t.tui.AddLogEntry(line)
}
