package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/store"
)

// Session binds one connection to one game engine. Game calls run only
// on the connection's read pump goroutine; the idle timer and Close
// never touch the engine, they work off the last snapshot instead.
type Session struct {
	ID       string
	PlayerID string
	Player   string

	conn    *Connection
	game    *game.Game
	logger  *log.Logger
	store   store.Store
	history *history.Recorder
	stats   *Stats

	idleTimer   *quartz.Timer
	idleTimeout time.Duration

	mu           sync.Mutex
	last         game.Snapshot
	lastRecorded int
	closeOnce    sync.Once
	createdAt    time.Time
}

// OnEvent implements game.EventSubscriber. It relays engine events to
// the client as wire frames. Called synchronously from inside engine
// operations, so it must not call back into the game.
func (s *Session) OnEvent(event game.GameEvent) {
	msg, ok := EventMessage(event)
	if !ok {
		return
	}
	if err := s.conn.SendMessage(msg); err != nil {
		s.logger.Debug("Failed to relay event", "event", event.EventType(), "error", err)
	}
}

// HandleAction applies a client action to the engine, runs any pending
// house turns, and replies with the resulting state.
func (s *Session) HandleAction(data ActionData, requestID string) {
	s.Touch()
	s.stats.ActionsApplied.Add(1)

	if err := s.game.Apply(game.ActionType(data.Action), data.Hand, data.Amount); err != nil {
		s.conn.sendError(codeForError(err), err.Error(), requestID)
		return
	}

	if err := s.game.Advance(); err != nil {
		s.logger.Error("House turn failed", "error", err)
	}

	s.afterChange()
	s.SendState(requestID)
}

// SendState pushes the current snapshot to the client.
func (s *Session) SendState(requestID string) {
	msg, err := NewMessage(MessageTypeState, StateData{State: s.game.State()})
	if err != nil {
		s.logger.Error("Failed to create state message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = s.conn.SendMessage(msg)
}

// Touch resets the idle timer.
func (s *Session) Touch() {
	if s.idleTimer != nil {
		s.idleTimer.Reset(s.idleTimeout)
	}
}

// Close stops the idle timer and persists the last snapshot. Safe to
// call from any goroutine and more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.idleTimer != nil {
			s.idleTimer.Stop()
		}

		s.mu.Lock()
		snap := s.last
		s.mu.Unlock()
		s.persist(snap)

		s.logger.Info("Session closed",
			"round", snap.Round,
			"balance", snap.Balance,
			"duration", time.Since(s.createdAt).Round(time.Second),
		)
	})
}

// afterChange caches the snapshot, persists it, and appends a history
// record the first time each round settles.
func (s *Session) afterChange() {
	snap := s.game.State()

	s.mu.Lock()
	s.last = snap
	record := snap.Settled && snap.Round > s.lastRecorded
	if record {
		s.lastRecorded = snap.Round
	}
	s.mu.Unlock()

	if record {
		s.stats.RoundsPlayed.Add(1)
		if s.history != nil {
			s.history.Record(history.FromSnapshot(snap))
		}
	}

	s.persist(snap)
}

// persist saves the snapshot best-effort. Gameplay never blocks on the
// store; failures are logged and play continues.
func (s *Session) persist(snap game.Snapshot) {
	if s.store == nil || snap.RoundID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.store.Save(ctx, store.NewRecord(s.ID, s.Player, snap)); err != nil {
		s.logger.Warn("Failed to persist session", "error", err)
	}
}

// expire fires when the idle timer lapses. Closing the connection
// unwinds the session through the server's unregister path.
func (s *Session) expire() {
	s.logger.Info("Session idle, closing", "timeout", s.idleTimeout)
	_ = s.conn.Close()
}

// codeForError maps engine errors onto wire error codes.
func codeForError(err error) string {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, game.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, game.ErrIllegalAction):
		return "illegal_action"
	case errors.Is(err, game.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, game.ErrEmptyResource):
		return "empty_shoe"
	default:
		return "internal"
	}
}
