package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/client"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/server"
	"github.com/lox/blackjack/internal/sound"
)

// Bridge runs the command loop between the TUI and a table. It parses
// submitted lines, validates them against what the table allows and
// feeds the resulting snapshots back into the display.
type Bridge struct {
	table      Table
	tui        *TUIModel
	logger     *log.Logger
	sound      *sound.Player
	history    *history.Recorder
	defaultBet int

	lastRecorded string
}

// Option configures a bridge.
type Option func(*Bridge)

// WithSound plays cues for remote event frames and enables the sound
// command. Local play should also subscribe the player to the engine
// bus.
func WithSound(p *sound.Player) Option {
	return func(b *Bridge) { b.sound = p }
}

// WithHistory records settled rounds to the recorder. Remote tables
// have the server record for them, so this is for local play.
func WithHistory(r *history.Recorder) Option {
	return func(b *Bridge) { b.history = r }
}

// WithDefaultBet sets the stake used when bet is typed with no amount.
func WithDefaultBet(amount int) Option {
	return func(b *Bridge) { b.defaultBet = amount }
}

// NewBridge creates a bridge between a table and a TUI model.
func NewBridge(table Table, tui *TUIModel, logger *log.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		table:  table,
		tui:    tui,
		logger: logger.WithPrefix("bridge"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start fetches the opening state and begins the command loop. For
// remote tables it also starts pumping pushed event frames into the
// transcript.
func (b *Bridge) Start(ctx context.Context) {
	if snap, err := b.table.State(ctx); err == nil {
		b.tui.UpdateSnapshot(snap)
	} else {
		b.logger.Warn("could not fetch opening state", "error", err)
	}

	if events := b.table.Events(); events != nil {
		go b.pumpEvents(ctx, events)
	}
	go b.commandLoop(ctx)
}

// pumpEvents relays pushed event frames into the transcript and the
// sound player.
func (b *Bridge) pumpEvents(ctx context.Context, events <-chan client.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if b.sound != nil && ev.Game != nil {
				b.sound.OnEvent(ev.Game)
			}
			if ev.Text == "" {
				continue
			}
			if ev.Type == server.MessageTypeRoundStarted {
				b.tui.AddLogEntryAndScrollToShow(ev.Text)
			} else {
				b.tui.AddLogEntry(ev.Text)
			}
		case <-ctx.Done():
			return
		}
	}
}

// commandLoop handles user actions from the TUI.
func (b *Bridge) commandLoop(ctx context.Context) {
	for {
		action, args, shouldContinue, err := b.tui.WaitForAction()
		if err != nil {
			continue
		}
		if !shouldContinue {
			return
		}

		switch action {
		case "":
			b.handleContinue(ctx)
		case "quit", "q", "exit":
			b.tui.SendQuitSignal()
			return
		case "help", "?":
			b.showHelp()
		case "sound":
			b.toggleSound(args)
		default:
			b.handleGameAction(ctx, action, args)
		}
	}
}

// handleContinue takes the obvious next step on a bare Enter: the next
// round once settled, or the deal once stakes are down.
func (b *Bridge) handleContinue(ctx context.Context) {
	snap := b.tui.Snapshot()
	if snap == nil {
		return
	}
	switch {
	case snap.Settled && findValidAction(game.ActionNewRound, snap.Actions) != nil:
		b.apply(ctx, playRequest{Action: game.ActionNewRound})
	case snap.Phase == game.PhaseBetting && findValidAction(game.ActionDeal, snap.Actions) != nil:
		b.apply(ctx, playRequest{Action: game.ActionDeal})
	}
}

// handleGameAction parses, validates and applies a table action.
func (b *Bridge) handleGameAction(ctx context.Context, action string, args []string) {
	req, ok := processUserAction(action, args, b.defaultBet, b.tui)
	if !ok {
		return
	}
	b.apply(ctx, req)
}

func (b *Bridge) apply(ctx context.Context, req playRequest) {
	b.logger.Debug("applying action", "action", req.Action, "hand", req.Hand, "amount", req.Amount)

	snap, err := b.table.Do(ctx, req.Action, req.Hand, req.Amount)
	if err != nil {
		b.tui.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Error: %s", err)))
		return
	}

	b.tui.UpdateSnapshot(snap)
	b.recordIfSettled(snap)
}

// recordIfSettled appends the round to the history file once, when it
// settles.
func (b *Bridge) recordIfSettled(snap game.Snapshot) {
	if b.history == nil || !snap.Settled || snap.RoundID == b.lastRecorded {
		return
	}
	b.history.Record(history.FromSnapshot(snap))
	b.lastRecorded = snap.RoundID
}

func (b *Bridge) showHelp() {
	b.tui.AddLogEntry("Available commands:")
	b.tui.AddLogEntry("  bet <amt> [hand] - stake a hand (hand 1 if omitted)")
	b.tui.AddLogEntry("  deal             - deal the round")
	b.tui.AddLogEntry("  hit, stand       - play the active hand")
	b.tui.AddLogEntry("  double, split    - double down or split a pair")
	b.tui.AddLogEntry("  insurance, no    - take or decline insurance")
	b.tui.AddLogEntry("  new              - start the next round")
	b.tui.AddLogEntry("  sound [on|off]   - toggle sound cues")
	b.tui.AddLogEntry("  quit             - leave the table")
}

func (b *Bridge) toggleSound(args []string) {
	if b.sound == nil {
		b.tui.AddLogEntry("Sound is not available")
		return
	}
	enable := !b.sound.Enabled()
	if len(args) > 0 {
		enable = args[0] == "on"
	}
	b.sound.SetEnabled(enable)
	if enable {
		b.tui.AddLogEntry("Sound on")
	} else {
		b.tui.AddLogEntry("Sound off")
	}
}

// playRequest is a parsed, validated table action.
type playRequest struct {
	Action game.ActionType
	Hand   int
	Amount int
}

// processUserAction converts user input into a table action, validating
// it against what the snapshot says is legal right now. Errors are
// reported into the transcript and ok is false.
func processUserAction(action string, args []string, defaultBet int, tui *TUIModel) (playRequest, bool) {
	snap := tui.Snapshot()
	if snap == nil {
		tui.AddLogEntry("Error: no table state yet")
		return playRequest{}, false
	}

	var intended game.ActionType
	hand := snap.CurrentHand
	amount := 0

	switch action {
	case "b", "bet":
		intended = game.ActionBet
		hand = 0
		amount = defaultBet
		if len(args) > 0 {
			var err error
			amount, err = strconv.Atoi(args[0])
			if err != nil {
				tui.AddLogEntry(fmt.Sprintf("Error: invalid amount: %s", args[0]))
				return playRequest{}, false
			}
		}
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				tui.AddLogEntry(fmt.Sprintf("Error: invalid hand number: %s", args[1]))
				return playRequest{}, false
			}
			hand = n - 1
		}
	case "deal":
		intended = game.ActionDeal
	case "h", "hit":
		intended = game.ActionHit
	case "s", "stand":
		intended = game.ActionStand
	case "d", "double":
		intended = game.ActionDouble
	case "p", "split":
		intended = game.ActionSplit
	case "i", "insurance":
		intended = game.ActionInsurance
	case "n", "no":
		// "no insurance" arrives as action "no" with args ["insurance"]
		intended = game.ActionNoInsurance
	case "new":
		intended = game.ActionNewRound
	default:
		tui.AddLogEntry(fmt.Sprintf("Unknown action: %s", action))
		return playRequest{}, false
	}

	valid := findValidAction(intended, snap.Actions)
	if valid == nil {
		tui.AddLogEntry(fmt.Sprintf("Invalid action '%s'. Valid actions: %s",
			action, formatValidActions(snap.Actions)))
		return playRequest{}, false
	}

	switch intended {
	case game.ActionBet:
		if amount < valid.MinAmount || amount > valid.MaxAmount {
			tui.AddLogEntry(fmt.Sprintf("Invalid bet $%d. Must be between $%d and $%d",
				amount, valid.MinAmount, valid.MaxAmount))
			return playRequest{}, false
		}
	case game.ActionInsurance:
		// The stake is fixed at half the original bet.
		amount = valid.MinAmount
	}

	return playRequest{Action: intended, Hand: hand, Amount: amount}, true
}

// findValidAction searches for a valid action matching the requested action
func findValidAction(action game.ActionType, validActions []game.ValidAction) *game.ValidAction {
	for _, validAction := range validActions {
		if validAction.Action == action {
			return &validAction
		}
	}
	return nil
}

// formatValidActions creates a human-readable string of valid actions
func formatValidActions(validActions []game.ValidAction) string {
	var actions []string
	for _, va := range validActions {
		switch va.Action {
		case game.ActionBet:
			actions = append(actions, fmt.Sprintf("bet $%d-$%d", va.MinAmount, va.MaxAmount))
		case game.ActionInsurance:
			actions = append(actions, fmt.Sprintf("insurance $%d", va.MinAmount))
		case game.ActionNoInsurance:
			actions = append(actions, "no insurance")
		case game.ActionNewRound:
			actions = append(actions, "new")
		case game.ActionPlayDealer, game.ActionResolve:
			// House moves; never offered to the player.
		default:
			actions = append(actions, va.Action.String())
		}
	}
	if len(actions) == 0 {
		return "none"
	}
	return strings.Join(actions, ", ")
}
