//go:build !ci

package sound

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/lox/blackjack/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// Player synthesizes tones for game events. It implements
// game.EventSubscriber so it can hang off the same bus as the UI.
type Player struct {
	mu      sync.Mutex
	logger  *log.Logger
	enabled bool
	ready   bool
	failed  bool
}

// NewPlayer creates a player. The speaker is not opened until the
// first cue plays, so a muted session never touches the audio device.
func NewPlayer(logger *log.Logger, enabled bool) *Player {
	return &Player{
		logger:  logger.WithPrefix("sound"),
		enabled: enabled,
	}
}

// OnEvent plays the cue for the event, if it has one.
func (p *Player) OnEvent(event game.GameEvent) {
	if cue := cueFor(event); cue != "" {
		p.Play(cue)
	}
}

// Play plays a single cue. Playback is asynchronous; if the audio
// device is unavailable the player goes quiet instead of erroring.
func (p *Player) Play(cue Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.failed {
		return
	}
	if !p.ready {
		// Init speaker with smaller buffer for lower latency
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
			p.logger.Warn("audio unavailable, muting", "error", err)
			p.failed = true
			return
		}
		p.ready = true
	}
	notes, ok := cueNotes[cue]
	if !ok {
		return
	}
	seq := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			p.logger.Warn("tone generation failed", "cue", cue, "error", err)
			return
		}
		seq = append(seq, beep.Take(sampleRate.N(n.dur), tone))
	}
	speaker.Play(beep.Seq(seq...))
}

// SetEnabled toggles playback.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Enabled reports whether playback is on.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled && !p.failed
}

// Close mutes the player. The speaker stays open until process exit.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
}
