// Package history appends completed rounds to a JSON lines file, one
// record per line. Appends are best effort: a failed write is logged
// and play continues, so history never blocks the table.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// Hand is the recorded form of one settled player hand.
type Hand struct {
	Cards     []string `json:"cards"`
	Value     int      `json:"value"`
	Bet       int      `json:"bet"`
	Outcome   string   `json:"outcome"`
	Doubled   bool     `json:"doubled,omitempty"`
	FromSplit bool     `json:"fromSplit,omitempty"`
}

// Round is one line of the history file.
type Round struct {
	RoundID     string    `json:"roundId"`
	Round       int       `json:"round"`
	Timestamp   time.Time `json:"timestamp"`
	Hands       []Hand    `json:"hands"`
	Dealer      []string  `json:"dealer"`
	DealerValue int       `json:"dealerValue"`
	Insurance   int       `json:"insurance,omitempty"`
	Net         int       `json:"net"`
	Balance     int       `json:"balance"`
}

// FromSnapshot converts a settled table snapshot into a history round.
func FromSnapshot(s game.Snapshot) Round {
	r := Round{
		RoundID:     s.RoundID,
		Round:       s.Round,
		Timestamp:   time.Now().UTC(),
		DealerValue: s.Dealer.Value,
		Insurance:   s.InsuranceBet,
		Net:         s.Net,
		Balance:     s.Balance,
	}
	for _, h := range s.Hands {
		hand := Hand{
			Value:     h.Value,
			Bet:       h.Bet,
			Outcome:   h.Outcome,
			Doubled:   h.Doubled,
			FromSplit: h.FromSplit,
		}
		for _, c := range h.Cards {
			hand.Cards = append(hand.Cards, c.Display)
		}
		r.Hands = append(r.Hands, hand)
	}
	for _, c := range s.Dealer.Cards {
		r.Dealer = append(r.Dealer, c.Display)
	}
	return r
}

// Recorder appends rounds to a file.
type Recorder struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

// NewRecorder creates a recorder writing to path. The directory is
// created on the first append.
func NewRecorder(path string, logger *log.Logger) *Recorder {
	return &Recorder{path: path, logger: logger.WithPrefix("history")}
}

// Path returns the file the recorder appends to.
func (r *Recorder) Path() string {
	return r.path
}

// Record appends a round, logging rather than failing when the write
// does not succeed.
func (r *Recorder) Record(round Round) {
	if err := r.append(round); err != nil {
		r.logger.Warn("could not record round", "round", round.RoundID, "error", err)
	}
}

func (r *Recorder) append(round Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(round)
}

// Read loads every round from a history file.
func Read(path string) ([]Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rounds []Round
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var round Round
		if err := json.Unmarshal(line, &round); err != nil {
			return nil, fmt.Errorf("parse history line %d: %w", len(rounds)+1, err)
		}
		rounds = append(rounds, round)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return rounds, nil
}
