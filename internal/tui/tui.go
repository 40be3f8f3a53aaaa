// Package tui renders the blackjack table in the terminal: a scrolling
// transcript of the round on the left, the table state on the right and
// a command bar along the bottom. The model only displays state; the
// Bridge drives the table and feeds snapshots and transcript lines in.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// TUIModel is the Bubble Tea model for the table.
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	actionResult chan ActionResult
	quitSignal   chan bool
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Display state, updated by the bridge after every action
	snapshot *game.Snapshot

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// ActionResult is one line of user input, split into a command word and
// its arguments.
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// QuitMsg signals the program to quit.
type QuitMsg struct{}

// NewTUIModel creates a table model.
func NewTUIModel(logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(logger, false)
}

// NewTUIModelWithOptions creates a table model, optionally in test mode.
// Test mode captures log entries instead of driving the terminal.
func NewTUIModelWithOptions(logger *log.Logger, testMode bool) *TUIModel {
	// Viewport gets a placeholder size until the first WindowSizeMsg.
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 25, deal, hit, stand... ('help' for commands)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		gameLog:      []string{},
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan bool, 1),
		focusedPane:  1, // Start with input focused
		testMode:     testMode,
		capturedLog:  []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit())
}

// listenForQuit returns a command that listens for quit signals
func (m *TUIModel) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.logger.Debug("window resized", "width", msg.Width, "height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.actionResult <- ActionResult{Action: "quit", Continue: false}
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				action := strings.TrimSpace(m.actionInput.Value())
				m.processAction(action)
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd

	// Only update input if it's focused
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always update viewport (for scrolling)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	calculatedActionWidth := m.width - 2       // Full width minus border
	calculatedActionHeight := actionHeight - 2 // Content height minus border

	if calculatedActionWidth < 1 {
		calculatedActionWidth = 1
	}
	if calculatedActionHeight < 1 {
		calculatedActionHeight = 1
	}

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedActionWidth).
		Height(calculatedActionHeight)

	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	// Table pane (right side of log pane, same height as log pane)
	tableContent := m.renderTablePane()
	tableWidth := lipgloss.Width(tableContent)

	calculatedTableWidth := 34
	if tableWidth > calculatedTableWidth {
		calculatedTableWidth = tableWidth
	}

	calculatedTableHeight := m.height - actionHeight - 4 // Account for border x 2 and action pane

	if calculatedTableWidth < 1 {
		calculatedTableWidth = 1
	}
	if calculatedTableHeight < 1 {
		calculatedTableHeight = 1
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedTableWidth).
		Height(calculatedTableHeight)

	tablePane := tableStyle.Render(tableContent)

	// Log pane (top left, fills the space the table pane leaves)
	logContent := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(logContent)

	calculatedLogWidth := m.width - calculatedTableWidth - 4 // Account for border x 2 and table pane
	calculatedLogHeight := m.height - actionHeight - 4       // Account for border x 2 and action pane

	if calculatedLogWidth < 1 {
		calculatedLogWidth = 1
	}
	if calculatedLogHeight < 1 {
		calculatedLogHeight = 1
	}

	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedLogHeight

	// On first proper sizing, reset to top to avoid starting scrolled down
	if !m.initialized && calculatedLogWidth > 1 && calculatedLogHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedLogHeight)

	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, tablePane)

	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderTablePane renders the dealer and hand rows with the balance on
// top, from the latest snapshot.
func (m *TUIModel) renderTablePane() string {
	var content strings.Builder

	s := m.snapshot
	if s == nil {
		content.WriteString(InfoStyle.Render("Waiting for table state..."))
		return content.String()
	}

	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" Round %d ", s.Round)))
	content.WriteString("\n\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", s.Balance)))
	if wagered := totalWagered(s); wagered > 0 {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("  Bet: $%d", wagered)))
	}
	content.WriteString("\n\n")

	content.WriteString(m.renderDealerRow(s))
	content.WriteString("\n")

	if len(s.Hands) > 0 {
		for i := range s.Hands {
			content.WriteString(m.renderHandRow(s, i))
			content.WriteString("\n")
		}
	} else {
		// Between the bet and the deal there are stakes but no cards.
		for i, bet := range s.Bets {
			content.WriteString(fmt.Sprintf("  Hand %d: $%d staked\n", i+1, bet))
		}
	}
	if s.InsuranceBet > 0 {
		content.WriteString(fmt.Sprintf("  Insurance: $%d\n", s.InsuranceBet))
	}

	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Shoe: %d cards", s.ShoeRemaining)))

	return content.String()
}

func (m *TUIModel) renderDealerRow(s *game.Snapshot) string {
	if len(s.Dealer.Cards) == 0 {
		return "  Dealer: " + InfoStyle.Render("(no cards)")
	}

	cards := m.formatCards(s.Dealer.Cards)
	if !s.Dealer.HoleRevealed {
		// The snapshot omits the hole card until the reveal.
		cards = strings.TrimSuffix(cards, "]") + " " + InfoStyle.Render("?") + "]"
	}

	label := fmt.Sprintf("%d", s.Dealer.Value)
	switch {
	case s.Dealer.Blackjack:
		label = ErrorStyle.Render("blackjack")
	case s.Dealer.Bust:
		label = SuccessStyle.Render(fmt.Sprintf("bust (%d)", s.Dealer.Value))
	case s.Dealer.Soft:
		label = fmt.Sprintf("soft %d", s.Dealer.Value)
	}

	return fmt.Sprintf("  Dealer: %s %s", cards, label)
}

func (m *TUIModel) renderHandRow(s *game.Snapshot, i int) string {
	h := s.Hands[i]

	marker := "  "
	if s.Phase == game.PhasePlayerTurn && i == s.CurrentHand {
		marker = ActionsStyle.Render("> ")
	}

	label := fmt.Sprintf("%d", h.Value)
	switch {
	case h.Blackjack:
		label = SuccessStyle.Render("blackjack")
	case h.Bust:
		label = ErrorStyle.Render(fmt.Sprintf("bust (%d)", h.Value))
	case h.Soft:
		label = fmt.Sprintf("soft %d", h.Value)
	}

	row := fmt.Sprintf("%sHand %d: %s %s ($%d)", marker, i+1, m.formatCards(h.Cards), label, h.Bet)
	if h.Outcome != "" {
		row += " " + outcomeLabel(h.Outcome)
	}
	return row
}

func outcomeLabel(outcome string) string {
	label := strings.ToLower(outcome)
	switch outcome {
	case game.OutcomeWin.String(), game.OutcomeBlackjack.String():
		return SuccessStyle.Render(label)
	case game.OutcomeLose.String():
		return ErrorStyle.Render(label)
	default:
		return InfoStyle.Render(label)
	}
}

// renderActionPane renders the command bar with the current hand and
// the actions the table allows right now.
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	s := m.snapshot
	if s != nil {
		if info := m.renderTurnInfo(s); info != "" {
			content.WriteString(info)
			content.WriteString("\n")
		}
		content.WriteString(m.renderAvailableActions(s))
		content.WriteString("\n")
	}

	m.actionInput.Placeholder = placeholderFor(s)
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render(
			"Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render(
			"Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

// renderTurnInfo summarises the decision the table is waiting on.
func (m *TUIModel) renderTurnInfo(s *game.Snapshot) string {
	switch s.Phase {
	case game.PhasePlayerTurn:
		if s.CurrentHand >= len(s.Hands) {
			return ""
		}
		h := s.Hands[s.CurrentHand]
		value := fmt.Sprintf("%d", h.Value)
		if h.Soft {
			value = "soft " + value
		}
		return HandInfoStyle.Render(fmt.Sprintf("Hand %d: %s %s  Bet: $%d",
			s.CurrentHand+1, m.formatCards(h.Cards), value, h.Bet))
	case game.PhaseInsuranceCheck:
		return HandInfoStyle.Render(fmt.Sprintf("Dealer shows %s", m.formatCards(s.Dealer.Cards)))
	case game.PhaseGameOver:
		return ErrorStyle.Render(fmt.Sprintf("Game over: balance $%d", s.Balance))
	}
	return ""
}

// renderAvailableActions lists the legal actions from the snapshot.
// House moves never show up here; the bridge plays them automatically.
func (m *TUIModel) renderAvailableActions(s *game.Snapshot) string {
	var actions []string

	for _, va := range s.Actions {
		switch va.Action {
		case game.ActionBet:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[bet $%d-$%d]", va.MinAmount, va.MaxAmount)))
		case game.ActionDeal:
			actions = append(actions, SuccessStyle.Render("[deal]"))
		case game.ActionHit:
			actions = append(actions, SuccessStyle.Render("[hit]"))
		case game.ActionStand:
			actions = append(actions, SuccessStyle.Render("[stand]"))
		case game.ActionDouble:
			actions = append(actions, WarningStyle.Render("[double]"))
		case game.ActionSplit:
			actions = append(actions, WarningStyle.Render("[split]"))
		case game.ActionInsurance:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[insurance $%d]", va.MinAmount)))
		case game.ActionNoInsurance:
			actions = append(actions, ErrorStyle.Render("[no insurance]"))
		case game.ActionNewRound:
			actions = append(actions, SuccessStyle.Render("[new]"))
		}
	}

	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}

	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

func placeholderFor(s *game.Snapshot) string {
	if s == nil {
		return "bet 25, deal, hit, stand... ('help' for commands)"
	}
	switch s.Phase {
	case game.PhaseBetting:
		return "bet <amount>, then deal"
	case game.PhaseInsuranceCheck:
		return "insurance or no insurance"
	case game.PhasePlayerTurn:
		return "hit, stand, double or split"
	case game.PhaseResolution:
		return "Enter or 'new' for the next round"
	case game.PhaseGameOver:
		return "'quit' to leave the table"
	}
	return "'help' for commands"
}

// formatCards renders card views with suit colors.
func (m *TUIModel) formatCards(cards []game.CardView) string {
	if len(cards) == 0 {
		return "[]"
	}

	var formatted []string
	for _, card := range cards {
		if card.Suit == "hearts" || card.Suit == "diamonds" {
			formatted = append(formatted, RedCardStyle.Render(card.Display))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.Display))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

func totalWagered(s *game.Snapshot) int {
	total := s.InsuranceBet
	for _, bet := range s.Bets {
		total += bet
	}
	return total
}

// UpdateSnapshot replaces the displayed table state.
func (m *TUIModel) UpdateSnapshot(snap game.Snapshot) {
	m.snapshot = &snap
}

// Snapshot returns the table state the UI is showing, or nil before the
// first update.
func (m *TUIModel) Snapshot() *game.Snapshot {
	return m.snapshot
}

// AddLogEntry appends an entry to the transcript.
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	// In test mode, also capture the log entry
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddLogEntryAndScrollToShow appends an entry and scrolls it to the top
// of the viewport. Round headers use this so the new round starts at
// the top of the visible log.
func (m *TUIModel) AddLogEntryAndScrollToShow(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)

	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.SetYOffset(len(m.gameLog) - 1)
	}
}

// ClearLog clears the transcript.
func (m *TUIModel) ClearLog() {
	m.gameLog = []string{}
	m.logViewport.SetContent("")
}

// processAction splits a submitted line into a command and arguments
// and hands it to whoever is blocked in WaitForAction.
func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(strings.ToLower(input))

	var action string
	var args []string

	if len(parts) > 0 {
		action = parts[0]
		args = parts[1:]
	}

	m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true,
	}
}

// WaitForAction blocks until the user submits a line.
func (m *TUIModel) WaitForAction() (string, []string, bool, error) {
	result := <-m.actionResult
	return result.Action, result.Args, result.Continue, result.Error
}

// SendQuitSignal signals the TUI to quit gracefully.
func (m *TUIModel) SendQuitSignal() {
	select {
	case m.quitSignal <- true:
	default:
		// Quit signal already sent
	}
}

// GetCapturedLog returns the captured log entries (test mode only).
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAction programmatically injects an action (test mode only).
func (m *TUIModel) InjectAction(action string, args []string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}

	select {
	case m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true,
	}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode.
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
