// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vocaquiz/vocaquiz/internal/distractor"
	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/remote"
	"github.com/vocaquiz/vocaquiz/internal/session"
	"github.com/vocaquiz/vocaquiz/internal/store"
)

type phase int

const (
	phaseQuestion phase = iota
	phaseFeedback
	phaseResult
)

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	posTagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	optionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

type tickMsg time.Time

// advanceMsg moves from feedback to the next question. The seq token
// cancels ticks scheduled for an earlier question or an abandoned
// session.
type advanceMsg struct {
	seq int
}

type localSavedMsg struct {
	err error
}

type syncedMsg struct {
	status remote.SyncStatus
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	engine *session.Engine
	st     *store.Store
	rc     *remote.Client

	revealDelay time.Duration

	width  int
	height int

	phase      phase
	input      textinput.Model
	item       *model.QuizItem
	options    []distractor.Option
	outcome    session.Outcome
	advanceSeq int

	result      session.Result
	localErr    error
	syncPending bool
	syncStatus  *remote.SyncStatus

	errMsg string
}

// NewModel constructs a quiz TUI model over an already-started engine.
// The remote client may be nil when no record service is configured.
func NewModel(engine *session.Engine, st *store.Store, rc *remote.Client, revealDelay time.Duration) *Model {
	input := textinput.New()
	input.Placeholder = "type your answer"
	input.CharLimit = 64
	input.Focus()

	m := &Model{
		engine:      engine,
		st:          st,
		rc:          rc,
		revealDelay: revealDelay,
		input:       input,
	}
	m.loadCurrent()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.phase == phaseResult {
			return m, nil
		}
		return m, tickCmd()
	case advanceMsg:
		return m.handleAdvance(msg)
	case localSavedMsg:
		m.localErr = msg.err
		return m, nil
	case syncedMsg:
		m.syncPending = false
		status := msg.status
		m.syncStatus = &status
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.phase {
	case phaseResult:
		if msg.String() == "q" || msg.Type == tea.KeyEnter {
			return m, tea.Quit
		}
		return m, nil
	case phaseFeedback:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			// Skip the reveal delay; the pending tick is cancelled by
			// the seq bump inside handleAdvance.
			return m.handleAdvance(advanceMsg{seq: m.advanceSeq})
		}
		return m, nil
	}

	// Question phase.
	if m.engine.Paused() {
		if msg.String() == "p" {
			m.engine.Resume()
		}
		return m, nil
	}
	if m.item != nil && m.item.QuestionType == model.MultipleChoice {
		switch key := msg.String(); key {
		case "p":
			m.engine.Pause()
			return m, nil
		case "1", "2", "3", "4":
			idx := int(key[0] - '1')
			if idx < len(m.options) {
				return m.submit(m.options[idx].Value)
			}
			return m, nil
		default:
			return m, nil
		}
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.submit(m.input.Value())
	case tea.KeyEsc:
		m.engine.Pause()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit scores the current answer and shows feedback for the reveal
// delay before advancing.
func (m *Model) submit(input string) (tea.Model, tea.Cmd) {
	outcome, err := m.engine.Submit(input)
	if err != nil {
		// Submit outside AwaitingAnswer is ignored, not fatal.
		return m, nil
	}
	m.outcome = outcome
	m.phase = phaseFeedback
	m.advanceSeq++
	seq := m.advanceSeq
	return m, tea.Tick(m.revealDelay, func(time.Time) tea.Msg {
		return advanceMsg{seq: seq}
	})
}

func (m *Model) handleAdvance(msg advanceMsg) (tea.Model, tea.Cmd) {
	if m.phase != phaseFeedback || msg.seq != m.advanceSeq {
		return m, nil
	}
	m.advanceSeq++
	if m.outcome.Done {
		return m.finish()
	}
	m.phase = phaseQuestion
	m.input.SetValue("")
	m.input.Focus()
	m.loadCurrent()
	return m, nil
}

// finish computes the summary and hands it off: local store first,
// then the record service. Neither blocks the result screen.
func (m *Model) finish() (tea.Model, tea.Cmd) {
	result, err := m.engine.Summary()
	if err != nil {
		m.errMsg = err.Error()
		m.phase = phaseResult
		return m, nil
	}
	m.result = result
	m.phase = phaseResult

	cmds := []tea.Cmd{saveLocalCmd(m.st, result)}
	if m.rc != nil {
		m.syncPending = true
		cmds = append(cmds, submitRemoteCmd(m.rc, result))
	}
	return m, tea.Batch(cmds...)
}

func saveLocalCmd(st *store.Store, res session.Result) tea.Cmd {
	return func() tea.Msg {
		if st == nil {
			return localSavedMsg{}
		}
		return localSavedMsg{err: st.SaveResult(context.Background(), res)}
	}
}

func submitRemoteCmd(rc *remote.Client, res session.Result) tea.Cmd {
	return func() tea.Msg {
		return syncedMsg{status: rc.SubmitResult(context.Background(), res)}
	}
}

func (m *Model) loadCurrent() {
	item, options, err := m.engine.Current()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.item = item
	m.options = options
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch {
	case m.phase == phaseResult:
		body = m.viewResult()
	case m.engine.Paused():
		body = mutedStyle.Render("Paused. Press p to resume.")
	case m.phase == phaseFeedback:
		body = m.viewQuestion() + "\n\n" + m.viewFeedback()
	default:
		body = m.viewQuestion()
	}

	if m.width == 0 || m.height == 0 {
		return body
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	bodyHeight := m.height - 1
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return placed + "\n" + footerLine
}

func (m *Model) viewQuestion() string {
	if m.item == nil {
		return incorrectStyle.Render(m.errMsg)
	}
	prompt := fmt.Sprintf("%s %s",
		promptStyle.Render(m.item.Prompt()),
		posTagStyle.Render("["+m.item.Word.PartOfSpeech+"]"))

	var b strings.Builder
	b.WriteString(wrapText(prompt, m.contentWidth()))
	b.WriteString("\n")
	if m.item.QuestionType == model.MultipleChoice {
		for i, opt := range m.options {
			b.WriteString("\n")
			b.WriteString(optionStyle.Render(fmt.Sprintf("%d. %s", i+1, opt.Value)))
		}
	} else {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}
	return b.String()
}

func (m *Model) viewFeedback() string {
	if m.outcome.Correct {
		return correctStyle.Render("Correct!")
	}
	return incorrectStyle.Render(fmt.Sprintf("Wrong. The answer is: %s", m.outcome.Canonical))
}

func (m *Model) viewResult() string {
	if m.errMsg != "" {
		return incorrectStyle.Render(m.errMsg)
	}
	summary := m.result.Summary
	var b strings.Builder
	b.WriteString(promptStyle.Render("Session complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Score: %d/%d (%d%%)\n",
		summary.CorrectCount, summary.TotalQuestions, summary.ScorePercentage))
	b.WriteString(fmt.Sprintf("Time: %s\n", formatSeconds(summary.ElapsedSeconds)))
	b.WriteString(fmt.Sprintf("Questions: %d choice, %d fill-in\n",
		summary.TypeBreakdown.MultipleChoice, summary.TypeBreakdown.FillIn))

	if len(m.result.Mistakes) == 0 {
		b.WriteString("\n")
		b.WriteString(correctStyle.Render("No mistakes this time."))
	} else {
		b.WriteString("\nMistakes:\n")
		for i, mk := range m.result.Mistakes {
			response := mk.UserResponse
			if strings.TrimSpace(response) == "" {
				response = "(no answer)"
			}
			b.WriteString(fmt.Sprintf("%d. %s %s %s\n", i+1,
				mk.Headword, posTagStyle.Render("["+mk.PartOfSpeech+"]"), mk.Translation))
			b.WriteString(mutedStyle.Render(fmt.Sprintf("   your answer: %s", response)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.syncLine())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Press q to quit."))
	return b.String()
}

// syncLine reports persistence outcomes. Failures are advisory: the
// summary above stays valid either way.
func (m *Model) syncLine() string {
	var parts []string
	if m.localErr != nil {
		parts = append(parts, incorrectStyle.Render("local save failed"))
	}
	switch {
	case m.rc == nil:
	case m.syncPending:
		parts = append(parts, mutedStyle.Render("syncing..."))
	case m.syncStatus != nil && m.syncStatus.OK():
		parts = append(parts, correctStyle.Render("synced"))
	case m.syncStatus != nil:
		parts = append(parts, incorrectStyle.Render("sync failed: "+m.syncStatus.Message))
	}
	if len(parts) == 0 {
		return mutedStyle.Render("saved locally")
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderFooter() string {
	if m.phase == phaseResult {
		return ""
	}
	current, total := m.engine.Progress()
	segments := []string{
		fmt.Sprintf("Question %d/%d", current, total),
		fmt.Sprintf("Time %s", formatSeconds(m.engine.Elapsed().Seconds())),
	}
	if m.engine.Paused() {
		segments = append(segments, "paused")
	} else {
		segments = append(segments, "p pause · ctrl+c quit")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	return contentWidth
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
