// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/session"
	"github.com/verte-zerg/devtype/internal/store"
	"github.com/verte-zerg/devtype/internal/tracker"
)

// tickMsg carries the generation it was scheduled under so ticks issued
// before a pause or restart are dropped instead of advancing the clock.
type tickMsg struct {
	gen int
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctrl    *session.Controller
	store   *store.Store
	tracker *tracker.Tracker
	profile string

	width  int
	height int

	tickGen     int
	showResults bool
	lastResult  *model.SessionResult
	scoreSaved  bool
	statusMsg   string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Copy().Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	accentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// NewModel constructs a typing TUI model.
func NewModel(ctrl *session.Controller, st *store.Store, trk *tracker.Tracker, profile string) *Model {
	return &Model{
		ctrl:    ctrl,
		store:   st,
		tracker: trk,
		profile: profile,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m.handleTick(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.tickGen {
		return m, nil
	}
	if err := m.ctrl.Tick(); err != nil {
		logErrf("failed to advance clock: %v\n", err)
	}
	switch m.ctrl.State().Phase {
	case session.PhaseComplete:
		m.finishToResults()
		return m, nil
	case session.PhaseActive:
		return m, tickCmd(m.tickGen)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showResults {
		return m.handleResultsKey(msg)
	}
	switch m.ctrl.State().Phase {
	case session.PhasePaused:
		return m.handlePausedKey(msg)
	default:
		return m.handleTypingKey(msg)
	}
}

func (m *Model) handleTypingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.ctrl.State().Phase == session.PhaseActive {
			m.ctrl.Pause()
			m.tickGen++
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyCtrlD:
		return m.finishPractice()
	case tea.KeyBackspace, tea.KeyDelete:
		return m.applyBackspace()
	case tea.KeyTab:
		return m.applyRunes([]rune("    "))
	case tea.KeyEnter:
		return m.applyRunes([]rune{'\n'})
	case tea.KeySpace:
		return m.applyRunes([]rune{' '})
	case tea.KeyRunes:
		return m.applyRunes(msg.Runes)
	default:
		return m, nil
	}
}

func (m *Model) handlePausedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeySpace:
		m.ctrl.Resume()
		m.tickGen++
		return m, tickCmd(m.tickGen)
	case msg.Type == tea.KeyCtrlD:
		return m.finishPractice()
	case msg.Type == tea.KeyEsc || msg.String() == "q":
		return m.exitSession()
	default:
		return m, nil
	}
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "enter":
		if err := m.ctrl.Restart(); err != nil {
			logErrf("failed to restart session: %v\n", err)
			return m, tea.Quit
		}
		m.showResults = false
		m.lastResult = nil
		m.scoreSaved = false
		m.statusMsg = ""
		m.tickGen++
		return m, nil
	case "s":
		m.submitScore()
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m *Model) applyBackspace() (tea.Model, tea.Cmd) {
	input := m.ctrl.State().Input
	if len(input) == 0 {
		return m, nil
	}
	if err := m.ctrl.UpdateInput(input[:len(input)-1]); err != nil {
		logErrf("failed to apply input: %v\n", err)
	}
	return m, nil
}

func (m *Model) applyRunes(runes []rune) (tea.Model, tea.Cmd) {
	before := m.ctrl.State()
	next := append(append([]rune(nil), before.Input...), runes...)
	if err := m.ctrl.UpdateInput(next); err != nil {
		logErrf("failed to apply input: %v\n", err)
		return m, nil
	}
	if before.Phase == session.PhaseIdle && m.ctrl.State().Phase == session.PhaseActive {
		m.tickGen++
		return m, tickCmd(m.tickGen)
	}
	return m, nil
}

func (m *Model) finishPractice() (tea.Model, tea.Cmd) {
	if m.ctrl.Config().Mode != model.ModePractice {
		return m, nil
	}
	m.tickGen++
	if err := m.ctrl.Finish(); err != nil {
		logErrf("failed to finish session: %v\n", err)
		return m, nil
	}
	if m.ctrl.State().Phase == session.PhaseComplete {
		m.finishToResults()
	}
	return m, nil
}

// exitSession abandons the session from the pause overlay. A practice exit
// still yields a result; a timed exit goes straight back to a fresh snippet.
func (m *Model) exitSession() (tea.Model, tea.Cmd) {
	m.tickGen++
	result, err := m.ctrl.Exit()
	if err != nil {
		logErrf("failed to exit session: %v\n", err)
	}
	if result == nil {
		m.statusMsg = "session discarded"
		return m, nil
	}
	m.persistResult(result)
	m.lastResult = result
	m.showResults = true
	m.scoreSaved = false
	m.statusMsg = ""
	return m, nil
}

func (m *Model) finishToResults() {
	result := m.ctrl.Result()
	if result == nil {
		return
	}
	m.persistResult(result)
	m.lastResult = result
	m.showResults = true
	m.scoreSaved = false
	m.statusMsg = ""
	m.tickGen++
}

func (m *Model) persistResult(result *model.SessionResult) {
	if _, err := m.store.InsertResult(context.Background(), *result); err != nil {
		logErrf("failed to save result: %v\n", err)
	}
}

func (m *Model) submitScore() {
	if m.lastResult == nil || m.scoreSaved {
		return
	}
	if m.lastResult.Mode != model.ModeTimed {
		m.statusMsg = "only timed results go to the leaderboard"
		return
	}
	sub := model.ScoreSubmission{
		Name:            m.profile,
		WPM:             m.lastResult.WPM,
		Accuracy:        m.lastResult.Accuracy,
		Language:        m.lastResult.Language,
		DurationSeconds: m.lastResult.DurationSeconds,
	}
	if _, err := m.store.SubmitScore(context.Background(), sub); err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.scoreSaved = true
	m.statusMsg = "score saved to leaderboard"
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showResults {
		return m.viewResults()
	}
	st := m.ctrl.State()
	if st.Phase == session.PhasePaused {
		return m.viewPaused()
	}
	return m.viewTyping(st)
}

func (m *Model) viewTyping(st session.State) string {
	if len(st.Target) == 0 {
		return ""
	}
	cursorIndex := -1
	if len(st.Input) < len(st.Target) {
		cursorIndex = len(st.Input)
	}
	styledRunes := buildStyledRunes(st.Target, st.Input, cursorIndex)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	header := m.renderHeader(st)
	footer := m.renderFooter(st)
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	headerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, header)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return headerLine + "\n" + body + "\n" + footerLine
}

func (m *Model) viewPaused() string {
	lines := []string{
		titleStyle.Render("Paused"),
		"",
		footerStyle.Render("space resume · esc exit"),
	}
	if m.ctrl.Config().Mode == model.ModePractice {
		lines[2] = footerStyle.Render("space resume · ctrl+d finish · esc exit")
	}
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewResults() string {
	r := m.lastResult
	if r == nil {
		return ""
	}
	lines := []string{titleStyle.Render("Session complete"), ""}
	if r.IsNewPersonalBest {
		lines = append(lines, accentStyle.Render("New personal best!"), "")
	}
	lines = append(lines,
		fmt.Sprintf("%s %s", headerStyle.Render("WPM"), titleStyle.Render(fmt.Sprintf("%d", r.WPM))),
		fmt.Sprintf("%s %s", headerStyle.Render("Accuracy"), titleStyle.Render(fmt.Sprintf("%d%%", r.Accuracy))),
		fmt.Sprintf("%s %s", headerStyle.Render("Snippets"), titleStyle.Render(fmt.Sprintf("%d", r.SnippetsCompleted))),
		fmt.Sprintf("%s %s", headerStyle.Render("Duration"), titleStyle.Render(formatClock(r.DurationSeconds))),
		"",
	)
	hints := "r restart · q quit"
	if r.Mode == model.ModeTimed && !m.scoreSaved {
		hints = "r restart · s save score · q quit"
	}
	lines = append(lines, footerStyle.Render(hints))
	if m.statusMsg != "" {
		lines = append(lines, footerStyle.Render(m.statusMsg))
	}
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader(st session.State) string {
	cfg := m.ctrl.Config()
	segments := []string{fmt.Sprintf("%s · %s", cfg.Mode, st.Language)}
	if cfg.Mode == model.ModeTimed {
		segments = append(segments, formatClock(st.RemainingSeconds))
	} else {
		segments = append(segments, formatClock(st.ElapsedSeconds))
	}
	if st.LiveWPM > 0 {
		segments = append(segments, fmt.Sprintf("%d WPM", st.LiveWPM))
	}
	return headerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderFooter(st session.State) string {
	segments := []string{}
	if streak := m.tracker.Streak(); streak > 0 {
		segments = append(segments, fmt.Sprintf("Streak %dd", streak))
	}
	if best := m.tracker.BestWPM(); best > 0 {
		segments = append(segments, fmt.Sprintf("Best %d WPM", best))
	}
	if st.SnippetsCompleted > 0 {
		segments = append(segments, fmt.Sprintf("Snippets %d", st.SnippetsCompleted))
	}
	switch st.Phase {
	case session.PhaseIdle:
		segments = append(segments, "type to start · esc quit")
	default:
		segments = append(segments, "esc pause")
	}
	if m.statusMsg != "" {
		segments = append(segments, m.statusMsg)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
