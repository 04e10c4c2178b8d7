// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/devtype/internal/model"
	"github.com/verte-zerg/devtype/internal/stats"
	"github.com/verte-zerg/devtype/internal/store"
	"github.com/verte-zerg/devtype/internal/tracker"
)

const (
	tabOverview = iota
	tabMissedKeys
	tabLeaderboard
)

const (
	curveWindow      = 5
	leaderboardLimit = 10
	recentCount      = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store   *store.Store
	tracker *tracker.Tracker
	cfg     model.StatsConfig

	report      stats.Report
	leaderboard []model.LeaderboardEntry
	errMsg      string

	tabs       []string
	activeTab  int
	overview   viewport.Model
	keyTable   table.Model
	boardTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, trk *tracker.Tracker, cfg model.StatsConfig) *Model {
	m := &Model{
		store:   st,
		tracker: trk,
		cfg:     cfg,
		tabs:    []string{"Overview", "Missed Keys", "Leaderboard"},
	}
	m.overview = viewport.New(0, 0)
	m.keyTable = newKeyTable(nil)
	m.boardTable = newBoardTable(nil)
	m.initInputs()
	m.refreshReport()
	return m
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "g", "home":
			m.gotoTop()
			return m, nil
		case "G", "end":
			m.gotoBottom()
			return m, nil
		default:
			return m.forwardKey(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Language: "),
		newFilterInput("Mode (timed/practice): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Language))
	m.filterInputs[1].SetValue(strings.TrimSpace(m.cfg.Mode))
	if m.cfg.Since != nil {
		m.filterInputs[2].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[2].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[3].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.keyTable.SetWidth(m.width)
	m.keyTable.SetHeight(maxInt(1, bodyHeight-1))
	m.boardTable.SetWidth(m.width)
	m.boardTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.keyTable.Blur()
	m.boardTable.Blur()
	switch m.activeTab {
	case tabMissedKeys:
		m.keyTable.Focus()
	case tabLeaderboard:
		m.boardTable.Focus()
	}
}

func (m *Model) gotoTop() {
	switch m.activeTab {
	case tabMissedKeys:
		m.keyTable.GotoTop()
	case tabLeaderboard:
		m.boardTable.GotoTop()
	default:
		m.overview.GotoTop()
	}
}

func (m *Model) gotoBottom() {
	switch m.activeTab {
	case tabMissedKeys:
		m.keyTable.GotoBottom()
	case tabLeaderboard:
		m.boardTable.GotoBottom()
	default:
		m.overview.GotoBottom()
	}
}

func (m *Model) forwardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabMissedKeys:
		m.keyTable, cmd = m.keyTable.Update(msg)
	case tabLeaderboard:
		m.boardTable, cmd = m.boardTable.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	lang := m.cfg.Language
	if lang == "" || lang == model.LanguageAny {
		lang = "any"
	}
	mode := m.cfg.Mode
	if mode == "" {
		mode = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: lang=%s  mode=%s  since=%s  last=%s", lang, mode, since, last)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Settings: /  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	switch m.activeTab {
	case tabMissedKeys:
		if len(m.report.KeyErrors) == 0 {
			return fitLines("No missed keys recorded.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.keyTable.View()), m.width, height)
	case tabLeaderboard:
		if len(m.leaderboard) == 0 {
			return fitLines("No scores submitted yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.boardTable.View()), m.width, height)
	default:
		return fitLines(m.overview.View(), m.width, height)
	}
}

func (m *Model) refreshReport() {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, m.store, m.tracker, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	board, err := m.store.Leaderboard(ctx, m.cfg.Language, leaderboardLimit)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.leaderboard = board
	m.keyTable.SetRows(keyRows(report.KeyErrors))
	m.boardTable.SetRows(boardRows(board))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load stats.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, width))
}

func renderOverview(report stats.Report, width int) string {
	if report.Summary.Tests == 0 {
		return "No sessions recorded yet."
	}
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, report); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	buf.WriteString("\n")
	if err := stats.RenderCurves(&buf, report.Results, curveWindow, width); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	buf.WriteString("\n")
	if err := stats.RenderRecent(&buf, report.Results, recentCount); err != nil {
		return fmt.Sprintf("Failed to render recent results: %v", err)
	}
	buf.WriteString("\n")
	if err := stats.RenderAchievements(&buf, report); err != nil {
		return fmt.Sprintf("Failed to render achievements: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newKeyTable(aggs []model.KeyErrorAggregate) table.Model {
	columns := []table.Column{
		{Title: "Key", Width: 8},
		{Title: "Misses", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(keyRows(aggs)),
		table.WithHeight(1),
	)
	t.SetStyles(mutedTableStyles())
	return t
}

func keyRows(aggs []model.KeyErrorAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row{displayKey(agg.Key), strconv.Itoa(agg.Misses)})
	}
	return rows
}

func newBoardTable(entries []model.LeaderboardEntry) table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 4},
		{Title: "Name", Width: 16},
		{Title: "WPM", Width: 5},
		{Title: "Acc", Width: 5},
		{Title: "Score", Width: 6},
		{Title: "Language", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(boardRows(entries)),
		table.WithHeight(1),
	)
	t.SetStyles(mutedTableStyles())
	return t
}

func boardRows(entries []model.LeaderboardEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			strconv.Itoa(e.Rank),
			e.Name,
			strconv.Itoa(e.WPM),
			fmt.Sprintf("%d%%", e.Accuracy),
			strconv.Itoa(e.WeightedScore),
			e.Language,
		})
	}
	return rows
}

func mutedTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func displayKey(key string) string {
	switch key {
	case " ":
		return "<space>"
	case "\n":
		return "<enter>"
	case "\t":
		return "<tab>"
	default:
		return key
	}
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	lang := strings.TrimSpace(m.filterInputs[0].Value())
	mode := strings.TrimSpace(m.filterInputs[1].Value())
	if mode != "" && mode != string(model.ModeTimed) && mode != string(model.ModePractice) {
		return fmt.Errorf("invalid mode (use timed or practice)")
	}

	sinceInput := strings.TrimSpace(m.filterInputs[2].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[3].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	m.cfg = model.StatsConfig{
		Language: lang,
		Mode:     mode,
		Since:    since,
		Last:     last,
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
