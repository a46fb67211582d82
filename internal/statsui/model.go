// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/stats"
	"github.com/hmori/shengci/internal/store"
)

const (
	tabOverview = iota
	tabWeakWords
	tabHistory
)

const plotHeight = 10

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
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store   *store.Store
	catalog *catalog.Catalog
	cfg     model.StatsConfig

	report  stats.Report
	records []model.PracticeRecord
	errMsg  string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	historyTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cat *catalog.Catalog, cfg model.StatsConfig) *Model {
	m := &Model{
		store:   st,
		catalog: cat,
		cfg:     cfg,
		tabs:    []string{"Overview", "Weak Words", "History"},
	}
	m.initHistoryTable()
	m.initViewports()
	m.refresh()
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
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabHistory {
			m.historyTable.Focus()
		} else {
			m.historyTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "d":
			if m.activeTab == tabHistory {
				m.deleteSelectedRecord()
				return m, nil
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
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

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initHistoryTable() {
	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithHeight(1),
	)
	t.SetStyles(historyTableStyles())
	m.historyTable = t
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
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
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(maxInt(1, bodyHeight-1))
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
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
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
	scope := "all lessons"
	if len(m.cfg.Lessons) > 0 {
		scope = m.catalog.Titles(m.cfg.Lessons)
	}
	summary := truncateLine(fmt.Sprintf("Scope: %s", scope), m.width)
	return tabs + "\n" + padLines(headerStyle.Render(summary), m.width)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.activeTab == tabHistory {
		help = "Nav: left/right  Select: up/down  Delete record: d  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabHistory {
		if len(m.records) == 0 {
			return fitLines("No practice history.", m.width, height)
		}
		view := tableMutedStyle.Render(m.historyTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refresh() {
	report, err := stats.BuildReport(context.Background(), m.store, m.catalog, m.scopeLessons(), m.cfg.WeakCount)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	records, err := m.store.ListPracticeRecords(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.records = records
	m.historyTable.SetRows(historyRows(m.records, m.catalog))
	m.renderTabContents()
}

// scopeLessons widens an empty selection to the whole catalog.
func (m *Model) scopeLessons() []int {
	if len(m.cfg.Lessons) > 0 {
		return m.cfg.Lessons
	}
	lessons := m.catalog.Lessons()
	ids := make([]int, len(lessons))
	for i, lesson := range lessons {
		ids[i] = lesson.ID
	}
	return ids
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.records, width))
	m.viewports[tabWeakWords].SetContent(renderWeakWords(m.report.WeakWords))
}

func (m *Model) deleteSelectedRecord() {
	cursor := m.historyTable.Cursor()
	if cursor < 0 || cursor >= len(m.records) {
		return
	}
	if err := m.store.DeletePracticeRecord(context.Background(), m.records[cursor].ID); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.refresh()
	if cursor >= len(m.records) && cursor > 0 {
		m.historyTable.SetCursor(cursor - 1)
	}
}

func renderOverview(report stats.Report, records []model.PracticeRecord, width int) string {
	total := report.Correct + report.Incorrect
	if total == 0 && len(records) == 0 {
		return "No attempts recorded."
	}
	summary := renderSummaryCards(report, records, width)
	curve := renderAccuracyCurve(records, width)
	if curve == "" {
		return strings.TrimRight(summary, "\n")
	}
	return strings.TrimRight(summary+"\n\n"+curve, "\n")
}

func renderSummaryCards(report stats.Report, records []model.PracticeRecord, width int) string {
	total := report.Correct + report.Incorrect
	overall := stats.NoAttemptsText
	if total > 0 {
		_, overall = stats.Accuracy(report.Correct, report.Incorrect)
	}
	cards := []string{
		metricCard("Attempts", fmt.Sprintf("%d", total)),
		metricCard("Accuracy", overall),
		metricCard("Weak Words", fmt.Sprintf("%d", len(report.WeakWords))),
		metricCard("Sessions", fmt.Sprintf("%d", len(records))),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderAccuracyCurve(records []model.PracticeRecord, width int) string {
	values := stats.HistoryAccuracySeries(records)
	if len(values) < 2 {
		return ""
	}
	var buf bytes.Buffer
	if err := stats.PlotAccuracyCurve(&buf, "Session accuracy", values, stats.PlotWidthFor(width), plotHeight); err != nil {
		return fmt.Sprintf("Failed to render curve: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderWeakWords(weak []stats.WeakWord) string {
	if len(weak) == 0 {
		return "No weak words."
	}
	var buf bytes.Buffer
	report := stats.Report{WeakWords: weak}
	if err := stats.RenderReport(&buf, report); err != nil {
		return fmt.Sprintf("Failed to render weak words: %v", err)
	}
	// RenderReport leads with the overall line; the tab only needs the list.
	out := buf.String()
	if idx := strings.Index(out, "Weak words"); idx >= 0 {
		out = out[idx:]
	}
	return strings.TrimRight(out, "\n")
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Date", Width: 17},
		{Title: "Lessons", Width: 30},
		{Title: "Accuracy", Width: 9},
	}
}

func historyRows(records []model.PracticeRecord, cat *catalog.Catalog) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", rec.ID),
			rec.Date.Local().Format("2006-01-02 15:04"),
			cat.Titles(rec.Lessons),
			fmt.Sprintf("%.0f%%", rec.Accuracy),
		})
	}
	return rows
}

func historyTableStyles() table.Styles {
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
