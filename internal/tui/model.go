package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/session"
	"github.com/hmori/shengci/internal/speech"
	statsPkg "github.com/hmori/shengci/internal/stats"
	"github.com/hmori/shengci/internal/store"
)

var (
	scopeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CB342"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	reviewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea flashcard UI around a session engine.
type Model struct {
	engine  *session.Engine
	store   *store.Store
	catalog *catalog.Catalog
	speaker *speech.Speaker
	cfg     model.Config

	width  int
	height int

	related     []model.Word
	saveResults bool
	saved       bool
	summary     session.Summary
	errMsg      string
}

// NewModel constructs the flashcard TUI model.
func NewModel(cfg model.Config, engine *session.Engine, st *store.Store, cat *catalog.Catalog, speaker *speech.Speaker) *Model {
	return &Model{
		engine:      engine,
		store:       st,
		catalog:     cat,
		speaker:     speaker,
		cfg:         cfg,
		saveResults: cfg.Save,
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
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			// Abort: committed answers stay, no history record is written.
			return m, tea.Quit
		}
		if m.engine.Phase() == session.PhaseCompleted {
			return m.updateCompleted(msg)
		}
		return m.updateQuestion(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch msg.String() {
	case " ", "enter":
		if m.engine.Phase() == session.PhasePresenting {
			m.related = m.engine.Reveal()
			if m.cfg.Speak {
				if word, ok := m.engine.Current(); ok {
					m.speaker.Speak(word.Simplified)
				}
			}
		}
		return m, nil
	case "y", "1":
		return m.feedback(true)
	case "n", "2":
		return m.feedback(false)
	case "r":
		if _, err := m.engine.ToggleReview(context.Background()); err != nil {
			m.errMsg = fmt.Sprintf("failed to toggle review: %v", err)
			logErrf("failed to toggle review: %v\n", err)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) feedback(correct bool) (tea.Model, tea.Cmd) {
	if m.engine.Phase() != session.PhaseRevealed {
		return m, nil
	}
	if err := m.engine.Feedback(context.Background(), correct); err != nil {
		m.errMsg = fmt.Sprintf("failed to record answer: %v", err)
		logErrf("failed to record answer: %v\n", err)
		return m, nil
	}
	m.related = nil
	if m.engine.Phase() == session.PhaseCompleted {
		m.summary = m.engine.Summary()
	}
	return m, nil
}

func (m *Model) updateCompleted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.saveResults = !m.saveResults
		return m, nil
	case "r":
		retry, err := m.engine.Retry()
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.finishOnce()
		m.engine = retry
		m.related = nil
		m.summary = session.Summary{}
		m.saved = false
		m.errMsg = ""
		return m, nil
	case "enter", "q":
		m.finishOnce()
		return m, tea.Quit
	default:
		return m, nil
	}
}

// finishOnce appends the practice-history record at most once per run.
func (m *Model) finishOnce() {
	if m.saved {
		return
	}
	if err := m.engine.Finish(context.Background(), m.saveResults); err != nil {
		logErrf("failed to save practice history: %v\n", err)
		return
	}
	m.saved = true
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.engine.Phase() == session.PhaseCompleted {
		content = m.viewSummary()
	} else {
		content = m.viewQuestion()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footer
}

// contentWidth is the wrap budget for long plain-text lines. Styling happens
// after wrapping so escape sequences never count toward the width.
func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	width := int(float64(m.width) * 0.70)
	if width < 20 {
		width = 20
	}
	return width
}

func (m *Model) viewQuestion() string {
	word, ok := m.engine.Current()
	if !ok {
		return ""
	}
	var b strings.Builder
	scope := m.catalog.Titles(m.engine.Lessons())
	b.WriteString(scopeStyle.Render(fmt.Sprintf("%s  %d / %d", scope, m.engine.Index()+1, m.engine.Len())))
	if m.engine.Reviewed() {
		b.WriteString("  " + reviewStyle.Render("[review]"))
	}
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(m.engine.Prompt()))
	b.WriteString("\n")

	if m.engine.Phase() == session.PhaseRevealed {
		b.WriteString("\n")
		for _, line := range m.answerLines(word) {
			b.WriteString(answerStyle.Render(line))
			b.WriteString("\n")
		}
		if len(m.related) > 0 {
			b.WriteString("\n" + mutedStyle.Render("Related words") + "\n")
			for _, rel := range m.related {
				line := wrapLine(fmt.Sprintf("%s (%s): %s", rel.Simplified, rel.Pinyin, rel.Japanese), m.contentWidth())
				b.WriteString(mutedStyle.Render(line))
				b.WriteString("\n")
			}
		}
	}
	if m.errMsg != "" {
		b.WriteString("\n" + wrongStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

// answerLines hides the field already shown as the prompt.
func (m *Model) answerLines(word model.Word) []string {
	lines := make([]string, 0, 4)
	if m.cfg.Mode != model.ModeChineseToJapanese {
		lines = append(lines, word.Simplified)
	}
	if m.cfg.Mode != model.ModePinyinToRest {
		lines = append(lines, word.Pinyin)
	}
	if m.cfg.Mode != model.ModeJapaneseToChinese {
		lines = append(lines, word.Japanese)
	}
	lines = append(lines, word.POS)
	return lines
}

func (m *Model) viewSummary() string {
	var b strings.Builder
	b.WriteString(headlineStyle.Render("Session complete") + "\n\n")
	b.WriteString(fmt.Sprintf("Accuracy: %s\n", m.summary.AccuracyText()))
	for _, pos := range m.summary.PerPOS {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s: %d/%d", pos.POS, pos.Correct, pos.Total)))
		b.WriteString("\n")
	}

	if len(m.summary.Incorrect) > 0 {
		b.WriteString("\n" + wrongStyle.Render("Incorrect") + "\n")
		for _, word := range m.summary.Incorrect {
			b.WriteString(fmt.Sprintf("%s (%s): %s  %s\n", word.Simplified, word.Pinyin, word.Japanese, mutedStyle.Render(m.accuracyText(word))))
		}
	} else {
		b.WriteString("\n" + correctStyle.Render("All answers correct") + "\n")
	}

	if len(m.summary.Review) > 0 {
		b.WriteString("\n" + reviewStyle.Render("Marked for review") + "\n")
		for _, word := range m.summary.Review {
			b.WriteString(fmt.Sprintf("%s (%s): %s\n", word.Simplified, word.Pinyin, word.Japanese))
		}
	}

	save := "on"
	if !m.saveResults {
		save = "off"
	}
	b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Save to history: %s", save)) + "\n")
	if m.errMsg != "" {
		b.WriteString(wrongStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

func (m *Model) accuracyText(word model.Word) string {
	stat, err := m.store.GetStat(context.Background(), word.ID)
	if err != nil {
		logErrf("failed to load stat: %v\n", err)
		return ""
	}
	_, text := statsPkg.Accuracy(stat.Correct, stat.Incorrect)
	return text
}

func (m *Model) renderFooter() string {
	var hints string
	switch m.engine.Phase() {
	case session.PhasePresenting:
		hints = "space show answer · r review · ctrl+c quit"
	case session.PhaseRevealed:
		hints = "y correct · n incorrect · r review · ctrl+c quit"
	default:
		hints = "enter finish · s save on/off · ctrl+c quit"
		if len(m.summary.Incorrect) > 0 {
			hints = "r retry incorrect · " + hints
		}
	}
	return footerStyle.Render(hints)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
