// Package tui provides the Bubble Tea writing interface.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rossmatican/thoughtleaderai/internal/keystroke"
	"github.com/rossmatican/thoughtleaderai/internal/logging"
	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/pattern"
	"github.com/rossmatican/thoughtleaderai/internal/session"
	statsPkg "github.com/rossmatican/thoughtleaderai/internal/stats"
	"github.com/rossmatican/thoughtleaderai/internal/textstat"
	"github.com/rossmatican/thoughtleaderai/internal/voice"
)

// DefaultDebounce is the quiet period after an edit before re-scoring.
const DefaultDebounce = 750 * time.Millisecond

type phase int

const (
	phaseBaseline phase = iota
	phaseWriting
	phaseReview
)

func (p phase) String() string {
	switch p {
	case phaseBaseline:
		return "baseline"
	case phaseWriting:
		return "writing"
	default:
		return "review"
	}
}

// Options configure the writing interface.
type Options struct {
	Debounce         time.Duration
	BaselineMinChars int
	SkipBaseline     bool
	Logger           *slog.Logger
}

type analyzeMsg struct {
	seq int
}

type snapshotMsg struct {
	seq  int
	text string
	snap model.Snapshot
}

// Model implements the Bubble Tea writing UI.
type Model struct {
	ctx  context.Context
	sess *session.Session
	opts Options
	log  *slog.Logger

	phase  phase
	editor textarea.Model
	reply  textinput.Model
	review viewport.Model

	width  int
	height int

	seq      int
	shown    int
	snap     model.Snapshot
	hasSnap  bool
	analyzed string
	snaps    []model.Snapshot

	prompt *model.Intervention
	notice string
	ended  bool
}

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	draftStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E1E1E")).Background(lipgloss.Color("#FADB14"))
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

var meterColors = map[pattern.Intensity]lipgloss.Color{
	pattern.IntensityCritical: lipgloss.Color("#FF4D4F"),
	pattern.IntensityWarning:  lipgloss.Color("#FA8C16"),
	pattern.IntensityCaution:  lipgloss.Color("#FADB14"),
	pattern.IntensityGood:     lipgloss.Color("#52C41A"),
}

// NewModel constructs the writing TUI for sess.
func NewModel(sess *session.Session, opts Options) *Model {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	opts.BaselineMinChars = max(opts.BaselineMinChars, voice.MinSampleChars)
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	editor := textarea.New()
	editor.CharLimit = 0
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	editor.Focus()

	reply := textinput.New()
	reply.Placeholder = "Your answer"
	reply.CharLimit = 0

	m := &Model{
		ctx:    context.Background(),
		sess:   sess,
		opts:   opts,
		log:    opts.Logger,
		editor: editor,
		reply:  reply,
		review: viewport.New(0, 0),
	}
	if opts.SkipBaseline {
		m.startWriting()
	} else {
		m.editor.Placeholder = "Write freely about anything, without AI help..."
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if m.phase == phaseReview {
			m.renderReview()
		}
		return m, nil
	case analyzeMsg:
		if msg.seq != m.seq || m.phase != phaseWriting {
			return m, nil
		}
		return m, m.analyzeCmd(msg.seq, m.editor.Value())
	case snapshotMsg:
		return m.applySnapshot(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.end()
			return m, tea.Quit
		}
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		switch m.phase {
		case phaseBaseline:
			return m.updateBaseline(msg)
		case phaseWriting:
			return m.updateWriting(msg)
		default:
			return m.updateReview(msg)
		}
	}

	var cmd tea.Cmd
	switch {
	case m.prompt != nil:
		m.reply, cmd = m.reply.Update(msg)
	case m.phase == phaseReview:
		m.review, cmd = m.review.Update(msg)
	default:
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := headerStyle.Render(m.title()) + "\n" + hintStyle.Render(m.hint())
	footer := m.renderFooter()
	if m.notice != "" {
		footer += "\n" + noticeStyle.Render(m.notice)
	}
	bodyHeight := max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer)-2)

	var body string
	switch {
	case m.phase == phaseReview:
		body = m.review.View()
	case m.prompt != nil:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderPrompt())
	default:
		body = m.editor.View()
	}
	return strings.Join([]string{header, "", body, "", footer}, "\n")
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	contentWidth := max(20, int(float64(m.width)*0.80))
	bodyHeight := max(3, m.height-7)
	m.editor.SetWidth(contentWidth)
	m.editor.SetHeight(bodyHeight)
	m.reply.Width = max(10, modalWidth(m.width)-8)
	m.review.Width = m.width
	m.review.Height = bodyHeight
}

func (m *Model) title() string {
	switch m.phase {
	case phaseBaseline:
		return "Baseline"
	case phaseWriting:
		return "Writing"
	default:
		return "Session complete"
	}
}

func (m *Model) hint() string {
	switch m.phase {
	case phaseBaseline:
		return fmt.Sprintf("Write at least %d characters in your own words.  ctrl+s: done  ctrl+n: skip  ctrl+c: quit", m.opts.BaselineMinChars)
	case phaseWriting:
		return "Draft your piece.  ctrl+s: finish  ctrl+c: quit"
	default:
		return "Scroll: up/down/pgup/pgdn  Quit: q"
	}
}

func (m *Model) updateBaseline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		m.completeBaseline()
		return m, nil
	case "ctrl+n":
		m.startWriting()
		m.notice = "Baseline skipped; voice drift is off for this session."
		return m, nil
	}
	return m.edit(msg)
}

func (m *Model) updateWriting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.finish()
		return m, tea.ClearScreen
	}
	return m.edit(msg)
}

func (m *Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)
	return m, cmd
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if _, err := m.sess.Dismiss(m.ctx); err != nil && !errors.Is(err, session.ErrNoActiveIntervention) {
			m.log.Error("dismiss prompt", "err", err)
		}
		return m, m.closePrompt()
	case tea.KeyEnter:
		answer := strings.TrimSpace(m.reply.Value())
		if answer == "" {
			return m, nil
		}
		if _, err := m.sess.Respond(m.ctx, answer); err != nil && !errors.Is(err, session.ErrNoActiveIntervention) {
			m.log.Error("respond to prompt", "err", err)
		}
		m.notice = "Response noted. Keep going."
		return m, m.closePrompt()
	}
	var cmd tea.Cmd
	m.reply, cmd = m.reply.Update(msg)
	return m, cmd
}

// edit forwards a key to the editor, records it, and schedules analysis
// when the draft changed.
func (m *Model) edit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.editor.Value()
	m.sess.RecordKey(msg.String(), msg.Type == tea.KeyBackspace, utf8.RuneCountInString(before))
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.phase != phaseWriting || m.editor.Value() == before {
		return m, cmd
	}
	m.seq++
	seq := m.seq
	tick := tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return analyzeMsg{seq: seq}
	})
	return m, tea.Batch(cmd, tick)
}

func (m *Model) analyzeCmd(seq int, text string) tea.Cmd {
	sess := m.sess
	ctx := m.ctx
	return func() tea.Msg {
		return snapshotMsg{seq: seq, text: text, snap: sess.Analyze(ctx, text)}
	}
}

// applySnapshot shows the newest snapshot. A stale one is not shown, but a
// prompt it raised is still surfaced from the session.
func (m *Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.seq >= m.shown {
		m.shown = msg.seq
		m.snap = msg.snap
		m.hasSnap = true
		m.analyzed = msg.text
		m.snaps = append(m.snaps, msg.snap)
	}
	if m.prompt != nil || m.phase != phaseWriting {
		return m, nil
	}
	if iv := m.sess.Active(); iv != nil {
		return m, m.openPrompt(*iv)
	}
	return m, nil
}

func (m *Model) completeBaseline() {
	text := m.editor.Value()
	if n := utf8.RuneCountInString(text); n < m.opts.BaselineMinChars {
		m.notice = fmt.Sprintf("Baseline needs at least %d characters (%d so far).", m.opts.BaselineMinChars, n)
		return
	}
	if _, err := m.sess.SetBaseline(m.ctx, text); err != nil {
		m.log.Error("set baseline", "err", err)
		m.notice = fmt.Sprintf("Could not capture baseline: %v", err)
		return
	}
	m.startWriting()
	m.notice = "Voice profile captured. Drift is measured against it from here."
}

func (m *Model) startWriting() {
	m.phase = phaseWriting
	m.editor.Reset()
	m.editor.Placeholder = "Start your draft..."
	m.notice = ""
	m.log.Info("phase changed", "phase", m.phase)
}

func (m *Model) openPrompt(iv model.Intervention) tea.Cmd {
	m.prompt = &iv
	m.editor.Blur()
	m.reply.Reset()
	return m.reply.Focus()
}

func (m *Model) closePrompt() tea.Cmd {
	m.prompt = nil
	m.reply.Reset()
	m.reply.Blur()
	return m.editor.Focus()
}

// finish scores the final draft if it changed since the last pass, ends the
// session and shows the review.
func (m *Model) finish() {
	text := m.editor.Value()
	if !m.hasSnap || text != m.analyzed {
		m.seq++
		m.shown = m.seq
		m.snap = m.sess.Analyze(m.ctx, text)
		m.hasSnap = true
		m.analyzed = text
		m.snaps = append(m.snaps, m.snap)
	}
	m.end()
	m.phase = phaseReview
	m.log.Info("phase changed", "phase", m.phase, "final_score", m.snap.CognitiveScore)
	m.editor.Blur()
	m.notice = ""
	m.layout()
	m.renderReview()
}

func (m *Model) end() {
	if m.ended || m.sess == nil {
		return
	}
	m.ended = true
	if err := m.sess.End(m.ctx); err != nil {
		m.log.Error("end session", "err", err)
	}
}

func (m *Model) renderReview() {
	m.review.SetContent(m.reviewContent())
	m.review.GotoTop()
}

func (m *Model) reviewContent() string {
	text := m.analyzed
	now := time.Now()
	detail := model.SessionDetail{
		Session: model.SessionRecord{
			ID:          m.sess.ID(),
			Source:      m.sess.Source(),
			StartedAt:   m.sess.StartedAt(),
			EndedAt:     &now,
			FinalText:   text,
			FinalScore:  m.snap.CognitiveScore,
			HasBaseline: m.sess.Profile() != nil,
		},
		Profile:       m.sess.Profile(),
		Snapshots:     m.snaps,
		Interventions: m.sess.History(),
	}
	var buf bytes.Buffer
	if err := statsPkg.RenderSession(&buf, detail, false); err != nil {
		m.log.Error("render review", "err", err)
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	draft := wrapGlyphs(styleGlyphs(text, pattern.Highlights(text)), width)
	return strings.TrimRight(buf.String(), "\n") + "\n\n" + headerStyle.Render("Draft") + "\n" + draft
}

func (m *Model) renderPrompt() string {
	iv := m.prompt
	body := []string{
		headerStyle.Render("Pause and reflect"),
		"",
		iv.PromptText,
		"",
		m.reply.View(),
		"",
		hintStyle.Render("enter: answer  esc: dismiss"),
	}
	return modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
}

func (m *Model) renderFooter() string {
	switch m.phase {
	case phaseBaseline:
		text := m.editor.Value()
		words := len(textstat.Words(text))
		return footerStyle.Render(fmt.Sprintf("Baseline %d/%d chars · %d words",
			utf8.RuneCountInString(text), m.opts.BaselineMinChars, words))
	case phaseReview:
		return footerStyle.Render(fmt.Sprintf("Final %s", statsPkg.Label(m.snap.CognitiveScore)))
	}
	if !m.hasSnap {
		return footerStyle.Render("Start writing; the meter appears after a pause.")
	}
	snap := m.snap
	if !snap.Scored {
		return footerStyle.Render(fmt.Sprintf("Too short to score (%d/%d chars)", snap.CharCount, pattern.MinChars))
	}
	color := meterColors[pattern.IntensityOf(snap.CognitiveScore)]
	meter := lipgloss.NewStyle().Foreground(color).Bold(true).Render(statsPkg.Label(snap.CognitiveScore))
	segments := []string{meter, fmt.Sprintf("AI %d", snap.AIScore), fmt.Sprintf("%d words", snap.WordCount)}
	if snap.HasBaseline {
		segments = append(segments, fmt.Sprintf("Drift %.0f%%", snap.VoiceDrift*100))
	}
	if insight := keystroke.Insight(snap.Keystrokes); insight != "" {
		segments = append(segments, insight)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func modalWidth(width int) int {
	return max(40, min(width-4, 72))
}
