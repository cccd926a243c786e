// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/pattern"
	"github.com/rossmatican/thoughtleaderai/internal/stats"
)

const (
	tabOverview = iota
	tabSessions
	tabDetail
)

var tabNames = []string{"Overview", "Sessions", "Detail"}

// headerLines is the tab bar plus the filter summary.
const headerLines = 2

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#F5C542"))
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A7A7A"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	boxStyle         = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#3F3F3F")).
				Padding(0, 2)
)

var intensityColors = map[pattern.Intensity]lipgloss.Color{
	pattern.IntensityCritical: lipgloss.Color("#FF4D4F"),
	pattern.IntensityWarning:  lipgloss.Color("#FA8C16"),
	pattern.IntensityCaution:  lipgloss.Color("#FADB14"),
	pattern.IntensityGood:     lipgloss.Color("#52C41A"),
}

// Source loads what the browser shows.
type Source interface {
	stats.SessionLister
	Detail(ctx context.Context, id string) (model.SessionDetail, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	src Source
	cfg model.StatsConfig

	report  stats.Report
	loadErr string

	tab      int
	overview viewport.Model
	detail   viewport.Model
	sessions table.Model
	detailID string

	filter filterForm
	help   help.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(src Source, cfg model.StatsConfig) *Model {
	m := &Model{
		src:      src,
		cfg:      cfg,
		overview: viewport.New(0, 0),
		detail:   viewport.New(0, 0),
		sessions: newSessionTable(),
		filter:   newFilterForm(),
		help:     help.New(),
	}
	m.load()
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
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.fillViews()
		return m, nil
	case tea.KeyMsg:
		if m.filter.active {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	cfg, applied, cmd := m.filter.update(msg)
	if applied {
		m.cfg = cfg
		m.load()
	}
	m.resize()
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Prev):
		m.switchTab(m.tab - 1)
		return m, tea.ClearScreen
	case key.Matches(msg, keys.Next):
		m.switchTab(m.tab + 1)
		return m, tea.ClearScreen
	case key.Matches(msg, keys.Filter):
		cmd := m.filter.open(m.cfg)
		m.resize()
		return m, cmd
	case key.Matches(msg, keys.Wider):
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.load()
		return m, nil
	case key.Matches(msg, keys.Narrower):
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.load()
		return m, nil
	}

	if m.tab == tabSessions {
		switch {
		case key.Matches(msg, keys.Open):
			m.openSelected()
			return m, tea.ClearScreen
		case key.Matches(msg, keys.Top):
			m.sessions.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.sessions.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.sessions, cmd = m.sessions.Update(msg)
		return m, cmd
	}

	vp := m.activeViewport()
	switch {
	case key.Matches(msg, keys.Top):
		vp.GotoTop()
		return m, nil
	case key.Matches(msg, keys.Bottom):
		vp.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	footer := m.footer()
	bodyHeight := m.bodyHeight()
	parts := []string{
		frame(m.tabBar()+"\n"+m.filterSummary(), m.width, headerLines),
		frame(m.body(), m.width, bodyHeight),
		frame(footer, m.width, lipgloss.Height(footer)),
	}
	return strings.Join(parts, "\n")
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-headerLines-lipgloss.Height(m.footer()))
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight()
	for _, vp := range []*viewport.Model{&m.overview, &m.detail} {
		vp.Width = m.width
		vp.Height = h
	}
	m.sessions.SetWidth(m.width)
	m.sessions.SetHeight(max(1, h-1))
	m.filter.setWidth(m.width)
	m.help.Width = m.width
}

func (m *Model) switchTab(idx int) {
	m.tab = (idx + len(tabNames)) % len(tabNames)
	if m.tab == tabSessions {
		m.sessions.Focus()
		return
	}
	m.sessions.Blur()
}

func (m *Model) activeViewport() *viewport.Model {
	if m.tab == tabDetail {
		return &m.detail
	}
	return &m.overview
}

// load re-queries the store with the current filter.
func (m *Model) load() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.loadErr = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.loadErr = ""
	m.report = report
	m.sessions.SetRows(sessionRows(report.Sessions))
	m.resize()
	m.fillViews()
}

func (m *Model) fillViews() {
	if m.loadErr != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, width))
	m.detail.SetContent(m.renderDetail())
}

// openSelected loads the highlighted session into the detail tab.
func (m *Model) openSelected() {
	idx := m.sessions.Cursor()
	if idx < 0 || idx >= len(m.report.Sessions) {
		return
	}
	m.detailID = m.report.Sessions[idx].SessionID
	m.switchTab(tabDetail)
	m.detail.SetContent(m.renderDetail())
	m.detail.GotoTop()
}

func (m *Model) renderDetail() string {
	if m.detailID == "" {
		return mutedStyle.Render("Pick a session on the Sessions tab and press enter.")
	}
	detail, err := m.src.Detail(context.Background(), m.detailID)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load session %s: %v", m.detailID, err))
	}
	var buf bytes.Buffer
	if err := stats.RenderSession(&buf, detail, false); err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to render session: %v", err))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) tabBar() string {
	names := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == m.tab {
			names[i] = tabActiveStyle.Render(name)
		} else {
			names[i] = tabInactiveStyle.Render(name)
		}
	}
	return strings.Join(names, mutedStyle.Render("  │  "))
}

func (m *Model) filterSummary() string {
	since, last := "any", "all"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	line := fmt.Sprintf("since=%s  last=%s  window=%d  (%d sessions)", since, last, m.cfg.CurveWindow, len(m.report.Sessions))
	return mutedStyle.Render(clip(line, m.width))
}

func (m *Model) body() string {
	switch {
	case m.filter.active:
		return m.filter.view()
	case m.tab == tabSessions && len(m.report.Sessions) == 0:
		return mutedStyle.Render("No sessions found.")
	case m.tab == tabSessions:
		return m.sessions.View()
	default:
		return m.activeViewport().View()
	}
}

func (m *Model) footer() string {
	if m.filter.active {
		return m.help.ShortHelpView(filterKeys)
	}
	view := m.help.View(tabHelp{tab: m.tab})
	if m.loadErr != "" {
		view += "\n" + errorStyle.Render(clip(m.loadErr, m.width))
	}
	return view
}

func renderOverview(report stats.Report, width int) string {
	sessions := report.Sessions
	if len(sessions) == 0 {
		return mutedStyle.Render("No sessions found.")
	}
	var sumFinal, sumLive float64
	best, prompts := 0, 0
	for _, s := range sessions {
		sumFinal += float64(s.FinalScore)
		sumLive += s.AvgCognitive
		best = max(best, s.FinalScore)
		prompts += s.InterventionCount
	}
	n := float64(len(sessions))
	boxes := []string{
		statBox("Sessions", fmt.Sprintf("%d", len(sessions))),
		scoreBox("Avg final", int(sumFinal/n+0.5)),
		scoreBox("Best final", best),
		statBox("Avg while writing", fmt.Sprintf("%.0f", sumLive/n)),
		statBox("Prompts", fmt.Sprintf("%d", prompts)),
	}
	var grid string
	if width < 80 {
		grid = lipgloss.JoinVertical(lipgloss.Left, boxes...)
	} else {
		grid = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, boxes[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, boxes[3:]...),
		)
	}
	trend := mutedStyle.Render("Final score, moving average") + "\n" + stats.Sparkline(report.Curve)
	return grid + "\n\n" + trend
}

func statBox(label, value string) string {
	return boxStyle.Render(mutedStyle.Render(label) + "\n" + titleStyle.Render(value))
}

func scoreBox(label string, score int) string {
	value := titleStyle.Foreground(intensityColors[pattern.IntensityOf(score)]).Render(stats.Label(score))
	return boxStyle.Render(mutedStyle.Render(label) + "\n" + value)
}

func newSessionTable() table.Model {
	t := table.New(table.WithColumns([]table.Column{
		{Title: "Session", Width: 10},
		{Title: "Started", Width: 17},
		{Title: "Source", Width: 8},
		{Title: "Snaps", Width: 6},
		{Title: "Prompts", Width: 7},
		{Title: "Final", Width: 6},
		{Title: "Reading", Width: 20},
	}))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("#3F3F3F")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#111111")).
		Background(lipgloss.Color("#F5C542"))
	t.SetStyles(styles)
	return t
}

func sessionRows(sessions []model.SessionAggregate) []table.Row {
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		id := s.SessionID
		if len(id) > 8 {
			id = id[:8]
		}
		rows[i] = table.Row{
			id,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Source,
			fmt.Sprintf("%d", s.SnapshotCount),
			fmt.Sprintf("%d", s.InterventionCount),
			fmt.Sprintf("%d", s.FinalScore),
			stats.Interpret(s.FinalScore).Title,
		}
	}
	return rows
}
