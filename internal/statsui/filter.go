package statsui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

const (
	fieldSince = iota
	fieldLast
	fieldWindow
	fieldCount
)

// filterForm edits the report filter in place of the body.
type filterForm struct {
	active bool
	fields [fieldCount]textinput.Model
	focus  int
	err    string
}

func newFilterForm() filterForm {
	var f filterForm
	labels := [fieldCount]string{"Since (YYYY-MM-DD) ", "Last N sessions    ", "Curve window       "}
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = label
		in.CharLimit = 10
		in.Cursor.SetMode(cursor.CursorBlink)
		f.fields[i] = in
	}
	return f
}

// open fills the fields from cfg and focuses the first one.
func (f *filterForm) open(cfg model.StatsConfig) tea.Cmd {
	since, last := "", ""
	if cfg.Since != nil {
		since = cfg.Since.Format("2006-01-02")
	}
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	f.fields[fieldSince].SetValue(since)
	f.fields[fieldLast].SetValue(last)
	f.fields[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	f.active = true
	f.err = ""
	return f.focusField(fieldSince)
}

func (f *filterForm) close() {
	f.active = false
	f.err = ""
}

func (f *filterForm) focusField(idx int) tea.Cmd {
	f.focus = (idx + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range f.fields {
		if i == f.focus {
			cmd = f.fields[i].Focus()
			continue
		}
		f.fields[i].Blur()
	}
	return cmd
}

func (f *filterForm) setWidth(width int) {
	for i := range f.fields {
		f.fields[i].Width = max(10, width-lipgloss.Width(f.fields[i].Prompt)-2)
	}
}

// update handles a key while the form is open. It returns the parsed
// config and true once the form was submitted successfully.
func (f *filterForm) update(msg tea.KeyMsg) (model.StatsConfig, bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		f.close()
		return model.StatsConfig{}, false, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(
			f.fields[fieldSince].Value(),
			f.fields[fieldLast].Value(),
			f.fields[fieldWindow].Value(),
		)
		if err != nil {
			f.err = err.Error()
			return model.StatsConfig{}, false, nil
		}
		f.close()
		return cfg, true, nil
	case tea.KeyTab, tea.KeyDown:
		return model.StatsConfig{}, false, f.focusField(f.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return model.StatsConfig{}, false, f.focusField(f.focus - 1)
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return model.StatsConfig{}, false, cmd
}

func (f *filterForm) view() string {
	lines := make([]string, 0, fieldCount+3)
	lines = append(lines, titleStyle.Render("Filter"), "")
	for _, in := range f.fields {
		lines = append(lines, in.View())
	}
	if f.err != "" {
		lines = append(lines, "", errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

// parseFilter validates the form values. Empty fields keep their zero value.
func parseFilter(sinceInput, lastInput, windowInput string) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	if s := strings.TrimSpace(sinceInput); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("since must be a date like 2024-05-01")
		}
		cfg.Since = &parsed
	}
	if s := strings.TrimSpace(lastInput); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("last must be 0 or a positive number")
		}
		cfg.Last = n
	}
	if s := strings.TrimSpace(windowInput); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("curve window must be a number >= 1")
		}
		cfg.CurveWindow = n
	}
	return cfg, nil
}

// nextCurveWindow and prevCurveWindow step the smoothing window in fives.
func nextCurveWindow(n int) int {
	return max(5, (n/5+1)*5)
}

func prevCurveWindow(n int) int {
	switch {
	case n <= 5:
		return 1
	case n%5 == 0:
		return n - 5
	default:
		return n - n%5
	}
}
