package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	details  map[string]model.SessionDetail
}

func (f *fakeSource) ListSessions(_ context.Context, _ model.StatsConfig) ([]model.SessionAggregate, error) {
	return f.sessions, nil
}

func (f *fakeSource) Detail(_ context.Context, id string) (model.SessionDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return model.SessionDetail{}, errors.New("not found")
	}
	return d, nil
}

func newFakeSource() *fakeSource {
	started := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: "aaaaaaaa-1", Source: "tui", StartedAt: started, FinalScore: 45, SnapshotCount: 3, InterventionCount: 1, AvgCognitive: 50},
			{SessionID: "bbbbbbbb-2", Source: "watch", StartedAt: started.Add(time.Hour), FinalScore: 85, SnapshotCount: 5, AvgCognitive: 80},
		},
		details: map[string]model.SessionDetail{
			"aaaaaaaa-1": {Session: model.SessionRecord{ID: "aaaaaaaa-1", Source: "tui", StartedAt: started, FinalScore: 45, FinalText: "One two three."}},
		},
	}
}

func sized(m *Model) *Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(*Model)
}

func TestViewShowsOverview(t *testing.T) {
	m := sized(NewModel(newFakeSource(), model.StatsConfig{CurveWindow: 2}))
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Avg final", "65% Mixed", "window=2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestOpenSelectedSession(t *testing.T) {
	m := sized(NewModel(newFakeSource(), model.StatsConfig{}))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(*Model)
	if m.tab != tabSessions {
		t.Fatalf("expected the sessions tab, got %d", m.tab)
	}
	if !strings.Contains(m.View(), "aaaaaaaa") {
		t.Fatalf("expected the session table in view")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)
	if m.tab != tabDetail || m.detailID != "aaaaaaaa-1" {
		t.Fatalf("expected the first session opened, got tab %d id %q", m.tab, m.detailID)
	}
	if !strings.Contains(m.View(), "Session aaaaaaaa-1 (tui)") {
		t.Fatalf("expected the session dashboard in view:\n%s", m.View())
	}
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter("2024-05-01", "3", "4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2024-05-01" || cfg.Last != 3 || cfg.CurveWindow != 4 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := parseFilter("May 1", "", ""); err == nil {
		t.Fatalf("expected bad date error")
	}
	if _, err := parseFilter("", "-1", ""); err == nil {
		t.Fatalf("expected bad last error")
	}
	if _, err := parseFilter("", "", "0"); err == nil {
		t.Fatalf("expected bad window error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, c := range cases {
		if got := nextCurveWindow(c.in); got != c.next {
			t.Fatalf("next(%d) = %d, want %d", c.in, got, c.next)
		}
		if got := prevCurveWindow(c.in); got != c.prev {
			t.Fatalf("prev(%d) = %d, want %d", c.in, got, c.prev)
		}
	}
}

func TestFilterFormAppliesLast(t *testing.T) {
	m := sized(NewModel(newFakeSource(), model.StatsConfig{CurveWindow: 5}))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = next.(*Model)
	if !m.filter.active {
		t.Fatalf("expected the filter form to open")
	}
	if !strings.Contains(m.View(), "Curve window") {
		t.Fatalf("expected the form in view:\n%s", m.View())
	}
	m.filter.fields[fieldLast].SetValue("1")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)
	if m.filter.active {
		t.Fatalf("expected the form to close on apply")
	}
	if m.cfg.Last != 1 || len(m.report.Sessions) != 1 {
		t.Fatalf("expected one session after filtering, got last=%d sessions=%d", m.cfg.Last, len(m.report.Sessions))
	}
	if m.report.Sessions[0].SessionID != "bbbbbbbb-2" {
		t.Fatalf("expected the newest session, got %s", m.report.Sessions[0].SessionID)
	}
}

func TestFilterFormRejectsBadInput(t *testing.T) {
	m := sized(NewModel(newFakeSource(), model.StatsConfig{CurveWindow: 5}))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = next.(*Model)
	m.filter.fields[fieldWindow].SetValue("zero")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)
	if !m.filter.active || m.filter.err == "" {
		t.Fatalf("expected the form to stay open with an error")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(*Model)
	if m.filter.active || m.cfg.CurveWindow != 5 {
		t.Fatalf("expected esc to discard the edit, got active=%v window=%d", m.filter.active, m.cfg.CurveWindow)
	}
}
