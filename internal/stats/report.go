package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rossmatican/thoughtleaderai/internal/keystroke"
	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/pattern"
)

// SessionLister loads session aggregates.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Curve    []float64
}

// BuildReport loads sessions and smooths their final scores.
func BuildReport(ctx context.Context, st SessionLister, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	finals := make([]float64, len(sessions))
	for i, s := range sessions {
		finals[i] = float64(s.FinalScore)
	}
	return Report{Sessions: sessions, Curve: MovingAverage(finals, cfg.CurveWindow)}, nil
}

// RenderSummary prints totals across sessions.
func RenderSummary(w io.Writer, report Report, useColor bool) error {
	sessions := report.Sessions
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalFinal float64
	best := 0
	prompts := 0
	for _, s := range sessions {
		totalFinal += float64(s.FinalScore)
		best = max(best, s.FinalScore)
		prompts += s.InterventionCount
	}
	avg := int(totalFinal/float64(len(sessions)) + 0.5)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Avg final score: %s", ColorScore(fmt.Sprintf("%d", avg), avg, useColor)),
		fmt.Sprintf("Best final score: %s", ColorScore(fmt.Sprintf("%d", best), best, useColor)),
		fmt.Sprintf("Prompts raised: %d", prompts),
		fmt.Sprintf("Trend: %s", Sparkline(report.Curve)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints one row per session.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		return nil
	}
	headers := []string{"Session", "Started", "Source", "Snapshots", "Prompts", "Avg", "Final", "Reading"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		id := s.SessionID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Source,
			fmt.Sprintf("%d", s.SnapshotCount),
			fmt.Sprintf("%d", s.InterventionCount),
			fmt.Sprintf("%.0f", s.AvgCognitive),
			fmt.Sprintf("%d", s.FinalScore),
			Interpret(s.FinalScore).Title,
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSession prints the dashboard for one session.
func RenderSession(w io.Writer, detail model.SessionDetail, useColor bool) error {
	rec := detail.Session
	ended := rec.StartedAt
	if rec.EndedAt != nil {
		ended = *rec.EndedAt
	} else if n := len(detail.Snapshots); n > 0 {
		ended = detail.Snapshots[n-1].At
	}
	m := SessionMetrics(rec.FinalText, rec.StartedAt, ended, detail.Interventions)
	reading := Interpret(rec.FinalScore)
	trend := Trends(detail.Snapshots)

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s)\n", rec.ID, rec.Source)
	fmt.Fprintf(&b, "Started: %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Final score: %s  %s\n", ColorScore(fmt.Sprintf("%d", rec.FinalScore), rec.FinalScore, useColor), reading.Title)
	fmt.Fprintf(&b, "%s\n\n", reading.Description)

	fmt.Fprintf(&b, "Duration: %d minutes\n", m.DurationMinutes)
	fmt.Fprintf(&b, "Words: %d\n", m.WordCount)
	fmt.Fprintf(&b, "Sentences: %d\n", m.SentenceCount)
	fmt.Fprintf(&b, "Avg words per sentence: %d\n", m.AvgWordsPerSentence)
	fmt.Fprintf(&b, "Prompts: %d (%d answered)\n", m.Interventions, m.Responded)
	if first, ok := firstScored(detail.Snapshots); ok {
		fmt.Fprintf(&b, "Improvement: %+d\n", ImprovementScore(first.CognitiveScore, rec.FinalScore))
	}
	if detail.Profile != nil {
		fmt.Fprintf(&b, "Baseline: %.1f words/sentence, %.2f chars/word\n",
			detail.Profile.Characteristics.AvgSentenceLength, detail.Profile.Characteristics.VocabularyComplexity)
	}
	b.WriteString("\n")

	if len(trend.Cognitive) > 0 {
		fmt.Fprintf(&b, "Cognitive: %s\n", Sparkline(trend.Cognitive))
		fmt.Fprintf(&b, "AI score:  %s\n", Sparkline(trend.AIScore))
	}
	if len(trend.WordsPerMinute) > 0 {
		fmt.Fprintf(&b, "Velocity:  %s\n", Sparkline(trend.WordsPerMinute))
	}
	if n := len(detail.Snapshots); n > 0 {
		last := detail.Snapshots[n-1]
		if insight := keystroke.Insight(last.Keystrokes); insight != "" {
			fmt.Fprintf(&b, "Typing: %s\n", insight)
		}
		if len(last.Breakdown.Patterns) > 0 {
			fmt.Fprintf(&b, "Patterns: %s\n", strings.Join(last.Breakdown.Patterns, "; "))
		}
	}

	if len(detail.Interventions) > 0 {
		b.WriteString("\nPrompts\n")
		for _, iv := range detail.Interventions {
			status := "dismissed"
			if iv.Response != "" {
				status = "answered: " + iv.Response
			} else if !iv.Dismissed {
				status = "open"
			}
			fmt.Fprintf(&b, "- [%s %d] %s (%s)\n", iv.Category, iv.TriggerScore, iv.PromptText, status)
		}
	}

	b.WriteString("\nTips\n")
	for _, tip := range Tips(rec.FinalScore, len(detail.Interventions)) {
		fmt.Fprintf(&b, "- %s\n", tip)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func firstScored(snaps []model.Snapshot) (model.Snapshot, bool) {
	for _, s := range snaps {
		if s.Scored {
			return s, true
		}
	}
	return model.Snapshot{}, false
}

// Label is the meter wording for a cognitive score.
func Label(cognitive int) string {
	return fmt.Sprintf("%d%% %s", cognitive, pattern.Label(cognitive))
}
