// Package stats contains session calculations and reporting.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/textstat"
)

const sparkChars = " .:-=+*#%@"

// Metrics summarizes one finished draft.
type Metrics struct {
	Duration            time.Duration
	DurationMinutes     int
	WordCount           int
	SentenceCount       int
	AvgWordsPerSentence int
	Interventions       int
	Responded           int
}

// SessionMetrics computes draft metrics from the final text and history.
func SessionMetrics(text string, startedAt, endedAt time.Time, interventions []model.Intervention) Metrics {
	sample := textstat.NewSample(text)
	m := Metrics{
		WordCount:     sample.WordCount,
		SentenceCount: sample.SentenceCount,
		Interventions: len(interventions),
	}
	if endedAt.After(startedAt) {
		m.Duration = endedAt.Sub(startedAt)
		m.DurationMinutes = int(math.Round(m.Duration.Minutes()))
	}
	if sample.SentenceCount > 0 {
		m.AvgWordsPerSentence = int(math.Round(float64(sample.WordCount) / float64(sample.SentenceCount)))
	}
	for _, iv := range interventions {
		if iv.Response != "" {
			m.Responded++
		}
	}
	return m
}

// Interpretation is a headline reading of a cognitive score.
type Interpretation struct {
	Title       string
	Description string
}

// Interpret describes a final cognitive score.
func Interpret(score int) Interpretation {
	switch {
	case score >= 80:
		return Interpretation{"Excellent Independence", "Strong original thinking with minimal AI patterns detected."}
	case score >= 60:
		return Interpretation{"Good Independence", "Mostly original content with some AI influence."}
	case score >= 40:
		return Interpretation{"Mixed Patterns", "Combination of original and AI-influenced content."}
	default:
		return Interpretation{"High AI Dependency", "Significant AI patterns detected. Consider more personal insights."}
	}
}

// Tips returns writing suggestions for a final score.
func Tips(score, interventions int) []string {
	var tips []string
	switch {
	case score < 50:
		tips = append(tips,
			"Try starting with personal experiences before researching",
			"Use specific examples rather than general statements",
			"Avoid hedge words like 'it's important to note'",
		)
	case score < 70:
		tips = append(tips,
			"Great progress! Add more personal perspective",
			"Consider varying your sentence structure",
		)
	default:
		tips = append(tips,
			"Excellent cognitive independence!",
			"You maintained your authentic voice well",
		)
	}
	if interventions > 3 {
		tips = append(tips, "Consider slowing down to reflect more between ideas")
	}
	return tips
}

// ImprovementScore is the change in cognitive score, clamped to [-50,50].
func ImprovementScore(baseline, current int) int {
	d := current - baseline
	if d < -50 {
		return -50
	}
	if d > 50 {
		return 50
	}
	return d
}

// Trend holds per-snapshot series for one session.
type Trend struct {
	Cognitive      []float64
	AIScore        []float64
	WordsPerMinute []float64
	AvgWordCount   float64
}

// Trends derives score and velocity series from time-ordered snapshots.
// Unscored snapshots are skipped in the score series.
func Trends(snaps []model.Snapshot) Trend {
	var t Trend
	if len(snaps) == 0 {
		return t
	}
	var words int
	for i, s := range snaps {
		words += s.WordCount
		if s.Scored {
			t.Cognitive = append(t.Cognitive, float64(s.CognitiveScore))
			t.AIScore = append(t.AIScore, float64(s.AIScore))
		}
		if i == 0 {
			continue
		}
		prev := snaps[i-1]
		elapsed := s.At.Sub(prev.At)
		wpm := 0.0
		if elapsed > 0 {
			wpm = float64(s.WordCount-prev.WordCount) / elapsed.Minutes()
		}
		t.WordsPerMinute = append(t.WordsPerMinute, math.Max(0, wpm))
	}
	t.AvgWordCount = float64(words) / float64(len(snaps))
	return t
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
