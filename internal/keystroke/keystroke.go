// Package keystroke characterizes typing cadence from raw key events.
package keystroke

import (
	"math"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

const (
	// MinEvents is the smallest buffer that is analyzed.
	MinEvents = 10
	// Window is the number of most recent events analyzed.
	Window = 50
	// PauseCutoffMs excludes long gaps from the pause statistics.
	PauseCutoffMs = 2000
)

// Analyze summarizes the most recent events. Fewer than MinEvents events
// yields the zero value.
func Analyze(events []model.KeystrokeEvent) model.KeystrokeStats {
	if len(events) < MinEvents {
		return model.KeystrokeStats{}
	}
	if len(events) > Window {
		events = events[len(events)-Window:]
	}

	pauses := make([]float64, 0, len(events))
	backspaces := 0
	for _, ev := range events {
		if ev.IsBackspace {
			backspaces++
		}
		if ev.TimeDelta < 0 || ev.TimeDelta >= PauseCutoffMs {
			continue
		}
		pauses = append(pauses, float64(ev.TimeDelta))
	}

	stats := model.KeystrokeStats{
		BackspaceRatio: round2(float64(backspaces) / float64(len(events))),
		SampleSize:     len(events),
	}
	if len(pauses) == 0 {
		return stats
	}

	var sum float64
	for _, p := range pauses {
		sum += p
	}
	mean := sum / float64(len(pauses))
	stats.AvgPauseTime = int(math.Round(mean))
	if mean == 0 {
		return stats
	}

	var variance float64
	for _, p := range pauses {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(pauses))
	stats.Burstiness = round2(math.Sqrt(variance) / mean)
	return stats
}

// Insight returns a short note on typing rhythm, or "" when nothing stands out.
func Insight(stats model.KeystrokeStats) string {
	if stats.SampleSize == 0 {
		return ""
	}
	switch {
	case stats.AvgPauseTime < 100:
		return "Very fast typing - consider slowing down to think"
	case stats.AvgPauseTime > 500:
		return "Thoughtful pauses detected - good sign!"
	case stats.BackspaceRatio > 0.15:
		return "High revision rate - shows careful editing"
	case stats.BackspaceRatio < 0.05:
		return "Low revision rate - might indicate copy-paste"
	case stats.Burstiness > 2:
		return "Irregular typing pattern - natural variation"
	default:
		return ""
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
