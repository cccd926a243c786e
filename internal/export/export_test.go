package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"gopkg.in/yaml.v3"
)

func sampleDetail() model.SessionDetail {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return model.SessionDetail{
		Session: model.SessionRecord{ID: "s1", Source: "tui", StartedAt: start, FinalText: "My own words.", FinalScore: 65},
		Snapshots: []model.Snapshot{
			{SessionID: "s1", At: start.Add(time.Minute), Scored: true, AIScore: 35, CognitiveScore: 65,
				Breakdown: model.Breakdown{Ideation: 30, Patterns: []string{"hedge: moreover"}}},
		},
		Interventions: []model.Intervention{
			{ID: "iv1", Category: model.CategoryMedium, TriggerScore: 45, PromptText: "What questions does this raise for you?", Dismissed: true, Response: "Plenty."},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleDetail(), "json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got model.SessionDetail
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Snapshots) != 1 || got.Snapshots[0].Breakdown.Patterns[0] != "hedge: moreover" {
		t.Fatalf("unexpected decoded detail: %+v", got)
	}
	if !strings.Contains(buf.String(), `"promptText": "What questions does this raise for you?"`) {
		t.Fatalf("expected camelCase prompt field:\n%s", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleDetail(), "yaml"); err != nil {
		t.Fatalf("write: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ivs, ok := raw["interventions"].([]any)
	if !ok || len(ivs) != 1 {
		t.Fatalf("unexpected interventions: %v", raw["interventions"])
	}
	first := ivs[0].(map[string]any)
	if first["response"] != "Plenty." || first["category"] != model.CategoryMedium {
		t.Fatalf("unexpected intervention: %v", first)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleDetail(), "text"); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"--- 2026-01-01T09:00:00Z ---",
		"My own words.",
		"Feedback: 65 - Good Independence.",
		"Response: Plenty.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, sampleDetail(), "xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
