package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/rossmatican/thoughtleaderai/internal/config"
	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/pattern"
)

const heavyDraft = "Furthermore, it's important to note that we must leverage synergy. " +
	"Moreover, it's worth noting that stakeholders expect a paradigm shift. " +
	"Additionally, this demonstrates a robust and holistic approach going forward."

const plainSample = "I walked to the bakery before work and the line was out the door again. " +
	"My neighbor swears the rye is worth it, but honestly I only go for the coffee. " +
	"Last week the owner remembered my name, which made the whole morning better. " +
	"Small things like that keep me coming back."

func TestScoreCommandJSON(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(heavyDraft))
	root.SetArgs([]string{"score", "--json", "-"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var got scoreOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if !got.Scored {
		t.Fatalf("expected scored result")
	}
	if got.AIScore == 0 {
		t.Fatalf("expected non-zero ai score")
	}
	if got.CognitiveScore != pattern.CognitiveScore(got.AIScore) {
		t.Fatalf("cognitive %d does not mirror ai %d", got.CognitiveScore, got.AIScore)
	}
	if len(got.Highlights) == 0 {
		t.Fatalf("expected highlighted phrases")
	}
	if got.VoiceDrift != nil {
		t.Fatalf("expected no drift without baseline")
	}
}

func TestScoreTextShortDraft(t *testing.T) {
	out, err := scoreText("Too short.", "")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if out.Scored || out.CognitiveScore != 100 {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.Matches == nil {
		t.Fatalf("matches should encode as an empty list")
	}
	var buf bytes.Buffer
	if err := renderScore(&buf, out, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Too short to score") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestScoreTextWithBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte(plainSample), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	out, err := scoreText(plainSample, path)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if out.VoiceDrift == nil || *out.VoiceDrift != 0 {
		t.Fatalf("expected zero self drift, got %v", out.VoiceDrift)
	}
	var buf bytes.Buffer
	if err := renderScore(&buf, out, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Voice drift:     0%") {
		t.Fatalf("missing drift line in %q", buf.String())
	}
}

func TestBaselineCommandRejectsShortSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.txt")
	if err := os.WriteFile(path, []byte("Only a few words."), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"baseline", path})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "sample too short") {
		t.Fatalf("expected short sample error, got %v", err)
	}
}

func TestBaselineCommandPrintsProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.md")
	if err := os.WriteFile(path, []byte(plainSample), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"baseline", "--json", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var c model.VoiceCharacteristics
	if err := json.Unmarshal(out.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.AvgSentenceLength <= 0 || c.VocabularyComplexity <= 0 {
		t.Fatalf("unexpected profile %+v", c)
	}
}

func TestParseStatsConfig(t *testing.T) {
	cfg, err := parseStatsConfig("2024-03-01", 3, 5)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Year() != 2024 || cfg.Since.Month() != time.March {
		t.Fatalf("unexpected since %v", cfg.Since)
	}
	if cfg.Last != 3 || cfg.CurveWindow != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if _, err := parseStatsConfig("03/01/2024", 0, 5); err == nil {
		t.Fatalf("expected date error")
	}
	if _, err := parseStatsConfig("", -1, 5); err == nil {
		t.Fatalf("expected --last error")
	}
	if _, err := parseStatsConfig("", 0, 0); err == nil {
		t.Fatalf("expected --curve-window error")
	}
}

func TestValidateConfig(t *testing.T) {
	good := model.Config{BaselineMinChars: 200, AnalyzeEvery: 10, Debounce: time.Second}
	if err := validateConfig(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := good
	bad.BaselineMinChars = 50
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected baseline error")
	}
	bad = good
	bad.AnalyzeEvery = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected analyze-every error")
	}
	bad = good
	bad.Debounce = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected debounce error")
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var (
		addr     string
		cooldown time.Duration
		origins  []string
	)
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().StringVar(&addr, "addr", "default", "")
	cmd.Flags().DurationVar(&cooldown, "cooldown", time.Second, "")
	cmd.Flags().StringSliceVar(&origins, "cors", nil, "")
	if err := cmd.Flags().Parse([]string{"--addr", "flag"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	fileAddr := "file"
	applyStringConfig(cmd, "addr", &addr, &fileAddr)
	if addr != "flag" {
		t.Fatalf("flag should win, got %q", addr)
	}
	applyDurationConfig(cmd, "cooldown", &cooldown, &config.Duration{Duration: 45 * time.Second})
	if cooldown != 45*time.Second {
		t.Fatalf("config should fill unchanged flag, got %v", cooldown)
	}
	applyDurationConfig(cmd, "cooldown", &cooldown, nil)
	if cooldown != 45*time.Second {
		t.Fatalf("nil config value should be ignored, got %v", cooldown)
	}
	applyStringSliceConfig(cmd, "cors", &origins, []string{"http://localhost:3000"})
	if len(origins) != 1 || origins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins %v", origins)
	}
}

func TestWriteConfigTemplateKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != config.Template {
		t.Fatalf("template mismatch")
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}

	if err := os.WriteFile(path, []byte("[engine]\ncooldown = \"10s\"\n"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := writeConfigTemplate(path); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "10s") {
		t.Fatalf("existing config was replaced")
	}
}
