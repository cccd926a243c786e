// Package model defines shared data structures.
package model

import "time"

// Intervention categories, chosen by cognitive score band.
const (
	CategoryHigh   = "high_dependency"
	CategoryMedium = "medium_dependency"
	CategoryLow    = "low_dependency"
)

// KeystrokeEvent is a single key press captured by the editing surface.
// Timestamp and TimeDelta are milliseconds from the session clock.
type KeystrokeEvent struct {
	Key           string `json:"key" yaml:"key"`
	Timestamp     int64  `json:"timestamp" yaml:"timestamp"`
	TimeDelta     int64  `json:"timeDelta" yaml:"time_delta"`
	IsBackspace   bool   `json:"isBackspace" yaml:"is_backspace"`
	ContentLength int    `json:"contentLength" yaml:"content_length"`
}

// KeystrokeStats summarizes typing cadence over a keystroke buffer.
type KeystrokeStats struct {
	AvgPauseTime   int     `json:"avgPauseTime" yaml:"avg_pause_time"`
	BackspaceRatio float64 `json:"backspaceRatio" yaml:"backspace_ratio"`
	Burstiness     float64 `json:"burstiness" yaml:"burstiness"`
	SampleSize     int     `json:"sampleSize" yaml:"sample_size"`
}

// VoiceCharacteristics is a stylistic fingerprint of a text.
type VoiceCharacteristics struct {
	AvgSentenceLength    float64  `json:"avgSentenceLength" yaml:"avg_sentence_length"`
	VocabularyComplexity float64  `json:"vocabularyComplexity" yaml:"vocabulary_complexity"`
	PunctuationMarks     []string `json:"punctuationMarks" yaml:"punctuation_marks"`
	CommonBigrams        []string `json:"commonBigrams" yaml:"common_bigrams"`
}

// VoiceProfile is the baseline fingerprint captured once per session.
type VoiceProfile struct {
	SampleText      string               `json:"sampleText" yaml:"sample_text"`
	CreatedAt       time.Time            `json:"createdAt" yaml:"created_at"`
	Characteristics VoiceCharacteristics `json:"characteristics" yaml:"characteristics"`
}

// Intervention is a reflective prompt raised by the scheduler.
type Intervention struct {
	ID                     string  `json:"id" yaml:"id"`
	TriggeredAt            int64   `json:"triggeredAt" yaml:"triggered_at"`
	Category               string  `json:"category" yaml:"category"`
	PromptText             string  `json:"promptText" yaml:"prompt_text"`
	TriggerScore           int     `json:"triggerScore" yaml:"trigger_score"`
	ContentLengthAtTrigger int     `json:"contentLengthAtTrigger" yaml:"content_length_at_trigger"`
	VoiceDrift             float64 `json:"voiceDrift" yaml:"voice_drift"`
	Dismissed              bool    `json:"dismissed" yaml:"dismissed"`
	Response               string  `json:"response,omitempty" yaml:"response,omitempty"`
	ResolvedAt             int64   `json:"resolvedAt,omitempty" yaml:"resolved_at,omitempty"`
}

// SchedulerState is the per-session trigger state owned by the caller.
type SchedulerState struct {
	LastInterventionScore int            `json:"lastInterventionScore"`
	LastInterventionAt    int64          `json:"lastInterventionAt"`
	History               []Intervention `json:"history"`
}

// NewSchedulerState returns the state a session starts with.
func NewSchedulerState() SchedulerState {
	return SchedulerState{LastInterventionScore: 100}
}

// Breakdown is the per-dimension view of an AI-pattern score.
type Breakdown struct {
	Ideation   int      `json:"ideation" yaml:"ideation"`
	Structure  int      `json:"structure" yaml:"structure"`
	Expression int      `json:"expression" yaml:"expression"`
	Patterns   []string `json:"patterns" yaml:"patterns"`
}

// Snapshot is one analysis pass over the current draft.
type Snapshot struct {
	SessionID      string         `json:"sessionId" yaml:"session_id"`
	At             time.Time      `json:"at" yaml:"at"`
	Scored         bool           `json:"scored" yaml:"scored"`
	AIScore        int            `json:"aiScore" yaml:"ai_score"`
	CognitiveScore int            `json:"cognitiveScore" yaml:"cognitive_score"`
	Breakdown      Breakdown      `json:"breakdown" yaml:"breakdown"`
	VoiceDrift     float64        `json:"voiceDrift" yaml:"voice_drift"`
	HasBaseline    bool           `json:"hasBaseline" yaml:"has_baseline"`
	Keystrokes     KeystrokeStats `json:"keystrokes" yaml:"keystrokes"`
	WordCount      int            `json:"wordCount" yaml:"word_count"`
	SentenceCount  int            `json:"sentenceCount" yaml:"sentence_count"`
	CharCount      int            `json:"charCount" yaml:"char_count"`
	Intervention   *Intervention  `json:"intervention,omitempty" yaml:"intervention,omitempty"`
}

// Config defines write-session settings.
type Config struct {
	Cooldown         time.Duration
	Seed             int64
	BaselineMinChars int
	AnalyzeEvery     int
	Debounce         time.Duration
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionRecord is a persisted writing session.
type SessionRecord struct {
	ID          string     `json:"id" yaml:"id"`
	Source      string     `json:"source" yaml:"source"`
	StartedAt   time.Time  `json:"startedAt" yaml:"started_at"`
	EndedAt     *time.Time `json:"endedAt,omitempty" yaml:"ended_at,omitempty"`
	FinalText   string     `json:"finalText" yaml:"final_text"`
	FinalScore  int        `json:"finalScore" yaml:"final_score"`
	HasBaseline bool       `json:"hasBaseline" yaml:"has_baseline"`
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID         string
	Source            string
	StartedAt         time.Time
	EndedAt           *time.Time
	FinalScore        int
	SnapshotCount     int
	InterventionCount int
	AvgCognitive      float64
}

// SessionDetail bundles everything stored for one session.
type SessionDetail struct {
	Session       SessionRecord  `json:"session" yaml:"session"`
	Profile       *VoiceProfile  `json:"profile,omitempty" yaml:"profile,omitempty"`
	Snapshots     []Snapshot     `json:"snapshots" yaml:"snapshots"`
	Interventions []Intervention `json:"interventions" yaml:"interventions"`
}
