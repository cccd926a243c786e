// Package intervene decides when to surface a reflective prompt.
//
// The scheduler is a two-state machine over caller-owned SchedulerState:
// Idle until a meaningful drop in the cognitive score fires a prompt, then
// PromptActive until the writer dismisses or answers it.
package intervene

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rossmatican/thoughtleaderai/internal/generator"
	"github.com/rossmatican/thoughtleaderai/internal/model"
)

const (
	// ConcernThreshold is the absolute score a trigger must fall below.
	ConcernThreshold = 50
	// MinDrop is the required fall below the score of the previous trigger.
	MinDrop = 15
	// MinTextLength is the draft length a trigger must exceed.
	MinTextLength = 100
	// DefaultCooldown separates two triggers.
	DefaultCooldown = 30 * time.Second
)

// State is the scheduler state derived from the history.
type State int

// Scheduler states.
const (
	Idle State = iota
	PromptActive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PromptActive:
		return "prompt_active"
	default:
		return "unknown"
	}
}

// Config holds scheduler settings.
type Config struct {
	Cooldown time.Duration
}

// Input is one observation fed to Evaluate. Now is in session milliseconds.
type Input struct {
	Score      int
	TextLength int
	Now        int64
	Drift      float64
}

// Scheduler evaluates trigger conditions. It holds no session state.
type Scheduler struct {
	cfg   Config
	gen   *generator.Generator
	newID func() string
}

// New builds a Scheduler. A zero cooldown uses DefaultCooldown; rnd drives
// prompt selection and may be seeded for reproducible runs.
func New(cfg Config, rnd *rand.Rand) *Scheduler {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Scheduler{cfg: cfg, gen: generator.FromRand(rnd), newID: uuid.NewString}
}

// Cooldown returns the effective cooldown.
func (s *Scheduler) Cooldown() time.Duration {
	return s.cfg.Cooldown
}

// StateOf reports whether state has an unresolved intervention.
func StateOf(state *model.SchedulerState) State {
	if active(state) != nil {
		return PromptActive
	}
	return Idle
}

// Evaluate fires a new intervention when every trigger condition holds and
// no prompt is active. It returns nil otherwise.
func (s *Scheduler) Evaluate(state *model.SchedulerState, in Input) *model.Intervention {
	if state == nil || StateOf(state) == PromptActive {
		return nil
	}
	score := clampScore(in.Score)
	length := in.TextLength
	if length < 0 {
		length = 0
	}
	if score >= ConcernThreshold {
		return nil
	}
	if score >= state.LastInterventionScore-MinDrop {
		return nil
	}
	if in.Now-state.LastInterventionAt < s.cfg.Cooldown.Milliseconds() {
		return nil
	}
	if length <= MinTextLength {
		return nil
	}

	category := generator.Category(score)
	iv := model.Intervention{
		ID:                     s.newID(),
		TriggeredAt:            in.Now,
		Category:               category,
		PromptText:             s.gen.Prompt(category),
		TriggerScore:           score,
		ContentLengthAtTrigger: length,
		VoiceDrift:             in.Drift,
	}
	state.History = append(state.History, iv)
	state.LastInterventionScore = score
	state.LastInterventionAt = in.Now
	out := iv
	return &out
}

// Dismiss resolves the active intervention without a response. It returns
// nil when nothing is active.
func Dismiss(state *model.SchedulerState, now int64) *model.Intervention {
	iv := active(state)
	if iv == nil {
		return nil
	}
	iv.Dismissed = true
	iv.ResolvedAt = now
	out := *iv
	return &out
}

// Respond resolves the active intervention and attaches the writer's answer.
func Respond(state *model.SchedulerState, text string, now int64) *model.Intervention {
	iv := active(state)
	if iv == nil {
		return nil
	}
	iv.Dismissed = true
	iv.Response = text
	iv.ResolvedAt = now
	out := *iv
	return &out
}

// Active returns a copy of the unresolved intervention, if any.
func Active(state *model.SchedulerState) *model.Intervention {
	iv := active(state)
	if iv == nil {
		return nil
	}
	out := *iv
	return &out
}

func active(state *model.SchedulerState) *model.Intervention {
	if state == nil || len(state.History) == 0 {
		return nil
	}
	last := &state.History[len(state.History)-1]
	if last.Dismissed {
		return nil
	}
	return last
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
