// Package session composes the engine into a per-session context object.
//
// A Session owns one keystroke buffer, one scheduler state, an optional voice
// profile and one clock. Its methods serialize on an internal mutex so a host
// may call them from a debounce goroutine and an input loop alike.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rossmatican/thoughtleaderai/internal/intervene"
	"github.com/rossmatican/thoughtleaderai/internal/keystroke"
	"github.com/rossmatican/thoughtleaderai/internal/logging"
	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/pattern"
	"github.com/rossmatican/thoughtleaderai/internal/textstat"
	"github.com/rossmatican/thoughtleaderai/internal/voice"
)

// DefaultAnalyzeEvery is the keystroke cadence for re-running typing analysis.
const DefaultAnalyzeEvery = 10

// ErrNoActiveIntervention is returned when resolving while no prompt is active.
var ErrNoActiveIntervention = errors.New("no active intervention")

// Sink receives session records. It never feeds back into scoring.
type Sink interface {
	CreateSession(ctx context.Context, rec model.SessionRecord) error
	InsertSnapshot(ctx context.Context, snap model.Snapshot) error
	SaveIntervention(ctx context.Context, sessionID string, iv model.Intervention) error
	SaveVoiceProfile(ctx context.Context, sessionID string, p model.VoiceProfile) error
	EndSession(ctx context.Context, id string, endedAt time.Time, finalText string, finalScore int) error
}

// Observer is notified of engine activity, for metrics.
type Observer interface {
	ObserveAnalysis(snap model.Snapshot, took time.Duration)
	ObserveIntervention(iv model.Intervention)
	ObserveResolution(iv model.Intervention)
}

// Options configure a Session. Zero values select defaults.
type Options struct {
	ID             string
	Source         string
	Scheduler      *intervene.Scheduler
	AnalyzeEvery   int
	BufferCapacity int
	Sink           Sink
	Observer       Observer
	Logger         *slog.Logger
	Now            func() time.Time
}

// Session is the explicit per-session context passed to every engine call.
type Session struct {
	mu sync.Mutex

	id        string
	source    string
	startedAt time.Time
	now       func() time.Time

	sched        *intervene.Scheduler
	analyzeEvery int
	buffer       *keystroke.Buffer
	keys         model.KeystrokeStats
	state        model.SchedulerState
	profile      *model.VoiceProfile

	last     model.Snapshot
	lastText string
	ended    bool

	sink     Sink
	observer Observer
	log      *slog.Logger
}

// New creates a session and registers it with the sink.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = intervene.New(intervene.Config{}, nil)
	}
	if opts.AnalyzeEvery <= 0 {
		opts.AnalyzeEvery = DefaultAnalyzeEvery
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = monotonicClock()
	}
	s := &Session{
		id:           opts.ID,
		source:       opts.Source,
		now:          opts.Now,
		sched:        opts.Scheduler,
		analyzeEvery: opts.AnalyzeEvery,
		buffer:       keystroke.NewBuffer(opts.BufferCapacity),
		state:        model.NewSchedulerState(),
		sink:         opts.Sink,
		observer:     opts.Observer,
		log:          opts.Logger.With("session_id", opts.ID),
	}
	s.startedAt = s.now()
	s.last = model.Snapshot{SessionID: s.id, CognitiveScore: 100}
	if s.sink != nil {
		rec := model.SessionRecord{ID: s.id, Source: s.source, StartedAt: s.startedAt}
		if err := s.sink.CreateSession(ctx, rec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// monotonicClock anchors wall time once and advances it by monotonic readings.
func monotonicClock() func() time.Time {
	start := time.Now()
	return func() time.Time {
		return start.Add(time.Since(start))
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Source names the host that opened the session.
func (s *Session) Source() string {
	return s.source
}

// StartedAt returns the session start time.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// RecordKey stamps a key press with the session clock. Typing analysis is
// refreshed every AnalyzeEvery keys.
func (s *Session) RecordKey(key string, isBackspace bool, contentLength int) model.KeystrokeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.buffer.Record(key, s.now().UnixMilli(), isBackspace, contentLength)
	if s.buffer.Total()%s.analyzeEvery == 0 {
		s.keys = keystroke.Analyze(s.buffer.Snapshot())
	}
	return ev
}

// RecordEvents appends externally timed events and re-runs typing analysis.
func (s *Session) RecordEvents(events []model.KeystrokeEvent) model.KeystrokeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.buffer.Push(ev)
	}
	s.keys = keystroke.Analyze(s.buffer.Snapshot())
	return s.keys
}

// Keystrokes returns the most recent typing analysis.
func (s *Session) Keystrokes() model.KeystrokeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys
}

// SetBaseline builds a voice profile from sample and makes it the drift anchor.
// A previous profile is replaced, never modified.
func (s *Session) SetBaseline(ctx context.Context, sample string) (model.VoiceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := voice.NewProfile(sample, s.now())
	if err != nil {
		return model.VoiceProfile{}, err
	}
	s.profile = &p
	if s.sink != nil {
		if err := s.sink.SaveVoiceProfile(ctx, s.id, p); err != nil {
			s.log.Warn("failed to save voice profile", "err", err)
		}
	}
	s.log.Info("baseline captured", "chars", utf8.RuneCountInString(sample))
	return p, nil
}

// Profile returns a copy of the baseline profile, or nil.
func (s *Session) Profile() *model.VoiceProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Analyze scores text, measures drift against the baseline and lets the
// scheduler decide on a prompt. Unscored drafts count as fully independent
// for trigger purposes.
func (s *Session) Analyze(ctx context.Context, text string) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	now := s.now()

	res := pattern.Analyze(text)
	sample := textstat.NewSample(text)
	cognitive := 100
	if res.Scored {
		cognitive = pattern.CognitiveScore(res.Score)
	}
	var drift float64
	if s.profile != nil && sample.WordCount > 0 {
		current := voice.Extract(text)
		drift = voice.Drift(&s.profile.Characteristics, &current)
	}

	snap := model.Snapshot{
		SessionID:      s.id,
		At:             now,
		Scored:         res.Scored,
		AIScore:        res.Score,
		CognitiveScore: cognitive,
		Breakdown:      res.Dimensions,
		VoiceDrift:     drift,
		HasBaseline:    s.profile != nil,
		Keystrokes:     s.keys,
		WordCount:      sample.WordCount,
		SentenceCount:  sample.SentenceCount,
		CharCount:      sample.CharCount,
	}

	iv := s.sched.Evaluate(&s.state, intervene.Input{
		Score:      cognitive,
		TextLength: sample.CharCount,
		Now:        now.UnixMilli(),
		Drift:      drift,
	})
	if iv != nil {
		snap.Intervention = iv
		s.log.Info("intervention triggered", "category", iv.Category, "score", iv.TriggerScore, "drift", iv.VoiceDrift)
		s.saveIntervention(ctx, *iv)
		if s.observer != nil {
			s.observer.ObserveIntervention(*iv)
		}
	}

	if s.sink != nil {
		if err := s.sink.InsertSnapshot(ctx, snap); err != nil {
			s.log.Warn("failed to record snapshot", "err", err)
		}
	}
	if s.observer != nil {
		s.observer.ObserveAnalysis(snap, time.Since(started))
	}
	s.log.Debug("analysis", "scored", snap.Scored, "ai_score", snap.AIScore, "cognitive", snap.CognitiveScore, "chars", snap.CharCount)
	s.last = snap
	s.lastText = text
	return snap
}

// Latest returns the most recent snapshot.
func (s *Session) Latest() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Dismiss resolves the active prompt without a response.
func (s *Session) Dismiss(ctx context.Context) (model.Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv := intervene.Dismiss(&s.state, s.now().UnixMilli())
	if iv == nil {
		return model.Intervention{}, ErrNoActiveIntervention
	}
	s.resolved(ctx, *iv)
	return *iv, nil
}

// Respond resolves the active prompt with the writer's answer.
func (s *Session) Respond(ctx context.Context, text string) (model.Intervention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv := intervene.Respond(&s.state, text, s.now().UnixMilli())
	if iv == nil {
		return model.Intervention{}, ErrNoActiveIntervention
	}
	s.resolved(ctx, *iv)
	return *iv, nil
}

func (s *Session) resolved(ctx context.Context, iv model.Intervention) {
	s.log.Info("intervention resolved", "id", iv.ID, "responded", iv.Response != "")
	s.saveIntervention(ctx, iv)
	if s.observer != nil {
		s.observer.ObserveResolution(iv)
	}
}

func (s *Session) saveIntervention(ctx context.Context, iv model.Intervention) {
	if s.sink == nil {
		return
	}
	if err := s.sink.SaveIntervention(ctx, s.id, iv); err != nil {
		s.log.Warn("failed to record intervention", "err", err)
	}
}

// Active returns the unresolved prompt, or nil.
func (s *Session) Active() *model.Intervention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return intervene.Active(&s.state)
}

// History returns a copy of every intervention raised so far.
func (s *Session) History() []model.Intervention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Intervention(nil), s.state.History...)
}

// State reports whether a prompt is active.
func (s *Session) State() intervene.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return intervene.StateOf(&s.state)
}

// End records the final draft and score. Calling End twice is a no-op.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}
	s.ended = true
	if s.sink == nil {
		return nil
	}
	return s.sink.EndSession(ctx, s.id, s.now(), s.lastText, s.last.CognitiveScore)
}
