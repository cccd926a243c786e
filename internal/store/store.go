// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; hosts share the handle across goroutines.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			final_text TEXT NOT NULL DEFAULT '',
			final_score INTEGER NOT NULL DEFAULT 100,
			has_baseline INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			at TEXT NOT NULL,
			scored INTEGER NOT NULL,
			ai_score INTEGER NOT NULL,
			cognitive_score INTEGER NOT NULL,
			ideation INTEGER NOT NULL,
			structure INTEGER NOT NULL,
			expression INTEGER NOT NULL,
			patterns TEXT NOT NULL,
			voice_drift REAL NOT NULL,
			has_baseline INTEGER NOT NULL,
			avg_pause_ms INTEGER NOT NULL,
			backspace_ratio REAL NOT NULL,
			burstiness REAL NOT NULL,
			keystroke_samples INTEGER NOT NULL,
			word_count INTEGER NOT NULL,
			sentence_count INTEGER NOT NULL,
			char_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS interventions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			triggered_at INTEGER NOT NULL,
			category TEXT NOT NULL,
			prompt_text TEXT NOT NULL,
			trigger_score INTEGER NOT NULL,
			content_length INTEGER NOT NULL,
			voice_drift REAL NOT NULL,
			dismissed INTEGER NOT NULL,
			response TEXT NOT NULL,
			resolved_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS voice_profiles (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			sample_text TEXT NOT NULL,
			avg_sentence_length REAL NOT NULL,
			vocabulary_complexity REAL NOT NULL,
			punctuation TEXT NOT NULL,
			bigrams TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session_id, at);`,
		`CREATE INDEX IF NOT EXISTS idx_interventions_session ON interventions(session_id, triggered_at);`,
		`CREATE INDEX IF NOT EXISTS idx_voice_profiles_session ON voice_profiles(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateSession stores a new, open session.
func (s *Store) CreateSession(ctx context.Context, rec model.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, source, started_at, has_baseline) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Source, formatTime(rec.StartedAt), boolInt(rec.HasBaseline))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// EndSession closes a session with its final draft and score.
func (s *Store) EndSession(ctx context.Context, id string, endedAt time.Time, finalText string, finalScore int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, final_text = ?, final_score = ? WHERE id = ?`,
		formatTime(endedAt), finalText, finalScore, id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSnapshot appends one analysis pass.
func (s *Store) InsertSnapshot(ctx context.Context, snap model.Snapshot) error {
	patterns, err := json.Marshal(nonNil(snap.Breakdown.Patterns))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (session_id, at, scored, ai_score, cognitive_score, ideation, structure, expression, patterns,
			voice_drift, has_baseline, avg_pause_ms, backspace_ratio, burstiness, keystroke_samples, word_count, sentence_count, char_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.SessionID,
		formatTime(snap.At),
		boolInt(snap.Scored),
		snap.AIScore,
		snap.CognitiveScore,
		snap.Breakdown.Ideation,
		snap.Breakdown.Structure,
		snap.Breakdown.Expression,
		string(patterns),
		snap.VoiceDrift,
		boolInt(snap.HasBaseline),
		snap.Keystrokes.AvgPauseTime,
		snap.Keystrokes.BackspaceRatio,
		snap.Keystrokes.Burstiness,
		snap.Keystrokes.SampleSize,
		snap.WordCount,
		snap.SentenceCount,
		snap.CharCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// SaveIntervention inserts an intervention or updates its resolution.
func (s *Store) SaveIntervention(ctx context.Context, sessionID string, iv model.Intervention) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interventions (id, session_id, triggered_at, category, prompt_text, trigger_score, content_length, voice_drift, dismissed, response, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			dismissed = excluded.dismissed,
			response = excluded.response,
			resolved_at = excluded.resolved_at`,
		iv.ID, sessionID, iv.TriggeredAt, iv.Category, iv.PromptText, iv.TriggerScore,
		iv.ContentLengthAtTrigger, iv.VoiceDrift, boolInt(iv.Dismissed), iv.Response, iv.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to save intervention: %w", err)
	}
	return nil
}

// SaveVoiceProfile stores a baseline profile and flags the session.
func (s *Store) SaveVoiceProfile(ctx context.Context, sessionID string, p model.VoiceProfile) (err error) {
	punct, err := json.Marshal(nonNil(p.Characteristics.PunctuationMarks))
	if err != nil {
		return err
	}
	bigrams, err := json.Marshal(nonNil(p.Characteristics.CommonBigrams))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO voice_profiles (session_id, created_at, sample_text, avg_sentence_length, vocabulary_complexity, punctuation, bigrams)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, formatTime(p.CreatedAt), p.SampleText,
		p.Characteristics.AvgSentenceLength, p.Characteristics.VocabularyComplexity,
		string(punct), string(bigrams),
	); err != nil {
		return fmt.Errorf("failed to save voice profile: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE sessions SET has_baseline = 1 WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to flag baseline: %w", err)
	}
	return tx.Commit()
}

// LatestVoiceProfile returns the newest profile of a session, or nil.
func (s *Store) LatestVoiceProfile(ctx context.Context, sessionID string) (*model.VoiceProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT created_at, sample_text, avg_sentence_length, vocabulary_complexity, punctuation, bigrams
		 FROM voice_profiles WHERE session_id = ? ORDER BY id DESC LIMIT 1`, sessionID)
	var p model.VoiceProfile
	var createdAt, punct, bigrams string
	err := row.Scan(&createdAt, &p.SampleText, &p.Characteristics.AvgSentenceLength,
		&p.Characteristics.VocabularyComplexity, &punct, &bigrams)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(punct), &p.Characteristics.PunctuationMarks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(bigrams), &p.Characteristics.CommonBigrams); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSession loads one session record.
func (s *Store) GetSession(ctx context.Context, id string) (model.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, started_at, ended_at, final_text, final_score, has_baseline FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionRecord{}, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (model.SessionRecord, error) {
	var rec model.SessionRecord
	var startedAt string
	var endedAt sql.NullString
	var hasBaseline int
	if err := row.Scan(&rec.ID, &rec.Source, &startedAt, &endedAt, &rec.FinalText, &rec.FinalScore, &hasBaseline); err != nil {
		return model.SessionRecord{}, err
	}
	var err error
	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return model.SessionRecord{}, err
	}
	if endedAt.Valid {
		t, err := parseTime(endedAt.String)
		if err != nil {
			return model.SessionRecord{}, err
		}
		rec.EndedAt = &t
	}
	rec.HasBaseline = hasBaseline != 0
	return rec, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "s.started_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	limit := ""
	if cfg.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT s.id, s.source, s.started_at, s.ended_at, s.final_score,
			(SELECT COUNT(*) FROM snapshots sn WHERE sn.session_id = s.id),
			(SELECT COUNT(*) FROM interventions i WHERE i.session_id = s.id),
			(SELECT COALESCE(AVG(sn.cognitive_score), 0) FROM snapshots sn WHERE sn.session_id = s.id AND sn.scored = 1)
		FROM sessions s
		WHERE %s
		ORDER BY s.started_at DESC
		%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&agg.SessionID, &agg.Source, &startedAt, &endedAt, &agg.FinalScore,
			&agg.SnapshotCount, &agg.InterventionCount, &agg.AvgCognitive); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			t, err := parseTime(endedAt.String)
			if err != nil {
				return nil, err
			}
			agg.EndedAt = &t
		}
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// ListSnapshots returns a session's snapshots in time order.
func (s *Store) ListSnapshots(ctx context.Context, sessionID string) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT at, scored, ai_score, cognitive_score, ideation, structure, expression, patterns, voice_drift, has_baseline,
			avg_pause_ms, backspace_ratio, burstiness, keystroke_samples, word_count, sentence_count, char_count
		 FROM snapshots WHERE session_id = ? ORDER BY at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Snapshot
	for rows.Next() {
		snap := model.Snapshot{SessionID: sessionID}
		var at, patterns string
		var scored, hasBaseline int
		if err := rows.Scan(&at, &scored, &snap.AIScore, &snap.CognitiveScore,
			&snap.Breakdown.Ideation, &snap.Breakdown.Structure, &snap.Breakdown.Expression, &patterns,
			&snap.VoiceDrift, &hasBaseline,
			&snap.Keystrokes.AvgPauseTime, &snap.Keystrokes.BackspaceRatio, &snap.Keystrokes.Burstiness, &snap.Keystrokes.SampleSize,
			&snap.WordCount, &snap.SentenceCount, &snap.CharCount); err != nil {
			return nil, err
		}
		if snap.At, err = parseTime(at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(patterns), &snap.Breakdown.Patterns); err != nil {
			return nil, err
		}
		snap.Scored = scored != 0
		snap.HasBaseline = hasBaseline != 0
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListInterventions returns a session's interventions in trigger order.
func (s *Store) ListInterventions(ctx context.Context, sessionID string) ([]model.Intervention, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, triggered_at, category, prompt_text, trigger_score, content_length, voice_drift, dismissed, response, resolved_at
		 FROM interventions WHERE session_id = ? ORDER BY triggered_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Intervention
	for rows.Next() {
		var iv model.Intervention
		var dismissed int
		if err := rows.Scan(&iv.ID, &iv.TriggeredAt, &iv.Category, &iv.PromptText, &iv.TriggerScore,
			&iv.ContentLengthAtTrigger, &iv.VoiceDrift, &dismissed, &iv.Response, &iv.ResolvedAt); err != nil {
			return nil, err
		}
		iv.Dismissed = dismissed != 0
		result = append(result, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Detail loads a session with its profile, snapshots and interventions.
func (s *Store) Detail(ctx context.Context, id string) (model.SessionDetail, error) {
	rec, err := s.GetSession(ctx, id)
	if err != nil {
		return model.SessionDetail{}, err
	}
	profile, err := s.LatestVoiceProfile(ctx, id)
	if err != nil {
		return model.SessionDetail{}, fmt.Errorf("failed to load voice profile: %w", err)
	}
	snaps, err := s.ListSnapshots(ctx, id)
	if err != nil {
		return model.SessionDetail{}, fmt.Errorf("failed to load snapshots: %w", err)
	}
	ivs, err := s.ListInterventions(ctx, id)
	if err != nil {
		return model.SessionDetail{}, fmt.Errorf("failed to load interventions: %w", err)
	}
	return model.SessionDetail{Session: rec, Profile: profile, Snapshots: snaps, Interventions: ivs}, nil
}

// Fixed-width timestamps keep string ordering chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
