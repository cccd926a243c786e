package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rossmatican/thoughtleaderai/internal/metrics"
	"github.com/rossmatican/thoughtleaderai/internal/model"
)

const machineDraft = "Moreover, it's important to note that we must leverage synergy across teams. " +
	"Furthermore, this highlights robust and scalable best practices moving forward."

const baselineSample = "I keep a notebook by the window for the days when the light comes in low and yellow. " +
	"Most mornings I write badly for a while, then something small catches, a sound from the street or a half-remembered line, " +
	"and I follow it until the coffee goes cold."

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := New(Config{Seed: 7, Cooldown: 30 * time.Second}, Deps{
		Metrics:  metrics.MustNew(reg),
		Gatherer: reg,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAnalyseValidation(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/analyse", map[string]string{"text": "hello"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] == "" {
		t.Fatalf("expected an error message")
	}
}

func TestAnalyseTriggersAndResolves(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/analyse", map[string]string{"sessionId": "abc", "text": machineDraft})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp analyseResponse
	decode(t, rec, &resp)
	if !resp.Scored || resp.AIScore != 100 || resp.Score != 10 {
		t.Fatalf("unexpected scores: %+v", resp)
	}
	if resp.Question == nil || resp.Intervention == nil {
		t.Fatalf("expected a question, got %+v", resp)
	}
	if resp.Intervention.Category != model.CategoryHigh {
		t.Fatalf("expected high dependency, got %s", resp.Intervention.Category)
	}

	rec = do(t, s, http.MethodGet, "/api/sessions/abc", nil)
	var view sessionView
	decode(t, rec, &view)
	if view.State != "prompt_active" || view.Active == nil {
		t.Fatalf("expected an active prompt, got %+v", view)
	}

	rec = do(t, s, http.MethodPost, "/api/sessions/abc/interventions/respond", map[string]string{"response": "It is my own idea."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var iv model.Intervention
	decode(t, rec, &iv)
	if !iv.Dismissed || iv.Response != "It is my own idea." {
		t.Fatalf("unexpected resolution: %+v", iv)
	}

	rec = do(t, s, http.MethodPost, "/api/sessions/abc/interventions/dismiss", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 with nothing active, got %d", rec.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/sessions/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/sessions/missing/interventions/dismiss", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateSessionAndKeystrokes(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created createSessionResponse
	decode(t, rec, &created)
	if created.SessionID == "" {
		t.Fatalf("expected a generated id")
	}

	events := make([]model.KeystrokeEvent, 0, 12)
	for i := 0; i < 12; i++ {
		events = append(events, model.KeystrokeEvent{Key: "a", Timestamp: int64(i * 100), TimeDelta: 100, ContentLength: i + 1})
	}
	rec = do(t, s, http.MethodPost, "/api/sessions/"+created.SessionID+"/keystrokes", keystrokesRequest{Events: events})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var stats model.KeystrokeStats
	decode(t, rec, &stats)
	if stats.SampleSize != 12 || stats.AvgPauseTime != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = do(t, s, http.MethodPost, "/api/sessions/"+created.SessionID+"/keystrokes", keystrokesRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty events, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/sessions", createSessionRequest{SessionID: created.SessionID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate id, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/sessions/"+created.SessionID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/sessions/"+created.SessionID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestVoiceInitialize(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/voice/initialize", voiceRequest{SessionID: "v1", SampleText: "too short"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/voice/initialize", voiceRequest{SessionID: "v1", SampleText: baselineSample})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp voiceResponse
	decode(t, rec, &resp)
	if !resp.Success || resp.Profile.Characteristics.AvgSentenceLength == 0 {
		t.Fatalf("unexpected profile: %+v", resp)
	}

	rec = do(t, s, http.MethodPost, "/api/analyse", analyseRequest{SessionID: "v1", Text: baselineSample})
	var analysed analyseResponse
	decode(t, rec, &analysed)
	if !analysed.HasBaseline || analysed.VoiceDrift != 0 {
		t.Fatalf("expected zero drift against its own baseline, got %+v", analysed)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/analyse", analyseRequest{SessionID: "m1", Text: machineDraft})

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, want := range []string{"tlai_engine_analyses_total 1", "tlai_engine_sessions_active 1"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New(Config{Addr: "127.0.0.1:0"}, Deps{})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("run did not stop")
	}
}
