package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/session"
	"github.com/rossmatican/thoughtleaderai/internal/voice"
)

const apiSource = "api"

var errSessionNotFound = errors.New("session not found")

type createSessionRequest struct {
	SessionID string `json:"sessionId"`
	Source    string `json:"source"`
}

type createSessionResponse struct {
	SessionID string    `json:"sessionId"`
	StartedAt time.Time `json:"startedAt"`
}

type analyseRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type analyseResponse struct {
	Score        int                  `json:"score"`
	AIScore      int                  `json:"aiScore"`
	Scored       bool                 `json:"scored"`
	Breakdown    model.Breakdown      `json:"breakdown"`
	VoiceDrift   float64              `json:"voiceDrift"`
	HasBaseline  bool                 `json:"hasBaseline"`
	Keystrokes   model.KeystrokeStats `json:"keystrokes"`
	Question     *string              `json:"question"`
	Intervention *model.Intervention  `json:"intervention,omitempty"`
}

type voiceRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	SampleText string `json:"sampleText" binding:"required"`
}

type voiceResponse struct {
	Success bool               `json:"success"`
	Profile model.VoiceProfile `json:"profile"`
}

type keystrokesRequest struct {
	Events []model.KeystrokeEvent `json:"events"`
}

type respondRequest struct {
	Response string `json:"response" binding:"required"`
}

type sessionView struct {
	SessionID     string               `json:"sessionId"`
	Source        string               `json:"source"`
	StartedAt     time.Time            `json:"startedAt"`
	State         string               `json:"state"`
	Latest        model.Snapshot       `json:"latest"`
	Keystrokes    model.KeystrokeStats `json:"keystrokes"`
	Profile       *model.VoiceProfile  `json:"profile,omitempty"`
	Active        *model.Intervention  `json:"active,omitempty"`
	Interventions []model.Intervention `json:"interventions"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.registry.Len()})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.Source == "" {
		req.Source = apiSource
	}
	if _, ok := s.registry.Get(req.SessionID); ok {
		abort(c, http.StatusConflict, "session already exists")
		return
	}
	sess, err := s.session(c.Request.Context(), req.SessionID, req.Source, true)
	if err != nil {
		s.log.Error("create session", "err", err)
		abort(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.JSON(http.StatusCreated, createSessionResponse{SessionID: sess.ID(), StartedAt: sess.StartedAt()})
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionView{
		SessionID:     sess.ID(),
		Source:        sess.Source(),
		StartedAt:     sess.StartedAt(),
		State:         sess.State().String(),
		Latest:        sess.Latest(),
		Keystrokes:    sess.Keystrokes(),
		Profile:       sess.Profile(),
		Active:        sess.Active(),
		Interventions: sess.History(),
	})
}

func (s *Server) handleEndSession(c *gin.Context) {
	if _, ok := s.lookup(c); !ok {
		return
	}
	s.mu.Lock()
	s.registry.Remove(c.Param("id"))
	s.deps.Metrics.SetSessionsActive(s.registry.Len())
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// handleAnalyse scores a draft. Unknown session ids open a new session.
func (s *Server) handleAnalyse(c *gin.Context) {
	var req analyseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Missing text or sessionId")
		return
	}
	sess, err := s.session(c.Request.Context(), req.SessionID, apiSource, true)
	if err != nil {
		s.log.Error("analyse", "err", err)
		abort(c, http.StatusInternalServerError, "failed to open session")
		return
	}
	snap := sess.Analyze(c.Request.Context(), req.Text)
	resp := analyseResponse{
		Score:        snap.CognitiveScore,
		AIScore:      snap.AIScore,
		Scored:       snap.Scored,
		Breakdown:    snap.Breakdown,
		VoiceDrift:   snap.VoiceDrift,
		HasBaseline:  snap.HasBaseline,
		Keystrokes:   snap.Keystrokes,
		Intervention: snap.Intervention,
	}
	if snap.Intervention != nil {
		q := snap.Intervention.PromptText
		resp.Question = &q
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVoiceInitialize(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Missing sampleText or sessionId")
		return
	}
	sess, err := s.session(c.Request.Context(), req.SessionID, apiSource, true)
	if err != nil {
		s.log.Error("voice initialize", "err", err)
		abort(c, http.StatusInternalServerError, "failed to open session")
		return
	}
	profile, err := sess.SetBaseline(c.Request.Context(), req.SampleText)
	if err != nil {
		if errors.Is(err, voice.ErrSampleTooShort) {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
		abort(c, http.StatusInternalServerError, "failed to build voice profile")
		return
	}
	c.JSON(http.StatusOK, voiceResponse{Success: true, Profile: profile})
}

func (s *Server) handleKeystrokes(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req keystrokesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Events) == 0 {
		abort(c, http.StatusBadRequest, "Missing events")
		return
	}
	c.JSON(http.StatusOK, sess.RecordEvents(req.Events))
}

func (s *Server) handleDismiss(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	iv, err := sess.Dismiss(c.Request.Context())
	if err != nil {
		resolveError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (s *Server) handleRespond(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Missing response")
		return
	}
	iv, err := sess.Respond(c.Request.Context(), req.Response)
	if err != nil {
		resolveError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, err := s.session(c.Request.Context(), c.Param("id"), "", false)
	if err != nil {
		abort(c, http.StatusNotFound, errSessionNotFound.Error())
		return nil, false
	}
	return sess, true
}

func resolveError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNoActiveIntervention) {
		abort(c, http.StatusConflict, err.Error())
		return
	}
	abort(c, http.StatusInternalServerError, "failed to resolve intervention")
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
