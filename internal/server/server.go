// Package server hosts the engine over HTTP for editor front ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rossmatican/thoughtleaderai/internal/intervene"
	"github.com/rossmatican/thoughtleaderai/internal/logging"
	"github.com/rossmatican/thoughtleaderai/internal/metrics"
	"github.com/rossmatican/thoughtleaderai/internal/session"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:3001"

const shutdownTimeout = 5 * time.Second

// Config defines HTTP host settings.
type Config struct {
	Addr         string
	CORSOrigins  []string
	MaxSessions  int
	Cooldown     time.Duration
	Seed         int64
	AnalyzeEvery int
	Debug        bool
}

// Deps are the collaborators shared by every session. All are optional.
type Deps struct {
	Sink     session.Sink
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	Now      func() time.Time
}

// Server owns the session registry and the gin engine.
type Server struct {
	cfg      Config
	deps     Deps
	engine   *gin.Engine
	registry *session.Registry
	log      *slog.Logger

	mu      sync.Mutex
	created int64
}

// New builds a server and its routes.
func New(cfg Config, deps Deps) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	registry, err := session.NewRegistry(cfg.MaxSessions, deps.Logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(deps.Logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		engine:   engine,
		registry: registry,
		log:      deps.Logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/analyse", s.handleAnalyse)
	api.POST("/voice/initialize", s.handleVoiceInitialize)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", s.handleCreateSession)
		sessions.GET("/:id", s.handleGetSession)
		sessions.DELETE("/:id", s.handleEndSession)
		sessions.POST("/:id/keystrokes", s.handleKeystrokes)
		sessions.POST("/:id/interventions/dismiss", s.handleDismiss)
		sessions.POST("/:id/interventions/respond", s.handleRespond)
	}

	if s.deps.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then ends every live session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	})
	err := g.Wait()
	s.Close()
	return err
}

// Close ends every live session.
func (s *Server) Close() {
	s.registry.Close()
	s.deps.Metrics.SetSessionsActive(0)
}

// session returns the live session with id, creating it when create is set.
func (s *Server) session(ctx context.Context, id, source string, create bool) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.registry.Get(id); ok {
		return sess, nil
	}
	if !create {
		return nil, errSessionNotFound
	}
	var rnd *rand.Rand
	if s.cfg.Seed != 0 {
		rnd = rand.New(rand.NewSource(s.cfg.Seed + s.created))
	}
	s.created++
	sess, err := session.New(ctx, session.Options{
		ID:           id,
		Source:       source,
		Scheduler:    intervene.New(intervene.Config{Cooldown: s.cfg.Cooldown}, rnd),
		AnalyzeEvery: s.cfg.AnalyzeEvery,
		Sink:         s.deps.Sink,
		Observer:     s.observer(),
		Logger:       s.log,
		Now:          s.deps.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.registry.Add(sess)
	s.deps.Metrics.SetSessionsActive(s.registry.Len())
	return sess, nil
}

func (s *Server) observer() session.Observer {
	if s.deps.Metrics == nil {
		return nil
	}
	return s.deps.Metrics
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
