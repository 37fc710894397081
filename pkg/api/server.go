// Package api exposes form sessions over HTTP for a rendering layer.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intakeform/pkg/config"
	"intakeform/pkg/state"
	"intakeform/pkg/submit"
)

// ServerConfig tunes the HTTP surface.
type ServerConfig struct {
	// AllowedOrigins enables CORS for the listed origins; "*" allows all.
	AllowedOrigins []string
	Debug          bool
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer promclient.Gatherer
}

// Server wires handlers to the session store, catalogue and orchestrator.
type Server struct {
	store        *state.Store
	forms        *config.FormConfig
	orchestrator *submit.Orchestrator
	engine       *gin.Engine
}

func NewServer(store *state.Store, forms *config.FormConfig, orchestrator *submit.Orchestrator, cfg ServerConfig) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = promclient.DefaultGatherer
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = cfg.AllowedOrigins
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		corsConfig.MaxAge = 12 * time.Hour
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		store:        store,
		forms:        forms,
		orchestrator: orchestrator,
		engine:       engine,
	}
	s.routes(cfg.Gatherer)
	return s
}

func (s *Server) routes(gatherer promclient.Gatherer) {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	api.GET("/form", s.describeForm)
	api.POST("/sessions", s.createSession)

	sessions := api.Group("/sessions/:id")
	sessions.PUT("", s.openSession)
	sessions.GET("", s.withSession(s.getSession))
	sessions.PATCH("", s.withSession(s.patchSession))
	sessions.POST("/reset", s.withSession(s.resetSession))
	sessions.POST("/submit", s.withSession(s.submitSession))
	sessions.PUT("/fields/:field", s.withSession(s.setField))
	sessions.POST("/fields/:field/toggle", s.withSession(s.toggleOption))
	sessions.POST("/fields/:field/touch", s.withSession(s.touchField))
	sessions.POST("/fields/:field/blur", s.withSession(s.blurField))
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
}
