// Package http provides the HTTP API for miod.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/affect"
	"github.com/mindhouselabs/miod/internal/config"
	"github.com/mindhouselabs/miod/internal/conversation"
	"github.com/mindhouselabs/miod/internal/functions"
	"github.com/mindhouselabs/miod/internal/knowledge"
	"github.com/mindhouselabs/miod/internal/playback"
	"github.com/mindhouselabs/miod/internal/store"
	"github.com/mindhouselabs/miod/internal/webhooks"
)

// CoachClient is the hosted coach function surface the server needs.
type CoachClient interface {
	CoachReply(ctx context.Context, req functions.CoachReplyRequest) (*functions.CoachReplyResponse, error)
}

// BinderGenerator renders season binder documents through the hosted
// binder-generate function.
type BinderGenerator interface {
	BinderGenerate(ctx context.Context, req functions.BinderRequest) (*functions.BinderResponse, error)
}

// ObjectStore is the object storage surface the server needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	SignedGetURL(ctx context.Context, key string) (string, error)
	SignedPutURL(ctx context.Context, key string) (string, error)
}

// KnowledgeSearcher serves protocol library queries and ingest.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, filter knowledge.SearchFilter) ([]knowledge.SearchResult, error)
	Ingest(ctx context.Context, records []knowledge.Record, batchSize int, dryRun bool) (*knowledge.IngestReport, error)
}

// Deps holds the services the API composes.
type Deps struct {
	Store      *store.Store
	Objects    ObjectStore
	Coach      CoachClient
	Binder     BinderGenerator
	Knowledge  KnowledgeSearcher
	Classifier *affect.Classifier
	Condenser  *conversation.Condenser
	Playback   *playback.Manager
	Webhooks   *webhooks.Dispatcher
}

// Server provides the HTTP endpoints for miod.
type Server struct {
	echo     *echo.Echo
	deps     Deps
	validate *validator.Validate
	logger   *zap.Logger
	config   config.ServerConfig
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(deps Deps, metrics *Metrics, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if metrics != nil {
		e.Use(metrics.Middleware())
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:     e,
		deps:     deps,
		validate: validator.New(),
		logger:   logger,
		config:   cfg,
	}
	s.registerRoutes(metrics)

	return s, nil
}

func (s *Server) registerRoutes(metrics *Metrics) {
	s.echo.GET("/health", s.handleHealth)
	if metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	v1 := s.echo.Group("/api/v1")

	v1.POST("/affect/classify", s.handleClassify)

	v1.POST("/scoring/underwrite", s.handleUnderwrite)
	v1.POST("/scoring/economics", s.handleEconomics)

	v1.POST("/knowledge/search", s.handleKnowledgeSearch)
	v1.POST("/knowledge/ingest", s.handleKnowledgeIngest)

	v1.POST("/conversations", s.handleCreateConversation)
	v1.GET("/conversations", s.handleListConversations)
	v1.GET("/conversations/:id/messages", s.handleListMessages)
	v1.POST("/conversations/:id/messages", s.handleSendMessage)
	v1.DELETE("/conversations/:id", s.handleDeleteConversation)

	v1.POST("/tasks", s.handleCreateTask)
	v1.GET("/tasks", s.handleListTasks)
	v1.POST("/tasks/:id/complete", s.handleCompleteTask)

	v1.POST("/reports", s.handleCreateReport)
	v1.GET("/reports/:id", s.handleGetReport)

	v1.POST("/share-links", s.handleCreateShareLink)
	s.echo.GET("/share/:token", s.handleResolveShareLink)

	v1.POST("/documents", s.handleUploadDocument)
	v1.POST("/documents/upload-url", s.handleDocumentUploadURL)
	v1.GET("/documents/:id/url", s.handleDocumentURL)
	v1.GET("/documents/:id/download", s.handleDownloadDocument)
	v1.DELETE("/documents/:id", s.handleDeleteDocument)

	v1.POST("/push/subscriptions", s.handleSubscribePush)
	v1.DELETE("/push/subscriptions", s.handleUnsubscribePush)

	v1.GET("/seasons/current", s.handleCurrentSeason)
	v1.POST("/seasons/:id/binder", s.handleGenerateBinder)
	v1.GET("/audit", s.handleRecentAudit)

	v1.POST("/playback/start", s.handlePlaybackStart)
	v1.GET("/playback", s.handlePlaybackCurrent)
	v1.POST("/playback/seek", s.handlePlaybackSeek)
	v1.POST("/playback/pause", s.handlePlaybackPause)
	v1.POST("/playback/resume", s.handlePlaybackResume)
	v1.POST("/playback/stop", s.handlePlaybackStop)
}

// bind decodes and validates a request body.
func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// audit records an audit event without failing the request.
func (s *Server) audit(ctx context.Context, userID, action, detail string) {
	if err := s.deps.Store.AppendAudit(ctx, userID, action, detail); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
