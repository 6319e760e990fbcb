package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mindhouselabs/miod/internal/functions"
	"github.com/mindhouselabs/miod/internal/store"
	"github.com/mindhouselabs/miod/internal/webhooks"
)

type createTaskRequest struct {
	UserID     string     `json:"user_id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	SeasonID   *string    `json:"season_id,omitempty"`
	ProtocolID *string    `json:"protocol_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	task, err := s.deps.Store.CreateTask(c.Request().Context(), store.Task{
		UserID:     req.UserID,
		Title:      req.Title,
		SeasonID:   req.SeasonID,
		ProtocolID: req.ProtocolID,
		DueAt:      req.DueAt,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	openOnly := c.QueryParam("open") == "true"

	tasks, err := s.deps.Store.ListTasks(c.Request().Context(), userID, openOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	err := s.deps.Store.CompleteTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found or already complete")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if s.deps.Webhooks != nil {
		s.deps.Webhooks.Fire(ctx, webhooks.Event{
			Name:   "task.completed",
			Fields: map[string]string{"task_id": id},
		})
	}
	return c.NoContent(http.StatusNoContent)
}

type createReportRequest struct {
	UserID   string  `json:"user_id" validate:"required"`
	Kind     string  `json:"kind" validate:"required,oneof=weekly season binder"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	SeasonID *string `json:"season_id,omitempty"`
}

func (s *Server) handleCreateReport(c echo.Context) error {
	var req createReportRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	report, err := s.deps.Store.CreateReport(c.Request().Context(), store.Report{
		UserID:   req.UserID,
		Kind:     req.Kind,
		Title:    req.Title,
		Body:     req.Body,
		SeasonID: req.SeasonID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, report)
}

func (s *Server) handleGetReport(c echo.Context) error {
	report, err := s.deps.Store.GetReport(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

type createShareLinkRequest struct {
	TargetKind string `json:"target_kind" validate:"required,oneof=report document"`
	TargetID   string `json:"target_id" validate:"required"`
	TTLHours   int    `json:"ttl_hours" validate:"gt=0,lte=720"`
}

func (s *Server) handleCreateShareLink(c echo.Context) error {
	var req createShareLinkRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	link, err := s.deps.Store.CreateShareLink(ctx, req.TargetKind, req.TargetID,
		time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.audit(ctx, "", "share_link.created", fmt.Sprintf("%s:%s", req.TargetKind, req.TargetID))
	return c.JSON(http.StatusCreated, link)
}

// handleResolveShareLink serves a shared report inline, or redirects to
// a signed URL for a shared document.
func (s *Server) handleResolveShareLink(c echo.Context) error {
	ctx := c.Request().Context()

	link, err := s.deps.Store.ResolveShareLink(ctx, c.Param("token"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "link expired or unknown")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	switch link.TargetKind {
	case "report":
		report, err := s.deps.Store.GetReport(ctx, link.TargetID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "report no longer exists")
		}
		return c.JSON(http.StatusOK, report)
	case "document":
		doc, err := s.deps.Store.GetDocument(ctx, link.TargetID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "document no longer exists")
		}
		url, err := s.deps.Objects.SignedGetURL(ctx, doc.StorageKey)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return c.Redirect(http.StatusFound, url)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "unknown share target")
	}
}

// handleUploadDocument stores a multipart file upload and tracks it.
func (s *Server) handleUploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.FormValue("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	key := fmt.Sprintf("documents/%s/%s", userID, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if err := s.deps.Objects.Upload(ctx, key, f, fileHeader.Size, contentType); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	doc, err := s.deps.Store.CreateDocument(ctx, store.Document{
		UserID:      userID,
		Name:        fileHeader.Filename,
		StorageKey:  key,
		ContentType: contentType,
		Size:        fileHeader.Size,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.audit(ctx, userID, "document.uploaded", doc.Name)
	return c.JSON(http.StatusCreated, doc)
}

type documentUploadURLRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

// handleDocumentUploadURL hands out a presigned PUT URL so clients can
// push large files to object storage directly.
func (s *Server) handleDocumentUploadURL(c echo.Context) error {
	var req documentUploadURLRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	key := fmt.Sprintf("documents/%s/%s", req.UserID, req.Filename)
	url, err := s.deps.Objects.SignedPutURL(ctx, key)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "url": url})
}

func (s *Server) handleDownloadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	doc, err := s.deps.Store.GetDocument(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	rc, err := s.deps.Objects.Download(ctx, doc.StorageKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", doc.Name))
	return c.Stream(http.StatusOK, doc.ContentType, rc)
}

func (s *Server) handleDocumentURL(c echo.Context) error {
	ctx := c.Request().Context()

	doc, err := s.deps.Store.GetDocument(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	url, err := s.deps.Objects.SignedGetURL(ctx, doc.StorageKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	ctx := c.Request().Context()

	doc, err := s.deps.Store.GetDocument(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := s.deps.Objects.Delete(ctx, doc.StorageKey); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if err := s.deps.Store.DeleteDocument(ctx, doc.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.audit(ctx, doc.UserID, "document.deleted", doc.Name)
	return c.NoContent(http.StatusNoContent)
}

type pushSubscribeRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

func (s *Server) handleSubscribePush(c echo.Context) error {
	var req pushSubscribeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	sub, err := s.deps.Store.UpsertPushSubscription(c.Request().Context(), store.PushSubscription{
		UserID:   req.UserID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sub)
}

type pushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

func (s *Server) handleUnsubscribePush(c echo.Context) error {
	var req pushUnsubscribeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	err := s.deps.Store.DeletePushSubscription(c.Request().Context(), req.Endpoint)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCurrentSeason(c echo.Context) error {
	season, err := s.deps.Store.CurrentSeason(c.Request().Context())
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no active season")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, season)
}

type generateBinderRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// handleGenerateBinder renders a season binder through the hosted
// function and records the resulting document as a report.
func (s *Server) handleGenerateBinder(c echo.Context) error {
	var req generateBinderRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	seasonID := c.Param("id")

	resp, err := s.deps.Binder.BinderGenerate(ctx, functions.BinderRequest{
		UserID:   req.UserID,
		SeasonID: seasonID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	report, err := s.deps.Store.CreateReport(ctx, store.Report{
		UserID:     req.UserID,
		Kind:       "binder",
		Title:      "Season binder",
		SeasonID:   &seasonID,
		StorageKey: resp.StorageKey,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.audit(ctx, req.UserID, "binder.generated", report.ID)
	return c.JSON(http.StatusCreated, report)
}

func (s *Server) handleRecentAudit(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	events, err := s.deps.Store.RecentAudit(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
