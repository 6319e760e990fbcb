package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mindhouselabs/miod/internal/affect"
	"github.com/mindhouselabs/miod/internal/conversation"
	"github.com/mindhouselabs/miod/internal/functions"
	"github.com/mindhouselabs/miod/internal/knowledge"
	"github.com/mindhouselabs/miod/internal/playback"
	"github.com/mindhouselabs/miod/internal/scoring"
	"github.com/mindhouselabs/miod/internal/store"
	"github.com/mindhouselabs/miod/internal/webhooks"
)

type classifyRequest struct {
	Message string                `json:"message" validate:"required"`
	History []affect.HistoryPoint `json:"history,omitempty"`
}

func (s *Server) handleClassify(c echo.Context) error {
	var req classifyRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	result := s.deps.Classifier.Classify(c.Request().Context(), affect.Input{
		Message: req.Message,
		History: req.History,
	})
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleUnderwrite(c echo.Context) error {
	var req scoring.UnderwritingInput
	if err := s.bind(c, &req); err != nil {
		return err
	}

	result, err := scoring.Underwrite(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

type economicsResponse struct {
	Economics   scoring.EconomicsResult  `json:"economics"`
	Sensitivity []scoring.SensitivityRow `json:"sensitivity"`
}

func (s *Server) handleEconomics(c echo.Context) error {
	var req scoring.EconomicsInput
	if err := s.bind(c, &req); err != nil {
		return err
	}

	result, err := scoring.ComputeEconomics(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rows, err := scoring.Sensitivity(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, economicsResponse{Economics: result, Sensitivity: rows})
}

type knowledgeSearchRequest struct {
	Query  string                 `json:"query" validate:"required"`
	Filter knowledge.SearchFilter `json:"filter"`
}

func (s *Server) handleKnowledgeSearch(c echo.Context) error {
	var req knowledgeSearchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	results, err := s.deps.Knowledge.Search(c.Request().Context(), req.Query, req.Filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

type knowledgeIngestRequest struct {
	Records   []knowledge.Record `json:"records" validate:"required,min=1"`
	BatchSize int                `json:"batch_size"`
	DryRun    bool               `json:"dry_run"`
}

func (s *Server) handleKnowledgeIngest(c echo.Context) error {
	var req knowledgeIngestRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	report, err := s.deps.Knowledge.Ingest(c.Request().Context(), req.Records, req.BatchSize, req.DryRun)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

type createConversationRequest struct {
	UserID   string  `json:"user_id" validate:"required"`
	Title    string  `json:"title"`
	SeasonID *string `json:"season_id,omitempty"`
}

func (s *Server) handleCreateConversation(c echo.Context) error {
	var req createConversationRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	conv, err := s.deps.Store.CreateConversation(c.Request().Context(), req.UserID, req.Title, req.SeasonID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, conv)
}

func (s *Server) handleListConversations(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	convs, err := s.deps.Store.ListConversations(c.Request().Context(), userID, 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, convs)
}

func (s *Server) handleListMessages(c echo.Context) error {
	msgs, err := s.deps.Store.ListMessages(c.Request().Context(), c.Param("id"), 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) handleDeleteConversation(c echo.Context) error {
	err := s.deps.Store.DeleteConversation(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type sendMessageRequest struct {
	Message     string `json:"message" validate:"required"`
	Temperament string `json:"temperament,omitempty"`
}

type sendMessageResponse struct {
	Classification affect.Classification `json:"classification"`
	Reply          string                `json:"reply"`
	ProtocolIDs    []string              `json:"protocol_ids,omitempty"`
}

// handleSendMessage runs the full coaching turn: classify the message,
// condense the thread, ask the hosted coach for a reply and persist
// both sides.
func (s *Server) handleSendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	convID := c.Param("id")

	conv, err := s.deps.Store.GetConversation(ctx, convID)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	stored, err := s.deps.Store.ListMessages(ctx, convID, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	history := make([]conversation.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, conversation.Message{
			Role:      m.Role,
			Content:   m.Content,
			Emotion:   affect.Emotion(m.Emotion),
			Intensity: m.Intensity,
			CreatedAt: m.CreatedAt,
		})
	}

	cls := s.deps.Classifier.Classify(ctx, affect.Input{
		Message: req.Message,
		History: conversation.AffectHistory(history),
	})

	if _, err := s.deps.Store.AppendMessage(ctx, store.ConversationMessage{
		ConversationID: convID,
		Role:           "user",
		Content:        req.Message,
		Emotion:        string(cls.Emotion),
		Intensity:      cls.Intensity,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	condensed := s.deps.Condenser.Condense(history)
	reply, err := s.deps.Coach.CoachReply(ctx, functions.CoachReplyRequest{
		ConversationID: convID,
		Message:        req.Message,
		History:        conversation.Texts(condensed),
		Emotion:        string(cls.Emotion),
		Depth:          string(cls.Depth),
		Temperament:    req.Temperament,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	if _, err := s.deps.Store.AppendMessage(ctx, store.ConversationMessage{
		ConversationID: convID,
		Role:           "coach",
		Content:        reply.Reply,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if cls.Depth == affect.DepthHandoff && s.deps.Webhooks != nil {
		s.deps.Webhooks.Fire(ctx, webhooks.Event{
			Name: "affect.handoff",
			Fields: map[string]string{
				"conversation_id": convID,
				"user_id":         conv.UserID,
				"emotion":         string(cls.Emotion),
			},
		})
	}
	s.audit(ctx, conv.UserID, "conversation.message", convID)

	return c.JSON(http.StatusOK, sendMessageResponse{
		Classification: cls,
		Reply:          reply.Reply,
		ProtocolIDs:    reply.ProtocolIDs,
	})
}

type playbackStartRequest struct {
	TrackKey        string `json:"track_key" validate:"required"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

func (s *Server) handlePlaybackStart(c echo.Context) error {
	var req playbackStartRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	session := s.deps.Playback.Start(req.TrackKey, time.Duration(req.DurationSeconds)*time.Second)
	return c.JSON(http.StatusOK, session)
}

func (s *Server) handlePlaybackCurrent(c echo.Context) error {
	session, err := s.deps.Playback.Current()
	if errors.Is(err, playback.ErrNoSession) {
		return echo.NewHTTPError(http.StatusNotFound, "no active session")
	}
	return c.JSON(http.StatusOK, session)
}

type playbackSeekRequest struct {
	PositionSeconds int `json:"position_seconds" validate:"gte=0"`
}

func (s *Server) handlePlaybackSeek(c echo.Context) error {
	var req playbackSeekRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	session, err := s.deps.Playback.Seek(time.Duration(req.PositionSeconds) * time.Second)
	if errors.Is(err, playback.ErrNoSession) {
		return echo.NewHTTPError(http.StatusNotFound, "no active session")
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Server) handlePlaybackPause(c echo.Context) error {
	session, err := s.deps.Playback.Pause()
	if errors.Is(err, playback.ErrNoSession) {
		return echo.NewHTTPError(http.StatusNotFound, "no active session")
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Server) handlePlaybackResume(c echo.Context) error {
	session, err := s.deps.Playback.Resume()
	if errors.Is(err, playback.ErrNoSession) {
		return echo.NewHTTPError(http.StatusNotFound, "no active session")
	}
	return c.JSON(http.StatusOK, session)
}

func (s *Server) handlePlaybackStop(c echo.Context) error {
	s.deps.Playback.Stop()
	return c.NoContent(http.StatusNoContent)
}
