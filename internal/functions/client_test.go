package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindhouselabs/miod/internal/affect"
	"github.com/mindhouselabs/miod/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.FunctionsConfig{
		BaseURL:    srv.URL,
		ServiceKey: "test-key",
		Timeout:    5 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestAnalyzeAffect(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/affect-analyze", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "I can't do this anymore", req["message"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(affect.RemoteResult{
			Emotion:    affect.EmotionOverwhelm,
			Intensity:  0.8,
			Confidence: 0.9,
		})
	}))

	got, err := c.AnalyzeAffect(context.Background(), "I can't do this anymore")
	require.NoError(t, err)
	assert.Equal(t, affect.EmotionOverwhelm, got.Emotion)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestAnalyzeAffectEmptyMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("validation should reject before the request is sent")
	}))

	_, err := c.AnalyzeAffect(context.Background(), "")
	assert.Error(t, err)
}

func TestAnalyzeAffectServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.AnalyzeAffect(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCoachReply(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coach-reply", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CoachReplyResponse{
			Reply:       "Let's start with one small step.",
			ProtocolIDs: []string{"p-1"},
		})
	}))

	got, err := c.CoachReply(context.Background(), CoachReplyRequest{
		ConversationID: "0b06f4a6-47f6-4e54-9a6b-01e77d09d2ad",
		Message:        "Everything is too much today",
		Emotion:        "overwhelm",
		Depth:          "protocol",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Reply)
	assert.Equal(t, []string{"p-1"}, got.ProtocolIDs)
}

func TestCoachReplyRejectsBadConversationID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("validation should reject before the request is sent")
	}))

	_, err := c.CoachReply(context.Background(), CoachReplyRequest{
		ConversationID: "not-a-uuid",
		Message:        "hi",
	})
	assert.Error(t, err)
}

func TestBinderGenerate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/binder-generate", r.URL.Path)

		var req BinderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.UserID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(BinderResponse{
			StorageKey:  "binders/user-1/season-2.pdf",
			ContentType: "application/pdf",
			Size:        14260,
		})
	}))

	got, err := c.BinderGenerate(context.Background(), BinderRequest{
		UserID:   "user-1",
		SeasonID: "0b06f4a6-47f6-4e54-9a6b-01e77d09d2ad",
	})
	require.NoError(t, err)
	assert.Equal(t, "binders/user-1/season-2.pdf", got.StorageKey)
	assert.Equal(t, int64(14260), got.Size)
}

func TestBinderGenerateRejectsBadSeasonID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("validation should reject before the request is sent")
	}))

	_, err := c.BinderGenerate(context.Background(), BinderRequest{
		UserID:   "user-1",
		SeasonID: "season-2",
	})
	assert.Error(t, err)
}

func TestTagSync(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"synced": true})
		}))
		err := c.TagSync(context.Background(), TagSyncRequest{
			UserID: "user-1",
			Add:    []string{"season-2"},
		})
		assert.NoError(t, err)
	})

	t.Run("not applied", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"synced": false})
		}))
		err := c.TagSync(context.Background(), TagSyncRequest{UserID: "user-1"})
		assert.Error(t, err)
	})
}

func TestEmbed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))

	got, err := c.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.3, got[1][0], 1e-6)
}

func TestEmbedCountMismatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1}},
		})
	}))

	_, err := c.Embed(context.Background(), []string{"one", "two"})
	assert.Error(t, err)
}
