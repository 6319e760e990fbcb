package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "miod_test.db"),
	}
	s, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestVerifySchema(t *testing.T) {
	s := newTestStore(t)

	missing, err := s.VerifySchema(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestUpsertChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []KnowledgeChunk{
		{
			SourceFile:         "26_emergency_protocols.md",
			ChunkNumber:        1,
			ChunkText:          "Box breathing: four counts in, hold, four counts out.",
			Category:           "emergency",
			ApplicablePatterns: []string{"anxiety_spiral"},
			TemperamentMatch:   []string{"warrior", "sage"},
			TimeCommitmentMin:  2,
			TimeCommitmentMax:  5,
			DifficultyLevel:    "beginner",
			Emergency:          true,
			TokensApprox:       13,
		},
		{
			SourceFile:        "26_emergency_protocols.md",
			ChunkNumber:       2,
			ChunkText:         "Grounding via the five senses.",
			Category:          "emergency",
			TimeCommitmentMax: 10,
			DifficultyLevel:   "beginner",
			Emergency:         true,
		},
	}

	n, err := s.UpsertChunks(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	firstID := chunks[0].ID
	assert.Equal(t, ChunkID("26_emergency_protocols.md", 1), firstID)

	// Same (source_file, chunk_number) pair updates in place and keeps
	// its identity.
	chunks[0].ChunkText = "Box breathing, revised."
	chunks[0].ID = ""
	_, err = s.UpsertChunks(ctx, chunks[:1])
	require.NoError(t, err)
	assert.Equal(t, firstID, chunks[0].ID)

	count, err = s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	revised, err := s.GetChunk(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Box breathing, revised.", revised.ChunkText)

	got, err := s.ListChunks(ctx, ChunkFilter{Category: "emergency"})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestListChunksFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []KnowledgeChunk{
		{
			SourceFile:         "03_patterns.md",
			ChunkNumber:        1,
			ChunkText:          "Pattern interrupt for rumination.",
			Category:           "patterns",
			ApplicablePatterns: []string{"rumination"},
			TemperamentMatch:   []string{"sage"},
			TimeCommitmentMax:  15,
			DifficultyLevel:    "intermediate",
		},
		{
			SourceFile:         "03_patterns.md",
			ChunkNumber:        2,
			ChunkText:          "Somatic reset for overwhelm.",
			Category:           "patterns",
			ApplicablePatterns: []string{"overwhelm_shutdown"},
			TemperamentMatch:   []string{"warrior"},
			TimeCommitmentMax:  5,
			DifficultyLevel:    "beginner",
			Emergency:          true,
		},
		{
			SourceFile:        "10_practices.md",
			ChunkNumber:       1,
			ChunkText:         "Weekly reflection template.",
			Category:          "practices",
			TemperamentMatch:  []string{"builder"},
			TimeCommitmentMax: 45,
			DifficultyLevel:   "advanced",
		},
	}
	_, err := s.UpsertChunks(ctx, seed)
	require.NoError(t, err)

	got, err := s.ListChunks(ctx, ChunkFilter{Pattern: "rumination"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pattern interrupt for rumination.", got[0].ChunkText)

	got, err = s.ListChunks(ctx, ChunkFilter{Temperament: "warrior"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Somatic reset for overwhelm.", got[0].ChunkText)

	got, err = s.ListChunks(ctx, ChunkFilter{MaxTimeCommit: 15})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListChunks(ctx, ChunkFilter{EmergencyOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Emergency)

	got, err = s.ListChunks(ctx, ChunkFilter{Difficulty: "advanced"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "practices", got[0].Category)

	got, err = s.ListChunks(ctx, ChunkFilter{Category: "patterns", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUpdateChunkGlossary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []KnowledgeChunk{{
		SourceFile:  "07_finance.md",
		ChunkNumber: 1,
		ChunkText:   "Amortization schedules determine the principal paydown.",
	}}
	_, err := s.UpsertChunks(ctx, seed)
	require.NoError(t, err)

	err = s.UpdateChunkGlossary(ctx, seed[0].ID,
		"The payment plan shows how much of the loan you pay back.",
		[]string{"amortization", "principal"}, 14.2, 6.8)
	require.NoError(t, err)

	got, err := s.GetChunk(ctx, seed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"amortization", "principal"}, got.GlossaryTerms)
	assert.InDelta(t, 14.2, got.ReadingLevelBefore, 1e-9)
	assert.InDelta(t, 6.8, got.ReadingLevelAfter, 1e-9)
	assert.NotEmpty(t, got.SimplifiedText)

	err = s.UpdateChunkGlossary(ctx, "missing", "x", nil, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteChunksBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []KnowledgeChunk{
		{SourceFile: "a.md", ChunkNumber: 1, ChunkText: "one"},
		{SourceFile: "a.md", ChunkNumber: 2, ChunkText: "two"},
		{SourceFile: "b.md", ChunkNumber: 1, ChunkText: "three"},
	}
	_, err := s.UpsertChunks(ctx, seed)
	require.NoError(t, err)

	deleted, err := s.DeleteChunksBySource(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := s.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestConversationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "user-1", "Morning check-in", nil)
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, ConversationMessage{
		ConversationID: conv.ID,
		Role:           "user",
		Content:        "I feel like I can't keep up this week.",
		Emotion:        "overwhelm",
		Intensity:      0.55,
	})
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, ConversationMessage{
		ConversationID: conv.ID,
		Role:           "coach",
		Content:        "Let's break that down together.",
	})
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "coach", msgs[1].Role)

	convs, err := s.ListConversations(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, convs, 1)

	require.NoError(t, s.DeleteConversation(ctx, conv.ID))

	msgs, err = s.ListMessages(ctx, conv.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = s.GetConversation(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteConversation(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, Task{UserID: "user-1", Title: "Daily walk"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, Task{UserID: "user-1", Title: "Budget review"})
	require.NoError(t, err)

	open, err := s.ListTasks(ctx, "user-1", true)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	require.NoError(t, s.CompleteTask(ctx, task.ID))

	open, err = s.ListTasks(ctx, "user-1", true)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Budget review", open[0].Title)

	// Completing twice is a no-op that reports not found.
	err = s.CompleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListTasks(ctx, "user-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestShareLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report, err := s.CreateReport(ctx, Report{UserID: "user-1", Kind: "weekly", Title: "Week 3"})
	require.NoError(t, err)

	link, err := s.CreateShareLink(ctx, "report", report.ID, time.Hour)
	require.NoError(t, err)
	assert.Len(t, link.Token, 48)

	got, err := s.ResolveShareLink(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.TargetID)

	require.NoError(t, s.RevokeShareLink(ctx, link.ID))

	_, err = s.ResolveShareLink(ctx, link.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Expired links do not resolve.
	expired, err := s.CreateShareLink(ctx, "report", report.ID, -time.Minute)
	require.NoError(t, err)
	_, err = s.ResolveShareLink(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPushSubscriptions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.UpsertPushSubscription(ctx, PushSubscription{
		UserID:   "user-1",
		Endpoint: "https://push.example.com/send/abc",
		P256dh:   "key-1",
		Auth:     "auth-1",
	})
	require.NoError(t, err)

	// Re-registering the same endpoint replaces the keys.
	_, err = s.UpsertPushSubscription(ctx, PushSubscription{
		UserID:   "user-1",
		Endpoint: "https://push.example.com/send/abc",
		P256dh:   "key-2",
		Auth:     "auth-2",
	})
	require.NoError(t, err)

	subs, err := s.ListPushSubscriptions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)
	assert.Equal(t, "key-2", subs[0].P256dh)

	require.NoError(t, s.DeletePushSubscription(ctx, sub.Endpoint))
	err = s.DeletePushSubscription(ctx, sub.Endpoint)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPartnerships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SavePartnership(ctx, Partnership{
		UserID: "user-1", Tier: "silver", Composite: 67.5, Status: "pending",
	})
	require.NoError(t, err)

	second, err := s.SavePartnership(ctx, Partnership{
		UserID: "user-1", Tier: "gold", Composite: 74.0, Status: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetPartnership(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "gold", got.Tier)
	assert.Equal(t, "active", got.Status)

	_, err = s.GetPartnership(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeasons(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	_, err := s.CreateSeason(ctx, Season{
		Name:     "Spring 2026",
		StartsAt: now.AddDate(0, -4, 0),
		EndsAt:   now.AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	active, err := s.CreateSeason(ctx, Season{
		Name:     "Summer 2026",
		StartsAt: now.AddDate(0, -1, 0),
		EndsAt:   now.AddDate(0, 2, 0),
	})
	require.NoError(t, err)

	current, err := s.CurrentSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, current.ID)

	seasons, err := s.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, "Summer 2026", seasons[0].Name)
}

func TestAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendAudit(ctx, "user-1", "document.upload", "intake.pdf"))
	require.NoError(t, s.AppendAudit(ctx, "user-1", "report.share", "week-3"))

	events, err := s.RecentAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.NotEmpty(t, e.Action)
		assert.Equal(t, "user-1", e.UserID)
	}
}

func TestAssessments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateAssessment(ctx, Assessment{
		UserID:      "user-1",
		Kind:        "intake",
		Temperament: "sage",
		Patterns:    []string{"rumination"},
		Scores:      map[string]float64{"energy": 0.4},
	})
	require.NoError(t, err)
	_, err = s.CreateAssessment(ctx, Assessment{
		UserID:      "user-1",
		Kind:        "intake",
		Temperament: "sage",
		Patterns:    []string{"rumination", "perfectionism"},
	})
	require.NoError(t, err)

	latest, err := s.LatestAssessment(ctx, "user-1", "intake")
	require.NoError(t, err)
	assert.Len(t, latest.Patterns, 2)

	_, err = s.LatestAssessment(ctx, "user-1", "progress")
	assert.ErrorIs(t, err, ErrNotFound)
}
