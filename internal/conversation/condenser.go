// Package conversation prepares coaching threads for the hosted coach:
// condensing history to a token budget and extracting the affect
// history that drives the escalation trend.
package conversation

import (
	"time"

	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/affect"
)

// Message is one classified thread message.
type Message struct {
	Role      string
	Content   string
	Emotion   affect.Emotion
	Intensity float64
	CreatedAt time.Time
}

// Condenser applies salience rules when a thread exceeds the coach
// function's token budget.
type Condenser struct {
	// TokenBudget caps the condensed history's approximate tokens.
	TokenBudget int
	// KeepNewest messages are always retained.
	KeepNewest int
	// SalientIntensity marks a message as too important to drop.
	SalientIntensity float64

	logger *zap.Logger
}

// NewCondenser creates a condenser with the platform defaults.
func NewCondenser(tokenBudget int, logger *zap.Logger) *Condenser {
	if tokenBudget <= 0 {
		tokenBudget = 2000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Condenser{
		TokenBudget:      tokenBudget,
		KeepNewest:       4,
		SalientIntensity: 0.6,
		logger:           logger,
	}
}

// ApproxTokens estimates the token count of a text as len/4.
func ApproxTokens(text string) int {
	return len(text) / 4
}

func totalTokens(history []Message) int {
	total := 0
	for _, m := range history {
		total += ApproxTokens(m.Content)
	}
	return total
}

// Condense trims a thread to the token budget. The newest messages are
// always kept, high-intensity messages are kept as long as the budget
// allows, and mid-history small talk goes first. Order is preserved.
func (c *Condenser) Condense(history []Message) []Message {
	if totalTokens(history) <= c.TokenBudget {
		return history
	}

	keep := make([]bool, len(history))
	budget := c.TokenBudget

	// Newest first, unconditionally.
	newest := len(history) - c.KeepNewest
	if newest < 0 {
		newest = 0
	}
	for i := newest; i < len(history); i++ {
		keep[i] = true
		budget -= ApproxTokens(history[i].Content)
	}

	// Then salient messages, newest to oldest, while budget remains.
	for i := newest - 1; i >= 0 && budget > 0; i-- {
		if history[i].Intensity < c.SalientIntensity {
			continue
		}
		cost := ApproxTokens(history[i].Content)
		if cost > budget {
			continue
		}
		keep[i] = true
		budget -= cost
	}

	// Finally backfill remaining history, newest to oldest.
	for i := newest - 1; i >= 0 && budget > 0; i-- {
		if keep[i] {
			continue
		}
		cost := ApproxTokens(history[i].Content)
		if cost > budget {
			continue
		}
		keep[i] = true
		budget -= cost
	}

	condensed := make([]Message, 0, len(history))
	for i, m := range history {
		if keep[i] {
			condensed = append(condensed, m)
		}
	}

	c.logger.Debug("history condensed",
		zap.Int("messages_in", len(history)),
		zap.Int("messages_out", len(condensed)),
		zap.Int("tokens_out", totalTokens(condensed)))
	return condensed
}

// AffectHistory extracts the user-message affect points feeding the
// escalation trend, oldest first.
func AffectHistory(history []Message) []affect.HistoryPoint {
	points := make([]affect.HistoryPoint, 0, len(history))
	for _, m := range history {
		if m.Role != "user" || m.Emotion == "" {
			continue
		}
		points = append(points, affect.HistoryPoint{
			Emotion:   m.Emotion,
			Intensity: m.Intensity,
			At:        m.CreatedAt,
		})
	}
	return points
}

// Texts renders a condensed history as role-prefixed lines for the
// coach function request.
func Texts(history []Message) []string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return lines
}
