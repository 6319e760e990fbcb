// Package affect classifies free-text coaching messages into an emotion
// label, a bounded intensity score, linguistic markers and a recommended
// response depth. Classification is rule-based over fixed regex tables;
// an optional hosted analyzer can override the emotion and intensity.
package affect

import (
	"context"

	"go.uber.org/zap"
)

// Overrider is the hosted affect analyzer. Implementations live in the
// functions package; any failure falls back to the rules result.
type Overrider interface {
	AnalyzeAffect(ctx context.Context, message string) (*RemoteResult, error)
}

// Classifier assigns affect labels to messages. It is stateless: history
// is supplied by the caller on every request.
type Classifier struct {
	override Overrider
	logger   *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithOverride enables the hosted analyzer override.
func WithOverride(o Overrider) Option {
	return func(c *Classifier) { c.override = o }
}

// NewClassifier creates a classifier.
func NewClassifier(logger *zap.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Classifier{logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// minConfidence is the floor below which a remote result is ignored.
const minConfidence = 0.5

// Classify runs the regex tables over the message and, when an override
// is configured, lets the hosted analyzer replace emotion and intensity.
// Markers, trend and depth are always computed locally.
func (c *Classifier) Classify(ctx context.Context, in Input) Classification {
	result := c.classifyRules(in)

	if c.override == nil {
		return result
	}

	remote, err := c.override.AnalyzeAffect(ctx, in.Message)
	if err != nil {
		c.logger.Warn("affect override failed, using rules result", zap.Error(err))
		return result
	}
	if remote == nil || remote.Confidence < minConfidence {
		return result
	}

	result.Emotion = remote.Emotion
	result.Intensity = clamp01(remote.Intensity)
	result.Trend = trendOf(in.History, result.Intensity)
	result.Depth = depthOf(result.Emotion, result.Intensity, result.Markers)
	result.Source = "remote"
	return result
}

// classifyRules is the pure regex path.
func (c *Classifier) classifyRules(in Input) Classification {
	emotion, matches := dominantEmotion(in.Message)
	markers := detectMarkers(in.Message)
	intensity := intensityOf(in.Message, emotion, matches)
	trend := trendOf(in.History, intensity)

	return Classification{
		Emotion:   emotion,
		Intensity: intensity,
		Markers:   markers,
		Trend:     trend,
		Depth:     depthOf(emotion, intensity, markers),
		Source:    "rules",
	}
}

// dominantEmotion returns the emotion with the most pattern matches and
// its match count. Ties go to the first table in iteration order only
// when counts are equal and nonzero, so the result is stabilized by
// checking all tables and preferring the higher count.
func dominantEmotion(message string) (Emotion, int) {
	best := EmotionNeutral
	bestCount := 0

	for emotion, patterns := range emotionPatterns {
		count := 0
		for _, p := range patterns {
			count += len(p.FindAllString(message, -1))
		}
		if count > bestCount || (count == bestCount && count > 0 && emotion < best) {
			best = emotion
			bestCount = count
		}
	}

	return best, bestCount
}

// intensityOf computes the bounded intensity score.
//
// Base 0.25 for any emotion match, +0.15 per additional match, plus
// modifier boosts: +0.1 per intensifier, -0.1 per dampener, +0.05 per
// exclamation run, +0.1 if shouting. Neutral messages only accumulate
// modifier boosts from a 0.1 base. Clamped to [0, 1].
func intensityOf(message string, emotion Emotion, matches int) float64 {
	var score float64
	if emotion == EmotionNeutral || matches == 0 {
		score = 0.1
	} else {
		score = 0.25 + 0.15*float64(matches-1)
	}

	score += 0.1 * float64(len(intensifierPattern.FindAllString(message, -1)))
	score -= 0.1 * float64(len(dampenerPattern.FindAllString(message, -1)))
	score += 0.05 * float64(len(exclamationPattern.FindAllString(message, -1)))
	if shoutingPattern.MatchString(message) {
		score += 0.1
	}

	return clamp01(score)
}

// detectMarkers runs the marker tables.
func detectMarkers(message string) Markers {
	match := func(name string) bool {
		for _, p := range markerPatterns[name] {
			if p.MatchString(message) {
				return true
			}
		}
		return false
	}

	return Markers{
		Minimizing:      match("minimizing"),
		Catastrophizing: match("catastrophizing"),
		Absolutist:      match("absolutist"),
		SelfBlame:       match("self_blame"),
		Hedging:         match("hedging"),
		HelpSeeking:     match("help_seeking"),
		Hopelessness:    match("hopelessness"),
	}
}

// trendDelta is the intensity movement that counts as a trend change.
const trendDelta = 0.15

// trendOf applies the three-point difference heuristic: compare the
// current intensity against the intensity two messages back. Fewer than
// two history points yields steady.
func trendOf(history []HistoryPoint, current float64) Trend {
	if len(history) < 2 {
		return TrendSteady
	}

	anchor := history[len(history)-2].Intensity
	switch {
	case current-anchor >= trendDelta:
		return TrendRising
	case anchor-current >= trendDelta:
		return TrendEasing
	default:
		return TrendSteady
	}
}

// depthOf maps emotion and intensity into the response depth table.
// Hopelessness always hands off. Positive and neutral emotions never go
// past reflect.
func depthOf(emotion Emotion, intensity float64, markers Markers) Depth {
	if markers.Hopelessness {
		return DepthHandoff
	}

	if !negativeEmotions[emotion] {
		if intensity >= 0.6 {
			return DepthReflect
		}
		return DepthAcknowledge
	}

	switch {
	case intensity >= 0.85:
		return DepthHandoff
	case intensity >= 0.6:
		return DepthProtocol
	case intensity >= 0.3:
		return DepthReflect
	default:
		return DepthAcknowledge
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
