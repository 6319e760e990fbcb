package affect

import "time"

// Emotion is the primary affect label assigned to a message.
type Emotion string

const (
	EmotionNeutral     Emotion = "neutral"
	EmotionOverwhelm   Emotion = "overwhelm"
	EmotionAnxiety     Emotion = "anxiety"
	EmotionFrustration Emotion = "frustration"
	EmotionSadness     Emotion = "sadness"
	EmotionShame       Emotion = "shame"
	EmotionFear        Emotion = "fear"
	EmotionNumbness    Emotion = "numbness"
	EmotionExhaustion  Emotion = "exhaustion"
	EmotionHope        Emotion = "hope"
	EmotionExcitement  Emotion = "excitement"
	EmotionGratitude   Emotion = "gratitude"
	EmotionConfidence  Emotion = "confidence"
)

// Trend describes how intensity is moving across recent messages.
type Trend string

const (
	TrendRising Trend = "rising"
	TrendSteady Trend = "steady"
	TrendEasing Trend = "easing"
)

// Depth is the recommended response depth for the coach reply.
type Depth string

const (
	DepthAcknowledge Depth = "acknowledge"
	DepthReflect     Depth = "reflect"
	DepthProtocol    Depth = "protocol"
	DepthHandoff     Depth = "handoff"
)

// Markers are boolean linguistic signals detected alongside the emotion.
type Markers struct {
	Minimizing      bool `json:"minimizing"`
	Catastrophizing bool `json:"catastrophizing"`
	Absolutist      bool `json:"absolutist"`
	SelfBlame       bool `json:"self_blame"`
	Hedging         bool `json:"hedging"`
	HelpSeeking     bool `json:"help_seeking"`
	Hopelessness    bool `json:"hopelessness"`
}

// HistoryPoint is one prior classified message, supplied by the caller.
type HistoryPoint struct {
	Emotion   Emotion   `json:"emotion"`
	Intensity float64   `json:"intensity"`
	At        time.Time `json:"at"`
}

// Input is a single classification request.
type Input struct {
	Message string         `json:"message"`
	History []HistoryPoint `json:"history,omitempty"`
}

// Classification is the full affect result for one message.
type Classification struct {
	Emotion   Emotion `json:"emotion"`
	Intensity float64 `json:"intensity"`
	Markers   Markers `json:"markers"`
	Trend     Trend   `json:"trend"`
	Depth     Depth   `json:"depth"`

	// Source is "rules" for the regex tables or "remote" when the
	// hosted analyzer overrode the local result.
	Source string `json:"source"`
}

// RemoteResult is the payload returned by the hosted affect analyzer.
type RemoteResult struct {
	Emotion    Emotion `json:"emotion"`
	Intensity  float64 `json:"intensity"`
	Confidence float64 `json:"confidence"`
}
