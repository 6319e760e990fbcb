package affect

import "regexp"

// Emotion tables. Each emotion carries a fixed set of patterns; the
// emotion with the most matches wins and the match count feeds the
// intensity arithmetic. Patterns are applied case-insensitively.

var emotionPatterns = map[Emotion][]*regexp.Regexp{
	EmotionOverwhelm: {
		regexp.MustCompile(`(?i)\boverwhelm(ed|ing)?\b`),
		regexp.MustCompile(`(?i)\btoo much\b`),
		regexp.MustCompile(`(?i)\bdrowning\b`),
		regexp.MustCompile(`(?i)\bcan'?t keep up\b`),
		regexp.MustCompile(`(?i)\bburied\b`),
		regexp.MustCompile(`(?i)\bon my plate\b`),
	},
	EmotionAnxiety: {
		regexp.MustCompile(`(?i)\banxious\b|\banxiety\b`),
		regexp.MustCompile(`(?i)\bworried?\b|\bworrying\b`),
		regexp.MustCompile(`(?i)\bnervous\b`),
		regexp.MustCompile(`(?i)\bwhat if\b`),
		regexp.MustCompile(`(?i)\bon edge\b`),
		regexp.MustCompile(`(?i)\bcan'?t stop thinking\b`),
	},
	EmotionFrustration: {
		regexp.MustCompile(`(?i)\bfrustrat(ed|ing|ion)\b`),
		regexp.MustCompile(`(?i)\bangry\b|\banger\b`),
		regexp.MustCompile(`(?i)\bfed up\b`),
		regexp.MustCompile(`(?i)\bsick of\b`),
		regexp.MustCompile(`(?i)\bannoyed\b`),
		regexp.MustCompile(`(?i)\bpissed\b`),
	},
	EmotionSadness: {
		regexp.MustCompile(`(?i)\bsad\b|\bsadness\b`),
		regexp.MustCompile(`(?i)\bdown\b.{0,12}\blately\b`),
		regexp.MustCompile(`(?i)\bgrief\b|\bgrieving\b`),
		regexp.MustCompile(`(?i)\blost\b.{0,16}\b(someone|him|her|them)\b`),
		regexp.MustCompile(`(?i)\bcrying\b|\bcried\b`),
		regexp.MustCompile(`(?i)\bempty\b`),
	},
	EmotionShame: {
		regexp.MustCompile(`(?i)\bashamed\b|\bshame\b`),
		regexp.MustCompile(`(?i)\bembarrass(ed|ing)\b`),
		regexp.MustCompile(`(?i)\bfraud\b|\bimpost[eo]r\b`),
		regexp.MustCompile(`(?i)\bnot good enough\b`),
		regexp.MustCompile(`(?i)\bwhat'?s wrong with me\b`),
	},
	EmotionFear: {
		regexp.MustCompile(`(?i)\bafraid\b|\bfear(ful)?\b`),
		regexp.MustCompile(`(?i)\bscared\b`),
		regexp.MustCompile(`(?i)\bterrified\b`),
		regexp.MustCompile(`(?i)\bdread(ing)?\b`),
		regexp.MustCompile(`(?i)\bpanic(king|ked)?\b`),
	},
	EmotionNumbness: {
		regexp.MustCompile(`(?i)\bnumb\b`),
		regexp.MustCompile(`(?i)\bfeel nothing\b`),
		regexp.MustCompile(`(?i)\bgoing through the motions\b`),
		regexp.MustCompile(`(?i)\bcheckt?ed out\b`),
		regexp.MustCompile(`(?i)\bdisconnected\b`),
	},
	EmotionExhaustion: {
		regexp.MustCompile(`(?i)\bexhausted?\b|\bexhaustion\b`),
		regexp.MustCompile(`(?i)\bburn(ed|t)? ?out\b`),
		regexp.MustCompile(`(?i)\bdrained\b`),
		regexp.MustCompile(`(?i)\bdepleted\b`),
		regexp.MustCompile(`(?i)\brunning on empty\b`),
		regexp.MustCompile(`(?i)\bno energy\b`),
	},
	EmotionHope: {
		regexp.MustCompile(`(?i)\bhopeful\b|\bhope so\b`),
		regexp.MustCompile(`(?i)\blooking forward\b`),
		regexp.MustCompile(`(?i)\bturning a corner\b`),
		regexp.MustCompile(`(?i)\bgetting better\b`),
		regexp.MustCompile(`(?i)\blight at the end\b`),
	},
	EmotionExcitement: {
		regexp.MustCompile(`(?i)\bexcited?\b|\bexciting\b`),
		regexp.MustCompile(`(?i)\bcan'?t wait\b`),
		regexp.MustCompile(`(?i)\bthrilled\b`),
		regexp.MustCompile(`(?i)\bpumped\b`),
		regexp.MustCompile(`(?i)\bamazing\b`),
	},
	EmotionGratitude: {
		regexp.MustCompile(`(?i)\bgrateful\b|\bgratitude\b`),
		regexp.MustCompile(`(?i)\bthank(ful| you)\b`),
		regexp.MustCompile(`(?i)\bappreciate\b`),
		regexp.MustCompile(`(?i)\bblessed\b`),
	},
	EmotionConfidence: {
		regexp.MustCompile(`(?i)\bconfident\b|\bconfidence\b`),
		regexp.MustCompile(`(?i)\bi'?ve got this\b`),
		regexp.MustCompile(`(?i)\bproud of\b`),
		regexp.MustCompile(`(?i)\bon track\b`),
		regexp.MustCompile(`(?i)\bcrushed it\b|\bnailed it\b`),
	},
}

// negativeEmotions gates the handoff depth: a high-intensity positive
// emotion never escalates.
var negativeEmotions = map[Emotion]bool{
	EmotionOverwhelm:   true,
	EmotionAnxiety:     true,
	EmotionFrustration: true,
	EmotionSadness:     true,
	EmotionShame:       true,
	EmotionFear:        true,
	EmotionNumbness:    true,
	EmotionExhaustion:  true,
}

// Linguistic marker tables.

var markerPatterns = map[string][]*regexp.Regexp{
	"minimizing": {
		regexp.MustCompile(`(?i)\bi guess it'?s fine\b`),
		regexp.MustCompile(`(?i)\bnot a big deal\b`),
		regexp.MustCompile(`(?i)\bit'?s (fine|whatever|nothing)\b`),
		regexp.MustCompile(`(?i)\bdoesn'?t (really )?matter\b`),
		regexp.MustCompile(`(?i)\bcould be worse\b`),
		regexp.MustCompile(`(?i)\bi'?m (probably )?overreacting\b`),
	},
	"catastrophizing": {
		regexp.MustCompile(`(?i)\beverything is (ruined|falling apart|a mess)\b`),
		regexp.MustCompile(`(?i)\bworst\b`),
		regexp.MustCompile(`(?i)\bdisaster\b`),
		regexp.MustCompile(`(?i)\bnever (going to|gonna) (work|recover|change)\b`),
		regexp.MustCompile(`(?i)\bit'?s (all )?over\b`),
	},
	"absolutist": {
		regexp.MustCompile(`(?i)\balways\b`),
		regexp.MustCompile(`(?i)\bnever\b`),
		regexp.MustCompile(`(?i)\bevery(one|thing| single time)\b`),
		regexp.MustCompile(`(?i)\bno one\b|\bnobody\b`),
		regexp.MustCompile(`(?i)\bcompletely\b|\btotally\b`),
	},
	"self_blame": {
		regexp.MustCompile(`(?i)\b(it'?s|this is) (all )?my fault\b`),
		regexp.MustCompile(`(?i)\bi ruined?\b`),
		regexp.MustCompile(`(?i)\bi should have\b|\bi shouldn'?t have\b`),
		regexp.MustCompile(`(?i)\bi'?m (such )?(a|an) (failure|idiot|mess)\b`),
		regexp.MustCompile(`(?i)\bblame myself\b`),
	},
	"hedging": {
		regexp.MustCompile(`(?i)\bi guess\b`),
		regexp.MustCompile(`(?i)\bsort of\b|\bkind of\b|\bkinda\b`),
		regexp.MustCompile(`(?i)\bmaybe\b`),
		regexp.MustCompile(`(?i)\bi don'?t know,? but\b`),
		regexp.MustCompile(`(?i)\bor something\b`),
	},
	"help_seeking": {
		regexp.MustCompile(`(?i)\bwhat (should|do) i do\b`),
		regexp.MustCompile(`(?i)\bi need (help|advice|guidance)\b`),
		regexp.MustCompile(`(?i)\bcan you help\b`),
		regexp.MustCompile(`(?i)\bany (advice|suggestions)\b`),
		regexp.MustCompile(`(?i)\bwhere do i (start|even start)\b`),
	},
	"hopelessness": {
		regexp.MustCompile(`(?i)\bhopeless\b`),
		regexp.MustCompile(`(?i)\bwhat'?s the point\b`),
		regexp.MustCompile(`(?i)\bnothing (will|is going to) change\b`),
		regexp.MustCompile(`(?i)\bgive up\b|\bgiving up\b`),
		regexp.MustCompile(`(?i)\bcan'?t go on\b`),
		regexp.MustCompile(`(?i)\bno way out\b`),
	},
}

// Intensity modifiers.

var (
	intensifierPattern = regexp.MustCompile(`(?i)\b(really|so|very|extremely|completely|absolutely|incredibly)\b`)
	dampenerPattern    = regexp.MustCompile(`(?i)\b(slightly|a (little|bit)|somewhat|mildly)\b`)
	exclamationPattern = regexp.MustCompile(`!{1,}`)
	shoutingPattern    = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)
