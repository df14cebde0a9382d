package analyzer

import "github.com/evopyramid/evonexus/internal/memory"

// #region intent

// IntentCategory classifies the dominant intent of a raw input.
type IntentCategory string

const (
	IntentTechnical     IntentCategory = "technical"
	IntentPhilosophical IntentCategory = "philosophical"
	IntentCreative      IntentCategory = "creative"
	IntentMeta          IntentCategory = "meta"
	IntentFlood         IntentCategory = "flood"
)

// IntentSignal is the intent analyzer output. Immutable once produced.
type IntentSignal struct {
	Category   IntentCategory
	Urgency    float64
	Confidence float64
}

// DefaultIntent is the safe fallback used when the intent analyzer times out.
func DefaultIntent() IntentSignal {
	return IntentSignal{Category: IntentMeta, Urgency: 0, Confidence: 0.1}
}

// #endregion intent

// #region affect

// ToneNeutral is the affect label when no tone markers match.
const ToneNeutral = "neutral"

// AffectSignal is the affect analyzer output. Immutable once produced.
type AffectSignal struct {
	Tone      string
	Intensity float64
}

// DefaultAffect is the safe fallback used when the affect analyzer times out.
func DefaultAffect() AffectSignal {
	return AffectSignal{Tone: ToneNeutral, Intensity: 0}
}

// #endregion affect

// #region signals

// Signals bundles the three analyzer outputs for one input.
// Degraded lists the analyzers that timed out and fell back to defaults.
type Signals struct {
	Intent   IntentSignal
	Affect   AffectSignal
	Memory   memory.LookupResult
	Degraded []string
}

// #endregion signals
