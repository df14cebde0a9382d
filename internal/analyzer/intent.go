package analyzer

import (
	"regexp"
	"strings"
)

// #region tokenize

var wordPattern = regexp.MustCompile(`[\w-]+`)

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// #endregion tokenize

// #region intent-analyzer

// IntentAnalyzer classifies raw input into an intent category via keyword
// heuristics. No model call; identical input yields identical output.
type IntentAnalyzer struct {
	keywords map[IntentCategory][]string
	urgency  []string
}

// NewIntentAnalyzer builds an analyzer from configured keyword tables.
// Map keys are category names; unknown keys are ignored.
func NewIntentAnalyzer(keywords map[string][]string, urgencyMarkers []string) *IntentAnalyzer {
	kw := make(map[IntentCategory][]string, len(keywords))
	for name, words := range keywords {
		switch IntentCategory(name) {
		case IntentTechnical, IntentPhilosophical, IntentCreative, IntentMeta:
			kw[IntentCategory(name)] = words
		}
	}
	return &IntentAnalyzer{keywords: kw, urgency: urgencyMarkers}
}

// Analyze produces a fresh IntentSignal for the input.
func (a *IntentAnalyzer) Analyze(text string) IntentSignal {
	tokens := tokenize(text)

	if isFlood(tokens) {
		return IntentSignal{Category: IntentFlood, Urgency: a.urgencyScore(text, tokens), Confidence: 0.9}
	}

	// Score every category; pick the best, count how many matched at all.
	best := IntentMeta
	bestScore := 0.0
	matchedCategories := 0
	for _, cat := range []IntentCategory{IntentTechnical, IntentPhilosophical, IntentCreative, IntentMeta} {
		score := keywordRatio(tokens, a.keywords[cat])
		if score > 0 {
			matchedCategories++
		}
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}

	return IntentSignal{
		Category:   best,
		Urgency:    a.urgencyScore(text, tokens),
		Confidence: confidence(matchedCategories),
	}
}

// urgencyScore scales urgency marker hits and exclamation counts into [0,1].
func (a *IntentAnalyzer) urgencyScore(text string, tokens []string) float64 {
	markers := 0
	markerSet := make(map[string]struct{}, len(a.urgency))
	for _, m := range a.urgency {
		markerSet[m] = struct{}{}
	}
	for _, tok := range tokens {
		if _, ok := markerSet[tok]; ok {
			markers++
		}
	}
	bangs := strings.Count(text, "!")
	if bangs > 3 {
		bangs = 3
	}
	return clamp(0.25 + 0.3*float64(markers) + 0.12*float64(bangs))
}

// confidence drops as more distinct categories match: ambiguity lowers trust.
func confidence(matchedCategories int) float64 {
	if matchedCategories == 0 {
		return 0.2
	}
	c := 0.95 - 0.25*float64(matchedCategories-1)
	if c < 0.2 {
		return 0.2
	}
	return c
}

// isFlood flags degenerate repeated input: long enough to matter and
// dominated by a tiny vocabulary.
func isFlood(tokens []string) bool {
	if len(tokens) < 10 {
		return false
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	return float64(len(unique))/float64(len(tokens)) <= 0.3
}

// #endregion intent-analyzer

// #region helpers

// keywordRatio is the fraction of tokens present in the keyword set.
func keywordRatio(tokens []string, keywords []string) float64 {
	if len(tokens) == 0 || len(keywords) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[k] = struct{}{}
	}
	matches := 0
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(tokens))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
