package analyzer

import "sort"

// #region affect-analyzer

// AffectAnalyzer maps keyword hits to a dominant tone with an intensity
// scaled by marker density.
type AffectAnalyzer struct {
	tones map[string][]string
}

// NewAffectAnalyzer builds an analyzer from the configured tone table.
func NewAffectAnalyzer(toneKeywords map[string][]string) *AffectAnalyzer {
	return &AffectAnalyzer{tones: toneKeywords}
}

// Analyze produces a fresh AffectSignal for the input. With no tone markers
// the signal is neutral with zero intensity.
func (a *AffectAnalyzer) Analyze(text string) AffectSignal {
	tokens := tokenize(text)

	// Tones are scanned in lexical order so ties resolve the same way
	// on every run.
	names := make([]string, 0, len(a.tones))
	for tone := range a.tones {
		names = append(names, tone)
	}
	sort.Strings(names)

	dominant := ToneNeutral
	dominantScore := 0.0
	for _, tone := range names {
		score := keywordRatio(tokens, a.tones[tone])
		if score > dominantScore {
			dominant = tone
			dominantScore = score
		}
	}
	if dominantScore == 0 {
		return DefaultAffect()
	}

	lengthBonus := float64(len(text)) / 200.0
	if lengthBonus > 0.15 {
		lengthBonus = 0.15
	}
	return AffectSignal{
		Tone:      dominant,
		Intensity: clamp(0.45 + 0.4*dominantScore + lengthBonus),
	}
}

// #endregion affect-analyzer
