package council

import (
	"context"
	"fmt"
	"sort"

	"github.com/evopyramid/evonexus/internal/analyzer"
	"github.com/evopyramid/evonexus/internal/router"
)

// #region default-registry

// DefaultVoices builds the standard council from configured weights.
// Unknown ids in the weight map are ignored; missing ids fall back to the
// documented defaults. Registration is an explicit list, ordered by id.
func DefaultVoices(weights map[string]float64) []Voice {
	w := func(id string, fallback float64) float64 {
		if v, ok := weights[id]; ok {
			return v
		}
		return fallback
	}
	voices := []Voice{
		&kernelVoice{id: "kernel", weight: w("kernel", 1.0)},
		&codexVoice{id: "codex", weight: w("codex", 0.95)},
		&memoryVoice{id: "evo24", weight: w("evo24", 0.90)},
		&affectVoice{id: "exevo", weight: w("exevo", 0.85)},
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].ID() < voices[j].ID() })
	return voices
}

// #endregion default-registry

// #region score-mapping

// stanceForScore maps a voice's internal score onto a stance.
// Thresholds follow the voting heuristic of the consensus ledger:
// strong conviction supports, middling conviction asks for changes.
func stanceForScore(score float64) Stance {
	switch {
	case score > 0.7:
		return StanceSupport
	case score > 0.45:
		return StanceModify
	default:
		return StanceOppose
	}
}

func proposal(id string, weight, score float64, snap router.Snapshot, detail string) Proposal {
	return Proposal{
		SourceID:  id,
		Stance:    stanceForScore(score),
		Rationale: fmt.Sprintf("%s: score=%.2f path=%s (%s)", id, score, snap.Priority, detail),
		Payload: map[string]any{
			"score":         score,
			"path":          string(snap.Priority),
			"urgency":       snap.Intent.Urgency,
			"tone":          snap.Affect.Tone,
			"fragment_hits": len(snap.Memory.Fragments),
		},
		Weight: weight,
	}
}

// #endregion score-mapping

// #region kernel-voice

// kernelVoice is the conservative baseline: it votes on urgency and
// confidence alone and opposes flood input outright.
type kernelVoice struct {
	id     string
	weight float64
}

func (v *kernelVoice) ID() string      { return v.id }
func (v *kernelVoice) Weight() float64 { return v.weight }

func (v *kernelVoice) Propose(_ context.Context, snap router.Snapshot) Proposal {
	if snap.Intent.Category == analyzer.IntentFlood {
		return Proposal{
			SourceID:  v.id,
			Stance:    StanceOppose,
			Rationale: "kernel: flood input rejected",
			Payload:   map[string]any{"score": 0.0, "path": string(snap.Priority)},
			Weight:    v.weight,
		}
	}
	score := snap.Intent.Urgency*0.6 + snap.Intent.Confidence*0.4
	return proposal(v.id, v.weight, score, snap, "urgency+confidence")
}

// #endregion kernel-voice

// #region codex-voice

// codexVoice leans technical: urgent technical work gets its strongest vote.
type codexVoice struct {
	id     string
	weight float64
}

func (v *codexVoice) ID() string      { return v.id }
func (v *codexVoice) Weight() float64 { return v.weight }

func (v *codexVoice) Propose(_ context.Context, snap router.Snapshot) Proposal {
	score := snap.Intent.Urgency
	if snap.Intent.Category == analyzer.IntentTechnical {
		score += 0.2
	}
	if snap.Priority == router.PathAGI {
		score += 0.1
	}
	return proposal(v.id, v.weight, clamp(score), snap, "technical affinity")
}

// #endregion codex-voice

// #region memory-voice

// memoryVoice votes on precedent: strong fragment links raise its score.
type memoryVoice struct {
	id     string
	weight float64
}

func (v *memoryVoice) ID() string      { return v.id }
func (v *memoryVoice) Weight() float64 { return v.weight }

func (v *memoryVoice) Propose(_ context.Context, snap router.Snapshot) Proposal {
	score := 0.35 + snap.Memory.TopScore()*0.5
	if snap.Priority == router.PathROLE {
		score += 0.1
	}
	return proposal(v.id, v.weight, clamp(score), snap, "memory precedent")
}

// #endregion memory-voice

// #region affect-voice

// affectVoice votes on emotional framing: fear dampens, determination lifts.
type affectVoice struct {
	id     string
	weight float64
}

func (v *affectVoice) ID() string      { return v.id }
func (v *affectVoice) Weight() float64 { return v.weight }

func (v *affectVoice) Propose(_ context.Context, snap router.Snapshot) Proposal {
	score := 0.3 + snap.Affect.Intensity*0.5
	switch snap.Affect.Tone {
	case "fear":
		score -= 0.1
	case "determination":
		score += 0.1
	}
	return proposal(v.id, v.weight, clamp(score), snap, "affect framing")
}

// #endregion affect-voice

// #region helpers

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
