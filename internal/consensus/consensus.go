// Package consensus aggregates council proposals into one weighted decision
// with threshold tiers.
package consensus

import (
	"sort"

	"github.com/evopyramid/evonexus/internal/council"
)

// #region types

// Decision is the consensus outcome for a proposed action.
type Decision string

const (
	DecisionReject  Decision = "reject"
	DecisionModify  Decision = "modify"
	DecisionApprove Decision = "approve"
	DecisionEvolve  Decision = "evolve"
)

// Tier classifies outcome strength. Platinum implies evolve; gold implies
// at least approve.
type Tier string

const (
	TierStandard Tier = "standard"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Result is the immutable consensus output for one cycle.
type Result struct {
	Decision     Decision
	Score        float64
	Tier         Tier
	Contributing []council.Proposal
}

// Degenerate reports the all-abstained case: deterministic reject, not an
// error. Callers that care inspect tier and score.
func (r Result) Degenerate() bool {
	return r.Tier == TierStandard && r.Score == 0 && len(r.Contributing) == 0
}

// #endregion types

// #region engine

// Engine holds the threshold tiers.
type Engine struct {
	thresholdModify   float64
	thresholdGold     float64
	thresholdPlatinum float64
}

// NewEngine builds an engine with the given tier thresholds.
func NewEngine(modify, gold, platinum float64) *Engine {
	return &Engine{thresholdModify: modify, thresholdGold: gold, thresholdPlatinum: platinum}
}

// #endregion engine

// #region decide

// Decide aggregates proposals into one Result.
// Support counts full weight, modify half, oppose zero; abstains are excluded
// from both masses. Everyone abstaining yields the degenerate reject.
func (e *Engine) Decide(proposals []council.Proposal) Result {
	var supportMass, totalMass float64
	var contributing []council.Proposal

	for _, p := range proposals {
		if p.Stance == council.StanceAbstain {
			continue
		}
		contributing = append(contributing, p)
		totalMass += p.Weight
		switch p.Stance {
		case council.StanceSupport:
			supportMass += p.Weight
		case council.StanceModify:
			supportMass += p.Weight * 0.5
		}
	}

	if totalMass == 0 {
		return Result{Decision: DecisionReject, Score: 0, Tier: TierStandard}
	}

	score := supportMass / totalMass
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	sort.Slice(contributing, func(i, j int) bool {
		if contributing[i].Weight != contributing[j].Weight {
			return contributing[i].Weight > contributing[j].Weight
		}
		return contributing[i].SourceID < contributing[j].SourceID
	})

	decision, tier := e.classify(score)
	return Result{Decision: decision, Score: score, Tier: tier, Contributing: contributing}
}

// classify maps a score onto decision and tier, evaluated top-down with
// boundary-inclusive thresholds.
func (e *Engine) classify(score float64) (Decision, Tier) {
	switch {
	case score >= e.thresholdPlatinum:
		return DecisionEvolve, TierPlatinum
	case score >= e.thresholdGold:
		return DecisionApprove, TierGold
	case score >= e.thresholdModify:
		return DecisionModify, TierStandard
	default:
		return DecisionReject, TierStandard
	}
}

// #endregion decide
