package council

import (
	"context"

	"github.com/evopyramid/evonexus/internal/router"
)

// #region stance

// Stance is one voice's position on a routed context.
type Stance string

const (
	StanceSupport Stance = "support"
	StanceOppose  Stance = "oppose"
	StanceModify  Stance = "modify"
	StanceAbstain Stance = "abstain"
)

// #endregion stance

// #region proposal

// Proposal is a single voice's vote. Immutable once produced.
type Proposal struct {
	SourceID  string
	Stance    Stance
	Rationale string
	Payload   map[string]any
	Weight    float64
}

// #endregion proposal

// #region voice

// Voice is an independently weighted proposal generator. Variants differ
// only in their internal heuristic and fixed weight; the consensus engine
// treats them uniformly.
type Voice interface {
	ID() string
	Weight() float64
	Propose(ctx context.Context, snap router.Snapshot) Proposal
}

// #endregion voice
