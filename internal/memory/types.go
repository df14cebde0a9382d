package memory

import (
	"errors"
	"time"
)

// #region layer

// Layer identifies one of the four fixed knowledge layers.
type Layer string

const (
	LayerCore       Layer = "core"
	LayerFunctional Layer = "functional"
	LayerEmotional  Layer = "emotional"
	LayerMeta       Layer = "meta"
)

// LayerWeight returns the default retrieval weight for a layer.
// The second return is false for unrecognized layers.
func LayerWeight(l Layer) (float64, bool) {
	switch l {
	case LayerCore:
		return 1.0, true
	case LayerFunctional:
		return 0.9, true
	case LayerEmotional:
		return 0.8, true
	case LayerMeta:
		return 0.95, true
	}
	return 0, false
}

// #endregion layer

// #region errors

var (
	// ErrValidation marks malformed fragment input (bad layer, out-of-range weight).
	ErrValidation = errors.New("fragment validation failed")

	// ErrStoreUnavailable marks a backing resource that could not be read or written.
	// The store keeps serving from memory; persists become no-ops.
	ErrStoreUnavailable = errors.New("memory store backing unavailable")
)

// #endregion errors

// #region fragment

// Fragment is a single unit of stored knowledge.
type Fragment struct {
	ID            string
	Name          string
	Content       string
	Layer         Layer
	Weight        float64
	EmotionalTone string
	CreatedAt     time.Time
}

// FragmentData is the ingestion payload for AddFragment.
// ID may be empty (one is generated). Weight nil means "use the layer default".
type FragmentData struct {
	ID            string
	Name          string
	Content       string
	Layer         Layer
	Weight        *float64
	EmotionalTone string
	CreatedAt     time.Time
}

// #endregion fragment

// #region lookup

// ScoredFragment pairs a fragment with its relevance score for one query.
type ScoredFragment struct {
	Fragment  Fragment
	Relevance float64
}

// LookupResult is a read-only snapshot of a weighted query.
// Fragments are ordered by descending relevance; LinkageNotes maps each
// returned fragment id to related fragment ids in the same result set.
type LookupResult struct {
	Fragments    []ScoredFragment
	LinkageNotes map[string][]string
}

// Empty reports whether the lookup matched nothing.
func (r LookupResult) Empty() bool {
	return len(r.Fragments) == 0
}

// TopScore returns the highest relevance in the result, 0 when empty.
func (r LookupResult) TopScore() float64 {
	if len(r.Fragments) == 0 {
		return 0
	}
	return r.Fragments[0].Relevance
}

// #endregion lookup
