// Package router merges the three signal results into one ContextSnapshot
// and selects the priority path that frames the rest of the cycle.
package router

import (
	"time"

	"github.com/evopyramid/evonexus/internal/analyzer"
	"github.com/evopyramid/evonexus/internal/memory"
)

// #region path

// Path is the routing decision selecting how a query is predominantly framed.
type Path string

const (
	PathAGI    Path = "AGI"
	PathSOUL   Path = "SOUL"
	PathROLE   Path = "ROLE"
	PathHYBRID Path = "HYBRID"
)

// #endregion path

// #region snapshot

// Snapshot is the immutable fan-in of one cycle's signals.
type Snapshot struct {
	CycleID     string
	Input       string
	Intent      analyzer.IntentSignal
	Affect      analyzer.AffectSignal
	Memory      memory.LookupResult
	Priority    Path
	GeneratedAt time.Time
}

// #endregion snapshot

// #region route

// Route builds the snapshot for one cycle. Path precedence, first match wins:
// urgent technical work outranks emotional framing, which outranks
// memory-enriched framing, with HYBRID as the universal fallback.
func Route(cycleID, input string, sig analyzer.Signals) Snapshot {
	return Snapshot{
		CycleID:     cycleID,
		Input:       input,
		Intent:      sig.Intent,
		Affect:      sig.Affect,
		Memory:      sig.Memory,
		Priority:    selectPath(sig),
		GeneratedAt: time.Now().UTC(),
	}
}

func selectPath(sig analyzer.Signals) Path {
	switch {
	case sig.Intent.Category == analyzer.IntentTechnical && sig.Intent.Urgency >= 0.7:
		return PathAGI
	case sig.Affect.Intensity >= 0.6 || sig.Intent.Category == analyzer.IntentPhilosophical:
		return PathSOUL
	case !sig.Memory.Empty():
		return PathROLE
	default:
		return PathHYBRID
	}
}

// #endregion route
