// Package engine orchestrates one full query cycle:
// analyze -> route -> propose -> consense -> record.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evopyramid/evonexus/internal/analyzer"
	"github.com/evopyramid/evonexus/internal/config"
	"github.com/evopyramid/evonexus/internal/consensus"
	"github.com/evopyramid/evonexus/internal/council"
	"github.com/evopyramid/evonexus/internal/flowmon"
	"github.com/evopyramid/evonexus/internal/linkage"
	"github.com/evopyramid/evonexus/internal/memory"
	"github.com/evopyramid/evonexus/internal/provenance"
	"github.com/evopyramid/evonexus/internal/router"
)

// #region types

// CycleResult is the complete output of one cycle. Callers always receive
// the full triple; the degenerate all-abstained case shows up as
// decision tier standard with score zero, not as an error.
type CycleResult struct {
	Snapshot router.Snapshot
	Decision consensus.Result
	Metrics  flowmon.Event
}

// Stats aggregates engine activity since start.
type Stats struct {
	TotalQueries     int
	PathDistribution map[router.Path]int
	AvgLatencyMS     float64
}

// #endregion types

// #region engine

// Engine wires the pipeline stages around one memory store.
type Engine struct {
	cfg       config.Config
	store     *memory.Store
	analyzers *analyzer.Set
	council   *council.Council
	consensus *consensus.Engine
	sink      *flowmon.Sink
	cycles    *provenance.Log
	links     *linkage.Graph
	log       *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// New builds a fully wired engine. sink may be nil to disable the flow
// stream (tests, ephemeral runs).
func New(cfg config.Config, store *memory.Store, sink *flowmon.Sink, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	intentA := analyzer.NewIntentAnalyzer(cfg.IntentKeywords, cfg.UrgencyMarkers)
	affectA := analyzer.NewAffectAnalyzer(cfg.ToneKeywords)
	memoryA := analyzer.NewMemoryAnalyzer(store, cfg.QueryTopK)
	set := analyzer.NewSet(intentA, affectA, memoryA, cfg.AnalyzerTimeout, log)

	voices := council.DefaultVoices(cfg.VoiceWeights)

	cycles, err := provenance.NewLog(store.DB())
	if err != nil {
		return nil, err
	}
	links, err := linkage.NewGraph(store.DB())
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		store:     store,
		analyzers: set,
		council:   council.New(voices, cfg.VoiceTimeout, log),
		consensus: consensus.NewEngine(cfg.ThresholdModify, cfg.ThresholdGold, cfg.ThresholdPlatinum),
		sink:      sink,
		cycles:    cycles,
		links:     links,
		log:       log,
		stats:     Stats{PathDistribution: make(map[router.Path]int)},
	}, nil
}

// #endregion engine

// #region process-query

// ProcessQuery runs one complete cycle. Cancellation before consensus
// discards partial work; read-only cycles leave no residual state.
// sideCtx is reserved for integration hooks.
func (e *Engine) ProcessQuery(ctx context.Context, text string, sideCtx map[string]string) (CycleResult, error) {
	_ = sideCtx

	start := time.Now()
	cycleID := uuid.New().String()

	sig, err := e.analyzers.Analyze(ctx, text)
	if err != nil {
		return CycleResult{}, err
	}

	snap := router.Route(cycleID, text, sig)

	proposals, err := e.council.Gather(ctx, snap)
	if err != nil {
		return CycleResult{}, err
	}

	decision := e.consensus.Decide(proposals)
	latency := time.Since(start)
	metrics := flowmon.Compute(snap, decision, e.council.Size(), latency, e.cfg.NoveltyWindow)

	e.record(snap, decision, metrics)

	e.log.Info("cycle complete",
		zap.String("cycle_id", cycleID),
		zap.String("path", string(snap.Priority)),
		zap.String("decision", string(decision.Decision)),
		zap.String("tier", string(decision.Tier)),
		zap.Float64("score", decision.Score),
		zap.Duration("latency", latency),
	)

	return CycleResult{Snapshot: snap, Decision: decision, Metrics: metrics}, nil
}

// record appends the flow event and the provenance row, and folds stats.
// Recording failures degrade to warnings: the cycle result is already final.
func (e *Engine) record(snap router.Snapshot, decision consensus.Result, metrics flowmon.Event) {
	if e.sink != nil {
		if err := e.sink.Append(metrics); err != nil {
			e.log.Warn("flow event append failed", zap.Error(err))
		}
	}
	if err := e.cycles.Record(provenance.Entry{
		CycleID:      snap.CycleID,
		Input:        snap.Input,
		PriorityPath: string(snap.Priority),
		Decision:     string(decision.Decision),
		Tier:         string(decision.Tier),
		Score:        decision.Score,
	}); err != nil {
		e.log.Warn("cycle log append failed", zap.Error(err))
	}
	if len(snap.Memory.Fragments) > 1 {
		ids := make([]string, 0, len(snap.Memory.Fragments))
		for _, sf := range snap.Memory.Fragments {
			ids = append(ids, sf.Fragment.ID)
		}
		if err := e.links.Reinforce(ids); err != nil {
			e.log.Warn("linkage reinforce failed", zap.Error(err))
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	prevTotal := float64(e.stats.TotalQueries)
	e.stats.TotalQueries++
	e.stats.PathDistribution[snap.Priority]++
	e.stats.AvgLatencyMS = (e.stats.AvgLatencyMS*prevTotal + metrics.LatencyMS) / float64(e.stats.TotalQueries)
}

// #endregion process-query

// #region memory-ingestion

// AddToMemory is the ingestion interface for external collaborators.
// Validation errors surface immediately; they are never silently dropped.
func (e *Engine) AddToMemory(data memory.FragmentData) (memory.Fragment, error) {
	return e.store.AddFragment(data)
}

// #endregion memory-ingestion

// #region accessors

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	dist := make(map[router.Path]int, len(e.stats.PathDistribution))
	for k, v := range e.stats.PathDistribution {
		dist[k] = v
	}
	return Stats{
		TotalQueries:     e.stats.TotalQueries,
		PathDistribution: dist,
		AvgLatencyMS:     e.stats.AvgLatencyMS,
	}
}

// CycleLog exposes the provenance history for inspection tooling.
func (e *Engine) CycleLog() *provenance.Log {
	return e.cycles
}

// Links exposes the fragment association graph.
func (e *Engine) Links() *linkage.Graph {
	return e.links
}

// #endregion accessors
