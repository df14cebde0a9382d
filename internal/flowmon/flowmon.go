// Package flowmon records one flow metric event per completed cycle into an
// append-only JSONL stream consumable by external dashboards.
package flowmon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/evopyramid/evonexus/internal/consensus"
	"github.com/evopyramid/evonexus/internal/council"
	"github.com/evopyramid/evonexus/internal/router"
)

// #region event

// Event is a single per-cycle metric record. Never mutated after write.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Coherence float64   `json:"coherence"`
	Novelty   float64   `json:"novelty"`
	Resonance float64   `json:"resonance"`
	LatencyMS float64   `json:"latency_ms"`
	Density   float64   `json:"density"`
	CycleID   string    `json:"cycle_id"`
}

// #endregion event

// #region compute

// Compute derives the metric event for one finished cycle.
//
// coherence: 1 minus the variance of contributing proposal weights scaled so
// the maximum variance of [0,1] values maps to zero (low spread reads as
// agreement). novelty: fraction of snapshot fragments created inside the
// recency window; an empty memory is maximally novel. resonance: affect
// intensity times consensus score. density: contributing proposals over
// invoked voices.
func Compute(snap router.Snapshot, res consensus.Result, invokedVoices int, latency time.Duration, noveltyWindow time.Duration) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Coherence: coherence(res.Contributing),
		Novelty:   novelty(snap, noveltyWindow),
		Resonance: snap.Affect.Intensity * res.Score,
		LatencyMS: float64(latency.Microseconds()) / 1000.0,
		Density:   density(len(res.Contributing), invokedVoices),
		CycleID:   snap.CycleID,
	}
}

func coherence(contributing []council.Proposal) float64 {
	if len(contributing) == 0 {
		return 0
	}
	var sum float64
	for _, p := range contributing {
		sum += p.Weight
	}
	mean := sum / float64(len(contributing))

	var variance float64
	for _, p := range contributing {
		d := p.Weight - mean
		variance += d * d
	}
	variance /= float64(len(contributing))

	// Max variance of values confined to [0,1] is 0.25.
	c := 1 - variance/0.25
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func novelty(snap router.Snapshot, window time.Duration) float64 {
	if snap.Memory.Empty() {
		return 1.0
	}
	cutoff := snap.GeneratedAt.Add(-window)
	recent := 0
	for _, sf := range snap.Memory.Fragments {
		if sf.Fragment.CreatedAt.After(cutoff) {
			recent++
		}
	}
	return float64(recent) / float64(len(snap.Memory.Fragments))
}

func density(contributing, invoked int) float64 {
	if invoked == 0 {
		return 0
	}
	return float64(contributing) / float64(invoked)
}

// #endregion compute

// #region sink

// Sink appends events to a JSONL file. Prior entries are never rewritten.
type Sink struct {
	mu   sync.Mutex
	file *os.File
}

// OpenSink opens (or creates) the append-only log at path.
func OpenSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open flow log: %w", err)
	}
	return &Sink{file: f}, nil
}

// Append writes one event as a single JSON line.
func (s *Sink) Append(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Close releases the log file handle.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// #endregion sink

// #region read

// ReadLog loads every well-formed event from a flow log. Malformed lines are
// skipped so a partially written tail never blocks dashboards.
func ReadLog(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flow log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read flow log: %w", err)
	}
	return events, nil
}

// #endregion read
