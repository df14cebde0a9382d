package council

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/evopyramid/evonexus/internal/analyzer"
	"github.com/evopyramid/evonexus/internal/memory"
	"github.com/evopyramid/evonexus/internal/router"
)

// #region fakes

// slowVoice blocks past any reasonable timeout.
type slowVoice struct{ id string }

func (v *slowVoice) ID() string      { return v.id }
func (v *slowVoice) Weight() float64 { return 1.0 }
func (v *slowVoice) Propose(ctx context.Context, _ router.Snapshot) Proposal {
	select {
	case <-time.After(5 * time.Second):
	case <-ctx.Done():
	}
	return Proposal{SourceID: v.id, Stance: StanceSupport, Weight: 1.0}
}

// fixedVoice always answers immediately with a fixed stance.
type fixedVoice struct {
	id     string
	stance Stance
}

func (v *fixedVoice) ID() string      { return v.id }
func (v *fixedVoice) Weight() float64 { return 0.8 }
func (v *fixedVoice) Propose(_ context.Context, _ router.Snapshot) Proposal {
	return Proposal{SourceID: v.id, Stance: v.stance, Weight: 0.8}
}

func snapshotFor(cat analyzer.IntentCategory, urgency float64, path router.Path) router.Snapshot {
	return router.Snapshot{
		CycleID:  "test-cycle",
		Intent:   analyzer.IntentSignal{Category: cat, Urgency: urgency, Confidence: 0.9},
		Affect:   analyzer.AffectSignal{Tone: analyzer.ToneNeutral},
		Priority: path,
	}
}

// #endregion fakes

// #region gather-tests

func TestGather_OneProposalPerVoiceInOrder(t *testing.T) {
	c := New([]Voice{
		&fixedVoice{id: "first", stance: StanceSupport},
		&fixedVoice{id: "second", stance: StanceOppose},
	}, time.Second, zap.NewNop())

	got, err := c.Gather(context.Background(), snapshotFor(analyzer.IntentMeta, 0.2, router.PathHYBRID))
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 proposals, got %d", len(got))
	}
	if got[0].SourceID != "first" || got[1].SourceID != "second" {
		t.Errorf("expected registration order, got %s,%s", got[0].SourceID, got[1].SourceID)
	}
}

func TestGather_SlowVoiceAbstainsWithZeroWeight(t *testing.T) {
	c := New([]Voice{
		&fixedVoice{id: "fast", stance: StanceSupport},
		&slowVoice{id: "slow"},
	}, 20*time.Millisecond, zap.NewNop())

	got, err := c.Gather(context.Background(), snapshotFor(analyzer.IntentMeta, 0.2, router.PathHYBRID))
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got[1].Stance != StanceAbstain {
		t.Errorf("expected slow voice to abstain, got %s", got[1].Stance)
	}
	if got[1].Weight != 0 {
		t.Errorf("timed-out abstain must carry zero weight, got %f", got[1].Weight)
	}
	if got[0].Stance != StanceSupport {
		t.Errorf("fast voice must be unaffected, got %s", got[0].Stance)
	}
}

func TestGather_CancelledContext(t *testing.T) {
	c := New([]Voice{&fixedVoice{id: "v", stance: StanceSupport}}, time.Second, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Gather(ctx, router.Snapshot{}); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

// #endregion gather-tests

// #region voice-tests

func TestDefaultVoices_RegistryAndWeights(t *testing.T) {
	voices := DefaultVoices(map[string]float64{"kernel": 1.0, "codex": 0.95, "evo24": 0.90, "exevo": 0.85})
	if len(voices) != 4 {
		t.Fatalf("expected 4 voices, got %d", len(voices))
	}
	wantIDs := []string{"codex", "evo24", "exevo", "kernel"}
	for i, v := range voices {
		if v.ID() != wantIDs[i] {
			t.Errorf("voice %d: expected %s, got %s", i, wantIDs[i], v.ID())
		}
	}
	if voices[3].Weight() != 1.0 {
		t.Errorf("kernel weight: expected 1.0, got %f", voices[3].Weight())
	}
}

func TestKernelVoice_OpposesFlood(t *testing.T) {
	v := &kernelVoice{id: "kernel", weight: 1.0}
	p := v.Propose(context.Background(), snapshotFor(analyzer.IntentFlood, 0.9, router.PathHYBRID))
	if p.Stance != StanceOppose {
		t.Errorf("expected oppose on flood, got %s", p.Stance)
	}
}

func TestCodexVoice_SupportsUrgentTechnical(t *testing.T) {
	v := &codexVoice{id: "codex", weight: 0.95}
	p := v.Propose(context.Background(), snapshotFor(analyzer.IntentTechnical, 0.85, router.PathAGI))
	if p.Stance != StanceSupport {
		t.Errorf("expected support, got %s (rationale: %s)", p.Stance, p.Rationale)
	}
}

func TestMemoryVoice_OpposesWithoutPrecedent(t *testing.T) {
	v := &memoryVoice{id: "evo24", weight: 0.9}
	p := v.Propose(context.Background(), snapshotFor(analyzer.IntentMeta, 0.3, router.PathHYBRID))
	if p.Stance != StanceOppose {
		t.Errorf("expected oppose with empty memory, got %s", p.Stance)
	}
}

func TestMemoryVoice_SupportsStrongPrecedent(t *testing.T) {
	v := &memoryVoice{id: "evo24", weight: 0.9}
	snap := snapshotFor(analyzer.IntentMeta, 0.3, router.PathROLE)
	snap.Memory = memory.LookupResult{Fragments: []memory.ScoredFragment{{
		Fragment:  memory.Fragment{ID: "f1", Weight: 1.0},
		Relevance: 0.95,
	}}}
	p := v.Propose(context.Background(), snap)
	if p.Stance != StanceSupport {
		t.Errorf("expected support with strong links, got %s (rationale: %s)", p.Stance, p.Rationale)
	}
}

func TestAffectVoice_ToneAdjustments(t *testing.T) {
	v := &affectVoice{id: "exevo", weight: 0.85}
	base := snapshotFor(analyzer.IntentMeta, 0.3, router.PathSOUL)

	fear := base
	fear.Affect = analyzer.AffectSignal{Tone: "fear", Intensity: 0.8}
	determined := base
	determined.Affect = analyzer.AffectSignal{Tone: "determination", Intensity: 0.8}

	pFear := v.Propose(context.Background(), fear)
	pDet := v.Propose(context.Background(), determined)
	if pFear.Payload["score"].(float64) >= pDet.Payload["score"].(float64) {
		t.Errorf("fear must dampen relative to determination: fear=%v det=%v",
			pFear.Payload["score"], pDet.Payload["score"])
	}
}

// #endregion voice-tests
