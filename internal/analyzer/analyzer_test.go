package analyzer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/evopyramid/evonexus/internal/config"
	"github.com/evopyramid/evonexus/internal/memory"
)

// #region helpers

func testIntent(t *testing.T) *IntentAnalyzer {
	t.Helper()
	cfg := config.Default()
	return NewIntentAnalyzer(cfg.IntentKeywords, cfg.UrgencyMarkers)
}

func testAffect(t *testing.T) *AffectAnalyzer {
	t.Helper()
	return NewAffectAnalyzer(config.Default().ToneKeywords)
}

func testSet(t *testing.T, timeout time.Duration) (*Set, *memory.Store) {
	t.Helper()
	store := memory.Open(filepath.Join(t.TempDir(), "mem.db"), zap.NewNop())
	t.Cleanup(func() { store.Close() })
	set := NewSet(testIntent(t), testAffect(t), NewMemoryAnalyzer(store, 5), timeout, zap.NewNop())
	return set, store
}

// stalled analyzers block far past any test timeout to force the fallback.

type stalledIntent struct{ delay time.Duration }

func (s stalledIntent) Analyze(string) IntentSignal {
	time.Sleep(s.delay)
	return IntentSignal{Category: IntentTechnical, Urgency: 1, Confidence: 1}
}

type stalledAffect struct{ delay time.Duration }

func (s stalledAffect) Analyze(string) AffectSignal {
	time.Sleep(s.delay)
	return AffectSignal{Tone: "joy", Intensity: 1}
}

type stalledMemory struct{ delay time.Duration }

func (s stalledMemory) Analyze(string) memory.LookupResult {
	time.Sleep(s.delay)
	return memory.LookupResult{Fragments: []memory.ScoredFragment{{}}}
}

// #endregion helpers

// #region intent-tests

func TestIntent_TechnicalUrgent(t *testing.T) {
	sig := testIntent(t).Analyze("urgent system failure now")
	if sig.Category != IntentTechnical {
		t.Errorf("expected technical, got %s", sig.Category)
	}
	if sig.Urgency < 0.7 {
		t.Errorf("expected urgency >= 0.7 for two urgency markers, got %f", sig.Urgency)
	}
}

func TestIntent_Philosophical(t *testing.T) {
	sig := testIntent(t).Analyze("I feel lost and wonder about meaning")
	if sig.Category != IntentPhilosophical {
		t.Errorf("expected philosophical, got %s", sig.Category)
	}
}

func TestIntent_NoMarkersFallsBackToMeta(t *testing.T) {
	sig := testIntent(t).Analyze("the quick brown fox jumps")
	if sig.Category != IntentMeta {
		t.Errorf("expected meta fallback, got %s", sig.Category)
	}
	if sig.Confidence != 0.2 {
		t.Errorf("expected low confidence with zero matches, got %f", sig.Confidence)
	}
	if sig.Urgency != 0.25 {
		t.Errorf("expected base urgency 0.25 with no markers, got %f", sig.Urgency)
	}
}

func TestIntent_FloodDetection(t *testing.T) {
	sig := testIntent(t).Analyze(strings.Repeat("spam ham ", 10))
	if sig.Category != IntentFlood {
		t.Errorf("expected flood for repetitive input, got %s", sig.Category)
	}
}

func TestIntent_AmbiguityLowersConfidence(t *testing.T) {
	a := testIntent(t)
	single := a.Analyze("system failure in the database")
	multi := a.Analyze("design a creative idea for the system architecture")
	if multi.Confidence >= single.Confidence {
		t.Errorf("expected multi-category match to lower confidence: single=%f multi=%f",
			single.Confidence, multi.Confidence)
	}
}

func TestIntent_ExclamationsRaiseUrgency(t *testing.T) {
	a := testIntent(t)
	plain := a.Analyze("fix the build")
	loud := a.Analyze("fix the build!!!")
	if loud.Urgency <= plain.Urgency {
		t.Errorf("expected exclamations to raise urgency: plain=%f loud=%f", plain.Urgency, loud.Urgency)
	}
}

// #endregion intent-tests

// #region affect-tests

func TestAffect_CuriosityTone(t *testing.T) {
	sig := testAffect(t).Analyze("I am curious and wonder why this works")
	if sig.Tone != "curiosity" {
		t.Errorf("expected curiosity, got %s", sig.Tone)
	}
	if sig.Intensity < 0.45 {
		t.Errorf("expected non-trivial intensity, got %f", sig.Intensity)
	}
}

func TestAffect_NoMarkersNeutral(t *testing.T) {
	sig := testAffect(t).Analyze("list the repository contents")
	if sig.Tone != ToneNeutral {
		t.Errorf("expected neutral, got %s", sig.Tone)
	}
	if sig.Intensity != 0 {
		t.Errorf("expected zero intensity, got %f", sig.Intensity)
	}
}

func TestAffect_Deterministic(t *testing.T) {
	a := testAffect(t)
	first := a.Analyze("frustrated and stuck but determined to achieve focus")
	for i := 0; i < 20; i++ {
		again := a.Analyze("frustrated and stuck but determined to achieve focus")
		if again != first {
			t.Fatalf("affect output drifted across runs: %+v vs %+v", first, again)
		}
	}
}

// #endregion affect-tests

// #region fanout-tests

func TestSet_AnalyzeAllThree(t *testing.T) {
	set, store := testSet(t, time.Second)
	store.AddFragment(memory.FragmentData{ID: "m1", Name: "system memory", Content: "system failure handling", Layer: memory.LayerCore})

	sig, err := set.Analyze(context.Background(), "urgent system failure now")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig.Intent.Category != IntentTechnical {
		t.Errorf("intent: expected technical, got %s", sig.Intent.Category)
	}
	if sig.Memory.Empty() {
		t.Error("memory: expected fragment hits")
	}
	if len(sig.Degraded) != 0 {
		t.Errorf("expected no degraded analyzers, got %v", sig.Degraded)
	}
}

func TestSet_CancelledContext(t *testing.T) {
	set, _ := testSet(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := set.Analyze(ctx, "anything"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestSet_TimeoutFallsBackToSafeDefaults(t *testing.T) {
	set := NewSet(
		stalledIntent{delay: 5 * time.Second},
		stalledAffect{delay: 5 * time.Second},
		stalledMemory{delay: 5 * time.Second},
		10*time.Millisecond, zap.NewNop())

	sig, err := set.Analyze(context.Background(), "anything")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig.Intent != DefaultIntent() {
		t.Errorf("intent: expected safe default %+v, got %+v", DefaultIntent(), sig.Intent)
	}
	if sig.Affect != DefaultAffect() {
		t.Errorf("affect: expected safe default %+v, got %+v", DefaultAffect(), sig.Affect)
	}
	if !sig.Memory.Empty() {
		t.Errorf("memory: expected empty lookup, got %d fragments", len(sig.Memory.Fragments))
	}
	want := []string{"intent", "affect", "memory"}
	if len(sig.Degraded) != len(want) {
		t.Fatalf("expected degraded=%v, got %v", want, sig.Degraded)
	}
	for i, name := range want {
		if sig.Degraded[i] != name {
			t.Errorf("degraded[%d]: expected %s, got %s", i, name, sig.Degraded[i])
		}
	}
}

func TestSet_SingleTimeoutDegradesOnlyThatAnalyzer(t *testing.T) {
	store := memory.Open(filepath.Join(t.TempDir(), "mem.db"), zap.NewNop())
	t.Cleanup(func() { store.Close() })
	set := NewSet(
		testIntent(t),
		stalledAffect{delay: 5 * time.Second},
		NewMemoryAnalyzer(store, 5),
		50*time.Millisecond, zap.NewNop())

	sig, err := set.Analyze(context.Background(), "urgent system failure now")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig.Intent.Category != IntentTechnical {
		t.Errorf("intent should still run: expected technical, got %s", sig.Intent.Category)
	}
	if sig.Affect != DefaultAffect() {
		t.Errorf("affect: expected safe default, got %+v", sig.Affect)
	}
	if len(sig.Degraded) != 1 || sig.Degraded[0] != "affect" {
		t.Errorf("expected degraded=[affect], got %v", sig.Degraded)
	}
}

func TestRunWithTimeout_SlowTaskDegrades(t *testing.T) {
	_, ok := runWithTimeout(context.Background(), 5*time.Millisecond, func() int {
		time.Sleep(200 * time.Millisecond)
		return 42
	})
	if ok {
		t.Fatal("expected timeout")
	}
}

func TestRunWithTimeout_FastTaskCompletes(t *testing.T) {
	out, ok := runWithTimeout(context.Background(), time.Second, func() int { return 42 })
	if !ok || out != 42 {
		t.Fatalf("expected 42/true, got %d/%v", out, ok)
	}
}

// #endregion fanout-tests
