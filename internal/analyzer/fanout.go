package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evopyramid/evonexus/internal/memory"
)

// #region set

// IntentSource produces the intent signal for one input.
type IntentSource interface {
	Analyze(text string) IntentSignal
}

// AffectSource produces the affect signal for one input.
type AffectSource interface {
	Analyze(text string) AffectSignal
}

// MemorySource produces the memory lookup result for one input.
type MemorySource interface {
	Analyze(text string) memory.LookupResult
}

// Set runs the three analyzers concurrently against one input.
// None of them may observe another's result; the fan-in waits for all three.
type Set struct {
	intent  IntentSource
	affect  AffectSource
	memory  MemorySource
	timeout time.Duration
	log     *zap.Logger
}

// NewSet wires a full analyzer set with one per-analyzer timeout.
func NewSet(intent IntentSource, affect AffectSource, mem MemorySource, timeout time.Duration, log *zap.Logger) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	return &Set{intent: intent, affect: affect, memory: mem, timeout: timeout, log: log}
}

// #endregion set

// #region analyze

// Analyze fans out the three analyzers and collects results by identity.
// A timed-out analyzer degrades to its documented safe default instead of
// blocking the cycle; its name is recorded in Signals.Degraded.
// Caller cancellation aborts the whole fan-in.
func (s *Set) Analyze(ctx context.Context, text string) (Signals, error) {
	var sig Signals

	g, gctx := errgroup.WithContext(ctx)

	var intentTimedOut, affectTimedOut, memoryTimedOut bool

	g.Go(func() error {
		out, ok := runWithTimeout(gctx, s.timeout, func() IntentSignal {
			return s.intent.Analyze(text)
		})
		if !ok {
			intentTimedOut = true
			sig.Intent = DefaultIntent()
			return nil
		}
		sig.Intent = out
		return nil
	})

	g.Go(func() error {
		out, ok := runWithTimeout(gctx, s.timeout, func() AffectSignal {
			return s.affect.Analyze(text)
		})
		if !ok {
			affectTimedOut = true
			sig.Affect = DefaultAffect()
			return nil
		}
		sig.Affect = out
		return nil
	})

	g.Go(func() error {
		out, ok := runWithTimeout(gctx, s.timeout, func() memory.LookupResult {
			return s.memory.Analyze(text)
		})
		if !ok {
			memoryTimedOut = true
			sig.Memory = memory.LookupResult{}
			return nil
		}
		sig.Memory = out
		return nil
	})

	if err := g.Wait(); err != nil {
		return Signals{}, err
	}
	if err := ctx.Err(); err != nil {
		return Signals{}, err
	}

	if intentTimedOut {
		sig.Degraded = append(sig.Degraded, "intent")
	}
	if affectTimedOut {
		sig.Degraded = append(sig.Degraded, "affect")
	}
	if memoryTimedOut {
		sig.Degraded = append(sig.Degraded, "memory")
	}
	for _, name := range sig.Degraded {
		s.log.Warn("signal analyzer degraded to safe default", zap.String("analyzer", name))
	}
	return sig, nil
}

// #endregion analyze

// #region run-with-timeout

// runWithTimeout executes fn on its own goroutine and returns (zero, false)
// when the per-analyzer timeout or the surrounding context fires first.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() T) (T, bool) {
	done := make(chan T, 1)
	go func() { done <- fn() }()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var zero T
	select {
	case out := <-done:
		return out, true
	case <-timer:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// #endregion run-with-timeout
