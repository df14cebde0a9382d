// Package council fans a routed context out to every registered voice and
// collects one proposal per voice, deterministically ordered by identity.
package council

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evopyramid/evonexus/internal/router"
)

// #region council

// Council runs registered voices concurrently with a per-voice timeout.
type Council struct {
	voices  []Voice
	timeout time.Duration
	log     *zap.Logger
}

// New builds a council over an explicit voice list.
func New(voices []Voice, timeout time.Duration, log *zap.Logger) *Council {
	if log == nil {
		log = zap.NewNop()
	}
	return &Council{voices: voices, timeout: timeout, log: log}
}

// Size returns the number of registered voices.
func (c *Council) Size() int { return len(c.voices) }

// #endregion council

// #region gather

// Gather collects exactly one proposal per voice, in registration order.
// A timed-out voice contributes an abstain with zero weight so it cannot
// skew the consensus denominator.
func (c *Council) Gather(ctx context.Context, snap router.Snapshot) ([]Proposal, error) {
	proposals := make([]Proposal, len(c.voices))

	g, gctx := errgroup.WithContext(ctx)
	for i, voice := range c.voices {
		i, voice := i, voice
		g.Go(func() error {
			vctx := gctx
			var cancel context.CancelFunc
			if c.timeout > 0 {
				vctx, cancel = context.WithTimeout(gctx, c.timeout)
				defer cancel()
			}

			done := make(chan Proposal, 1)
			go func() { done <- voice.Propose(vctx, snap) }()

			select {
			case p := <-done:
				proposals[i] = p
			case <-vctx.Done():
				c.log.Warn("voice degraded to abstain",
					zap.String("voice", voice.ID()), zap.Error(vctx.Err()))
				proposals[i] = Proposal{
					SourceID:  voice.ID(),
					Stance:    StanceAbstain,
					Rationale: "timed out",
					Weight:    0,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return proposals, nil
}

// #endregion gather
