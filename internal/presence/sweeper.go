package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohanadsherby/sikhshan-new-repo/internal/observability"
	"github.com/Mohanadsherby/sikhshan-new-repo/internal/repositories"
)

// Sweeper reconciles presence rows left online by ungraceful disconnects.
// Online rows whose last_seen fell behind the threshold are flipped offline
// on a fixed cadence; heartbeats keep live sessions fresh.
type Sweeper struct {
	presence   repositories.PresenceRepository
	interval   time.Duration
	staleAfter time.Duration
	log        zerolog.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(presence repositories.PresenceRepository, interval, staleAfter time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		presence:   presence,
		interval:   interval,
		staleAfter: staleAfter,
		log:        log.With().Str("component", "presence").Logger(),
	}
}

// Run sweeps until the context is canceled. Sweep errors are logged and the
// loop keeps going; presence carries no correctness obligation.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.presence.MarkStaleOffline(ctx, s.staleAfter)
	if err != nil {
		s.log.Warn().Err(err).Msg("presence sweep failed")
		return
	}
	if n > 0 {
		observability.AddPresenceSwept(float64(n))
		s.log.Info().Int64("rows", n).Msg("marked stale sessions offline")
	}
}
