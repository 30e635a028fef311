// Package worker runs the background loops that keep parked transition
// requests moving without operator intervention.
package worker

import (
	"context"
	"log/slog"
	"time"

	"rentaldesk/internal/pkg/config"
	"rentaldesk/internal/usecase/commands"

	"go.uber.org/fx"
)

// StartRescanWorker periodically re-scans requests stuck in
// AWAITING_APPROVAL. Conflicts clear on their own as rentals come back and
// bookings lapse, so a request whose risk has dropped below the approval
// bar resumes processing without waiting for an approver.
func StartRescanWorker(lc fx.Lifecycle, cmds commands.TransitionCommands, cfg config.Config, logger *slog.Logger) {
	interval := cfg.Failsafe.RescanInterval
	if interval <= 0 {
		logger.Warn("rescan worker disabled", "interval", interval)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runRescanLoop(ctx, done, cmds, interval, logger)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func runRescanLoop(ctx context.Context, done chan<- struct{}, cmds commands.TransitionCommands, interval time.Duration, logger *slog.Logger) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("rescan worker started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("rescan worker stopped")
			return
		case <-ticker.C:
			resumed, err := cmds.ReevaluateAwaiting(ctx)
			if err != nil {
				logger.Error("rescan pass failed", "error", err)
				continue
			}
			if resumed > 0 {
				logger.Info("rescan pass resumed requests", "count", resumed)
			}
		}
	}
}
