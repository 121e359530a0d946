package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scams/internal/logging"
	"github.com/robfig/cron/v3"
)

// Housekeeper runs periodic maintenance jobs.
type Housekeeper struct {
	cron   *cron.Cron
	auth   *AuthService
	logger logging.Logger
}

// NewHousekeeper schedules the purge of expired reset tokens on schedule, a
// standard cron expression or a descriptor such as "@every 15m".
func NewHousekeeper(schedule string, a *AuthService, l logging.Logger) (*Housekeeper, error) {
	if l == nil {
		l = logging.Nop{}
	}
	h := &Housekeeper{cron: cron.New(), auth: a, logger: l.With("module", "housekeeping")}
	if _, err := h.cron.AddFunc(schedule, func() { h.PurgeResetTokens(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	return h, nil
}

// PurgeResetTokens clears reset tokens whose expiry has passed.
func (h *Housekeeper) PurgeResetTokens(ctx context.Context) {
	n, err := h.auth.ClearExpiredResetTokens(ctx)
	if err != nil {
		h.logger.Error(ctx, "reset token purge failed", "error", err)
		return
	}
	if n > 0 {
		h.logger.Info(ctx, "expired reset tokens cleared", "count", n)
	}
}

// Run starts the scheduler and blocks until ctx is cancelled and the
// running jobs have finished.
func (h *Housekeeper) Run(ctx context.Context) {
	h.cron.Start()
	h.logger.Info(ctx, "Starting housekeeping")
	<-ctx.Done()
	<-h.cron.Stop().Done()
	h.logger.Info(ctx, "Housekeeping stopped")
}
