package userauth

import (
	"context"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Reaper periodically removes unconfirmed accounts whose
// registration-confirmation token can no longer be valid. The deadline is
// derived from the same lifetime used when issuing confirmation tokens, so
// no account is reaped while its token could still be presented, and any
// email address stuck on an expired confirmation becomes available again.
type Reaper struct {
	repo                 RepositoryManager
	confirmationLifetime time.Duration
	interval             time.Duration
	logger               Logger

	// now is the sweep clock; tests override it.
	now func() time.Time

	// sweeping guards against overlapping runs. A sweep that is still in
	// progress when the ticker fires again makes the new run a no-op.
	sweeping atomic.Bool
}

func NewReaper(repo RepositoryManager, cfg Config) *Reaper {
	return &Reaper{
		repo:                 repo,
		confirmationLifetime: cfg.GetMissionTokenLifetime(),
		interval:             cfg.GetReaperInterval(),
		logger:               defLogger{},
		now:                  time.Now,
	}
}

func (r *Reaper) WithLogger(logger Logger) *Reaper {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithClock overrides the sweep clock.
func (r *Reaper) WithClock(now func() time.Time) *Reaper {
	if now != nil {
		r.now = now
	}
	return r
}

// Run blocks, sweeping once per interval until the context is cancelled.
// Sweep errors are logged; the next scheduled run retries naturally.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Reaper started, sweeping every %s", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reaper stopped")
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.Error("Reaper sweep failed: %s", err)
			}
		}
	}
}

// Sweep scans unconfirmed accounts and deletes every one whose confirmation
// deadline has passed, in a single transaction: a failure mid-sweep commits
// nothing. Returns the number of accounts removed. A sweep requested while
// another is in progress is skipped and reports zero deletions.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	if !r.sweeping.CompareAndSwap(false, true) {
		r.logger.Warn("Reaper sweep skipped, previous run still in progress")
		return 0, nil
	}
	defer r.sweeping.Store(false)

	var removed int64
	sweepTime := r.now()

	err := r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		unconfirmed, err := r.repo.Users().ListUnconfirmedTx(ctx, tx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to scan unconfirmed accounts")
		}

		var stale []uuid.UUID
		for _, user := range unconfirmed {
			deadline := user.ConfirmationDeadline(r.confirmationLifetime)
			if deadline.IsZero() {
				continue
			}
			if !sweepTime.Before(deadline) {
				stale = append(stale, user.ID)
			}
		}

		if len(stale) == 0 {
			return nil
		}

		removed, err = r.repo.Users().RemoveBatchTx(ctx, tx, stale)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete stale accounts")
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	if removed > 0 {
		r.logger.Info("Reaper removed %d stale unconfirmed accounts", removed)
	}

	return removed, nil
}
