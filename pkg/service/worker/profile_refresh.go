package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/chatops-lab/chatrelay/pkg/domain/interfaces"
	"github.com/chatops-lab/chatrelay/pkg/service/slack"
	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

// ProfileRefreshWorker periodically re-fetches directory profiles of known
// users so cached display names and locales do not go permanently stale.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type ProfileRefreshWorker struct {
	repo         interfaces.Repository
	slackService slack.Service
	interval     time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewProfileRefreshWorker creates a new worker for refreshing user profiles
func NewProfileRefreshWorker(repo interfaces.Repository, slackSvc slack.Service, interval time.Duration) *ProfileRefreshWorker {
	return &ProfileRefreshWorker{
		repo:         repo,
		slackService: slackSvc,
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background refresh loop. Does not block server startup.
func (w *ProfileRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("profile refresh worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ProfileRefreshWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("profile refresh worker stopped")
}

func (w *ProfileRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("profile refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("profile refresh worker context cancelled")
			return
		}
	}
}

// refresh performs a single refresh cycle over all known users. A failed
// lookup for one user is skipped; stale data is better than dropped data.
func (w *ProfileRefreshWorker) refresh(ctx context.Context) error {
	users, err := w.repo.User().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list users for refresh")
	}

	var updated int
	for _, u := range users {
		profile, err := w.slackService.GetUser(ctx, u.ExternalID)
		if err != nil {
			logging.Default().Warn("skipping user profile refresh",
				"external_id", u.ExternalID, "error", err.Error())
			continue
		}

		u.Name = profile.Name
		u.RealName = profile.RealName
		u.Locale = profile.Locale
		u.Email = profile.Email
		u.TZOffset = profile.TZOffset
		u.UpdatedAt = time.Now().UTC()

		if err := w.repo.User().Update(ctx, u); err != nil {
			return goerr.Wrap(err, "failed to update user profile", goerr.V("externalID", u.ExternalID))
		}
		updated++
	}

	logging.Default().Info("profile refresh completed", "total", len(users), "updated", updated)
	return nil
}
