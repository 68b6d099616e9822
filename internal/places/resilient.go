package places

import (
	"context"
	"time"

	"nexum/internal/models"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Resilient bounds each search attempt with a timeout and retries once.
type Resilient struct {
	next    Searcher
	timeout time.Duration
	retries uint64
	logger  *zap.Logger
}

func NewResilient(next Searcher, timeout time.Duration, logger *zap.Logger) *Resilient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resilient{next: next, timeout: timeout, retries: 1, logger: logger}
}

func (r *Resilient) Search(ctx context.Context, q Query) ([]models.Venue, error) {
	var venues []models.Venue
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		v, err := r.next.Search(attemptCtx, q)
		if err != nil {
			return err
		}
		venues = v
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.retries), ctx)

	err := backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		r.logger.Warn("Retrying venue search",
			zap.Error(err),
			zap.Duration("wait", wait))
	})
	if err != nil {
		return nil, err
	}
	return venues, nil
}
