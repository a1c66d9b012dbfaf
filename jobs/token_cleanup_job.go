// File: /jobs/token_cleanup_job.go
package jobs

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	Purge() int
}

// TokenLedgerCleanupJob periodically purges expired used-token entries
// from an in-process ledger.
type TokenLedgerCleanupJob struct {
	ledger   Purger
	log      logrus.FieldLogger
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewTokenLedgerCleanupJob(ledger Purger, interval time.Duration, log logrus.FieldLogger) *TokenLedgerCleanupJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TokenLedgerCleanupJob{
		ledger:   ledger,
		log:      log,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start runs one cleanup immediately and then one per interval.
func (j *TokenLedgerCleanupJob) Start() {
	j.ticker = time.NewTicker(j.interval)
	j.log.WithField("interval", j.interval.String()).Info("token ledger cleanup job started")

	go func() {
		defer close(j.stopped)
		j.cleanup()

		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				j.log.Info("token ledger cleanup job stopped")
				return
			}
		}
	}()
}

// Stop ends the job and waits for the running cleanup to finish. It is safe
// to call more than once.
func (j *TokenLedgerCleanupJob) Stop() {
	j.stopOnce.Do(func() {
		if j.ticker == nil {
			return
		}
		j.ticker.Stop()
		close(j.done)
		<-j.stopped
	})
}

func (j *TokenLedgerCleanupJob) cleanup() {
	if n := j.ledger.Purge(); n > 0 {
		j.log.WithField("purged", n).Debug("expired reset tokens purged")
	}
}
