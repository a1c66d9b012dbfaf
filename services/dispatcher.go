// File: /services/dispatcher.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Dispatcher delivers mail in the background. Submit never blocks and never
// reports delivery failures; they are only logged.
type Dispatcher interface {
	Submit(job MailJob)
	Close(ctx context.Context) error
}

type ChannelDispatcher struct {
	mailer  Mailer
	log     logrus.FieldLogger
	limiter *rate.Limiter
	queue   chan MailJob

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChannelDispatcher starts workers draining a queue of size queueSize.
// perMinute <= 0 disables pacing.
func NewChannelDispatcher(mailer Mailer, log logrus.FieldLogger, workers, queueSize, perMinute int) *ChannelDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &ChannelDispatcher{
		mailer:  mailer,
		log:     log,
		limiter: rate.NewLimiter(limit, workers),
		queue:   make(chan MailJob, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *ChannelDispatcher) Submit(job MailJob) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.WithField("to", job.To).Warn("mail dispatcher closed, dropping email")
		return
	}
	select {
	case d.queue <- job:
	default:
		d.log.WithField("to", job.To).WithField("subject", job.Subject).Warn("mail queue full, dropping email")
	}
}

func (d *ChannelDispatcher) work() {
	defer d.wg.Done()
	for job := range d.queue {
		if err := d.limiter.Wait(d.ctx); err != nil {
			d.log.WithField("to", job.To).Warn("mail dispatcher stopped before sending")
			continue
		}
		if err := d.mailer.Send(job); err != nil {
			d.log.WithError(err).WithField("to", job.To).Error("failed to send email")
		}
	}
}

// Close stops accepting jobs and waits for queued ones until ctx is done.
func (d *ChannelDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
