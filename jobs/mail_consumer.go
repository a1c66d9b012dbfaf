// File: /jobs/mail_consumer.go
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"vanlife-api/services"
)

const (
	consumerPrefetch = 10
	maxDialBackoff   = 30 * time.Second
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// MailConsumer reads MailJobs from services.MailQueue and sends them.
// Failed jobs are rejected without requeue.
type MailConsumer struct {
	url    string
	mailer services.Mailer
	log    logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMailConsumer(url string, mailer services.Mailer, log logrus.FieldLogger) *MailConsumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailConsumer{
		url:    url,
		mailer: mailer,
		log:    log.WithField("component", "mail-consumer"),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start consumes in the background, reconnecting with exponential backoff.
func (c *MailConsumer) Start() {
	go func() {
		defer close(c.done)
		c.run()
	}()
}

// Stop cancels consumption and waits for the loop to exit.
func (c *MailConsumer) Stop() {
	c.cancel()
	<-c.done
}

func (c *MailConsumer) run() {
	backoff := time.Second
	for c.ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).WithField("retry_in", backoff.String()).Warn("failed to dial broker")
			if !c.sleep(backoff) {
				return
			}
			if backoff < maxDialBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(conn)
		conn.Close()
		if err != nil && c.ctx.Err() == nil {
			c.log.WithError(err).Warn("consume loop ended, reconnecting")
			if !c.sleep(2 * time.Second) {
				return
			}
		}
	}
}

// sleep waits for d and reports false when the consumer was stopped meanwhile.
func (c *MailConsumer) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *MailConsumer) consume(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(services.MailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(services.MailQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.WithField("queue", services.MailQueue).Info("consuming mail jobs")
	return c.drain(c.ctx, msgs)
}

// drain handles deliveries until msgs closes or ctx is cancelled.
func (c *MailConsumer) drain(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			c.handle(d)
		}
	}
}

func (c *MailConsumer) handle(d amqp.Delivery) {
	if err := c.deliver(d.Body); err != nil {
		c.log.WithError(err).Error("mail job failed")
		if err := d.Nack(false, false); err != nil {
			c.log.WithError(err).Warn("nack failed")
		}
		return
	}
	if err := d.Ack(false); err != nil {
		c.log.WithError(err).Warn("ack failed")
	}
}

func (c *MailConsumer) deliver(body []byte) error {
	var job services.MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if job.To == "" {
		return errors.New("mail job without recipient")
	}
	return c.mailer.Send(job)
}
