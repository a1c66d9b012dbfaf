// File: /services/amqp_dispatcher.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// MailQueue is the durable queue shared by AMQPDispatcher and the mail consumer.
const MailQueue = "mail.outbound"

const publishTimeout = 5 * time.Second

// Publisher is the part of *amqp.Channel the dispatcher needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPDispatcher struct {
	publisher Publisher
	log       logrus.FieldLogger
	mu        sync.Mutex
	closed    bool
	closers   []func() error
}

// DialAMQPDispatcher connects to the broker and declares MailQueue.
func DialAMQPDispatcher(url string, log logrus.FieldLogger) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	d := NewAMQPDispatcher(ch, log)
	d.closers = []func() error{ch.Close, conn.Close}
	return d, nil
}

func NewAMQPDispatcher(publisher Publisher, log logrus.FieldLogger) *AMQPDispatcher {
	return &AMQPDispatcher{publisher: publisher, log: log}
}

// Submit publishes in the background so the caller never waits on the broker.
func (d *AMQPDispatcher) Submit(job MailJob) {
	body, err := json.Marshal(job)
	if err != nil {
		d.log.WithError(err).Error("failed to encode mail job")
		return
	}
	go d.publish(job.To, body)
}

func (d *AMQPDispatcher) publish(to string, body []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.WithField("to", to).Warn("mail dispatcher closed, dropping email")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := d.publisher.PublishWithContext(ctx, "", MailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		d.log.WithError(err).WithField("to", to).Error("failed to publish mail job")
	}
}

func (d *AMQPDispatcher) Close(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	var first error
	for _, c := range d.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
