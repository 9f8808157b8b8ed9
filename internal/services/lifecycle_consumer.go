package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	resubscribeMinDelay = time.Second
	resubscribeMaxDelay = 30 * time.Second
	transientRetryDelay = time.Second
)

// deliverySource opens a manual-ack subscription on a queue
type deliverySource interface {
	Consume(queueName string) (io.Closer, <-chan amqp.Delivery, error)
}

// LifecycleConsumer feeds booking status changes from RabbitMQ into the scheduler.
// When the broker closes the subscription it resubscribes with backoff; events
// published while no consumer was attached stay queued on durable queues, and
// anything lost beyond that is recovered with a bulk backfill.
type LifecycleConsumer struct {
	source    deliverySource
	scheduler *StepScheduler
	queue     string

	minDelay   time.Duration
	maxDelay   time.Duration
	retryDelay time.Duration

	mu       sync.Mutex
	channel  io.Closer
	started  bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewLifecycleConsumer(source deliverySource, scheduler *StepScheduler, queue string) *LifecycleConsumer {
	return &LifecycleConsumer{
		source:     source,
		scheduler:  scheduler,
		queue:      queue,
		minDelay:   resubscribeMinDelay,
		maxDelay:   resubscribeMaxDelay,
		retryDelay: transientRetryDelay,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start registers the consumer and processes deliveries in a goroutine
func (c *LifecycleConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.New("lifecycle consumer already started")
	}
	channel, msgs, err := c.source.Consume(c.queue)
	if err != nil {
		return err
	}
	c.channel = channel
	c.started = true

	logrus.Infof("RabbitMQ consumer started for %s queue", c.queue)
	go c.run(ctx, msgs)
	return nil
}

func (c *LifecycleConsumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer close(c.done)
	for {
		if !c.consume(ctx, msgs) {
			logrus.Info("Lifecycle consumer stopped")
			return
		}

		logrus.Errorf("Lifecycle consumer lost its subscription to %s; resubscribing. Run a backfill if events went missing", c.queue)
		msgs = c.resubscribe(ctx)
		if msgs == nil {
			logrus.Info("Lifecycle consumer stopped")
			return
		}
	}
}

// consume handles deliveries until the channel closes (true) or the consumer stops (false)
func (c *LifecycleConsumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) bool {
	for {
		select {
		case <-c.stopChan:
			return false
		case <-ctx.Done():
			return false
		case msg, ok := <-msgs:
			if !ok {
				return true
			}
			c.handleDelivery(ctx, msg)
		}
	}
}

// resubscribe retries Consume with exponential backoff; nil means the consumer stopped
func (c *LifecycleConsumer) resubscribe(ctx context.Context) <-chan amqp.Delivery {
	delay := c.minDelay
	for {
		select {
		case <-c.stopChan:
			return nil
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		channel, msgs, err := c.source.Consume(c.queue)
		if err == nil {
			c.mu.Lock()
			c.channel = channel
			c.mu.Unlock()
			logrus.Infof("Lifecycle consumer resubscribed to %s", c.queue)
			return msgs
		}

		logrus.Errorf("Failed to resubscribe to %s: %v", c.queue, err)
		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

func (c *LifecycleConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	err := c.processMessage(ctx, msg.Body)
	switch {
	case err == nil:
		msg.Ack(false)
	case isPermanentEventError(err):
		logrus.Warnf("Dropping lifecycle event: %v", err)
		msg.Ack(false)
	default:
		// Scheduling is idempotent, so a transient failure is always requeued
		logrus.Errorf("Failed to process lifecycle event, requeueing: %v", err)
		sentry.CaptureException(err)
		select {
		case <-c.stopChan:
		case <-ctx.Done():
		case <-time.After(c.retryDelay):
		}
		msg.Nack(false, true)
	}
}

func (c *LifecycleConsumer) processMessage(ctx context.Context, body []byte) error {
	var event models.BookingLifecycleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}
	if event.BookingID == "" || event.NewStatus == "" {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "booking_id and new_status are required"}}}
	}

	// Statuses without a trigger are routine, not errors
	if _, ok := models.TriggerForBookingStatus(event.NewStatus); !ok {
		logrus.Debugf("Ignoring booking %s status %s", event.BookingID, event.NewStatus)
		return nil
	}

	_, err := c.scheduler.HandleLifecycleEvent(ctx, &event)
	return err
}

func isPermanentEventError(err error) bool {
	return IsValidationError(err) || errors.Is(err, ErrBookingNotFound)
}

// Stop ends delivery processing and closes the consumer channel. It is safe
// to call more than once, and before Start.
func (c *LifecycleConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)

		c.mu.Lock()
		started := c.started
		c.mu.Unlock()
		if !started {
			return
		}
		<-c.done

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.channel != nil {
			if err := c.channel.Close(); err != nil {
				logrus.Warnf("Error closing consumer channel: %v", err)
			}
		}
	})
}
