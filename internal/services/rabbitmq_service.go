package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/config"
	"github.com/onegreenvn/booking-followup-backend/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// NewRabbitMQService connects, opens a confirm-mode publishing channel and
// declares the given queues as durable
func NewRabbitMQService(cfg config.RabbitMQConfig, queues ...string) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	for _, queueName := range queues {
		if err := declareQueue(channel, queueName); err != nil {
			channel.Close()
			conn.Close()
			return nil, err
		}
	}

	logrus.Infof("RabbitMQ service initialized (%s:%s)", cfg.Host, cfg.Port)
	return &RabbitMQService{conn: conn, channel: channel}, nil
}

func declareQueue(channel *amqp.Channel, queueName string) error {
	_, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return nil
}

// PublishJSON publishes a persistent JSON message and waits for the broker ack
func (s *RabbitMQService) PublishJSON(ctx context.Context, queueName, messageID string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	s.mu.Lock()
	confirmation, err := s.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting for publish confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("broker nacked message %s", messageID)
	}

	logrus.Debugf("Message %s published to queue %s", messageID, queueName)
	return nil
}

// Consume opens a dedicated channel and registers a manual-ack consumer
func (s *RabbitMQService) Consume(queueName string) (io.Closer, <-chan amqp.Delivery, error) {
	channel, err := s.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := declareQueue(channel, queueName); err != nil {
		channel.Close()
		return nil, nil, err
	}
	if err := channel.Qos(10, 0, false); err != nil {
		channel.Close()
		return nil, nil, fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		channel.Close()
		return nil, nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return channel, msgs, nil
}

// Close closes the RabbitMQ connection
func (s *RabbitMQService) Close() error {
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			logrus.Warnf("Error closing channel: %v", err)
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logrus.Warnf("Error closing connection: %v", err)
		}
	}
	return nil
}

// messagePublisher is the slice of RabbitMQService the dispatcher needs
type messagePublisher interface {
	PublishJSON(ctx context.Context, queueName, messageID string, message interface{}) error
}

// SendRequest is the message handed to the channel senders
type SendRequest struct {
	LogID         string   `json:"log_id"`
	BookingID     string   `json:"booking_id"`
	WorkflowID    string   `json:"workflow_id"`
	Attempt       int      `json:"attempt"`
	TriggerAction string   `json:"trigger_action"`
	Channel       string   `json:"channel"`
	TemplateID    string   `json:"template_id"`
	Variables     []string `json:"variables"`
	To            string   `json:"to"`
	ClientName    string   `json:"client_name"`
	DomainName    string   `json:"domain_name,omitempty"`
	SenderEmail   string   `json:"sender_email,omitempty"`
	SenderName    string   `json:"sender_name,omitempty"`
}

// NewSendRequest builds the outbound message for a log entry
func NewSendRequest(entry *models.WorkflowLog) SendRequest {
	to := entry.ClientPhone
	if entry.Step.Channel == models.ChannelEmail {
		to = entry.ClientEmail
	}
	return SendRequest{
		LogID:         entry.ID,
		BookingID:     entry.BookingID,
		WorkflowID:    entry.WorkflowID,
		Attempt:       entry.Attempt,
		TriggerAction: entry.TriggerAction,
		Channel:       entry.Step.Channel,
		TemplateID:    entry.Step.TemplateID,
		Variables:     entry.Variables.Values(),
		To:            to,
		ClientName:    entry.ClientName,
		DomainName:    entry.Step.DomainName,
		SenderEmail:   entry.Step.SenderEmail,
		SenderName:    entry.Step.SenderName,
	}
}

// AMQPDispatcher hands send requests to the channel senders over RabbitMQ.
// A broker ack counts as executed.
type AMQPDispatcher struct {
	publisher messagePublisher
	queue     string
}

func NewAMQPDispatcher(publisher messagePublisher, queue string) *AMQPDispatcher {
	return &AMQPDispatcher{publisher: publisher, queue: queue}
}

// Send publishes the entry and waits for the broker confirm
func (d *AMQPDispatcher) Send(ctx context.Context, entry *models.WorkflowLog) (*DispatchReceipt, error) {
	req := NewSendRequest(entry)
	if req.To == "" {
		return nil, &DispatchError{
			Message: "missing recipient",
			Details: map[string]interface{}{"channel": req.Channel},
		}
	}

	messageID := fmt.Sprintf("%s:%d", entry.ID, entry.Attempt)
	if err := d.publisher.PublishJSON(ctx, d.queue, messageID, req); err != nil {
		return nil, &DispatchError{
			Message: "failed to hand off message",
			Details: map[string]interface{}{"queue": d.queue, "cause": err.Error()},
			Err:     err,
		}
	}

	return &DispatchReceipt{
		Provider:  "rabbitmq",
		MessageID: messageID,
		Metadata: map[string]interface{}{
			"queue":       d.queue,
			"template_id": req.TemplateID,
			"channel":     req.Channel,
		},
	}, nil
}
