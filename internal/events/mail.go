package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

// MailQueue 把邮件发布到 cmd/mail 消费的队列中
type MailQueue struct {
	ch      *amqp.Channel
	queue   string
	timeout time.Duration
}

func NewMailQueue(ch *amqp.Channel, queue string, timeout time.Duration) *MailQueue {
	return &MailQueue{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

func (q *MailQueue) PublishMail(msg domain.MailMessage) error {
	// 序列化邮件
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.ch.PublishWithContext(
		ctx,
		"",
		q.queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}

	return nil
}
