// Package events 封装 RabbitMQ 上的消息：目录变更通过 fanout exchange 广播给各个实例，邮件发布到邮件队列
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

var ErrDeliveriesClosed = errors.New("消息通道已关闭")

func DeclareExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange, // 名称
		"fanout", // 类型，每个实例都需要收到消息
		true,     // 是否持久化
		false,    // 是否自动删除
		false,    // 是否内部使用
		false,    // 是否不等待
		nil,      // 额外参数
	)
}

type Publisher struct {
	ch       *amqp.Channel
	exchange string
	timeout  time.Duration
}

func NewPublisher(ch *amqp.Channel, exchange string, timeout time.Duration) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		timeout:  timeout,
	}
}

func (p *Publisher) Publish(evt domain.CatalogEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("publish catalog event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return fmt.Errorf("publish catalog event: %w", err)
	}

	return nil
}

func DecodeCatalogEvent(body []byte) (domain.CatalogEvent, error) {
	evt := domain.CatalogEvent{}
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("decode catalog event: %w", err)
	}
	if evt.Type == "" {
		return evt, errors.New("decode catalog event: 缺少事件类型")
	}
	return evt, nil
}

// Run 持续监听目录事件：通道断开或者打开失败之后等待 retry 再重新订阅，直到 ctx 被取消
// 每次订阅成功时调用 onState(true)，中断时调用 onState(false)
func Run(ctx context.Context, open func() (*amqp.Channel, error), exchange string, retry time.Duration, handle func(domain.CatalogEvent) error, onState func(up bool)) {
	for {
		ch, err := open()
		if err == nil {
			err = consume(ctx, ch, exchange, handle, func() { onState(true) })
			_ = ch.Close()
		}
		if ctx.Err() != nil {
			return
		}

		onState(false)
		slog.Error("目录事件监听中断，稍后重试", "error", err, "retry", retry)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

// consume 为当前实例声明一个独占队列并绑定到 exchange，收到的每个事件都交给 handle 处理
// 直到 ctx 被取消或者消息通道被关闭才返回
func consume(ctx context.Context, ch *amqp.Channel, exchange string, handle func(domain.CatalogEvent) error, ready func()) error {
	q, err := ch.QueueDeclare(
		"",    // 由 RabbitMQ 生成队列名称
		false, // 不持久化
		true,  // 没有消费者时自动删除
		true,  // 独占，只有当前连接可以使用
		false, // 是否不等待
		nil,   // 额外参数
	)
	if err != nil {
		return fmt.Errorf("declare catalog queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("bind catalog queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume catalog queue: %w", err)
	}
	ready()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			process(msg, handle)
		}
	}
}

// process 处理一条消息并确认
// 处理失败的事件重新入队一次，再次失败才丢弃，避免一直重试同一条消息
func process(msg amqp.Delivery, handle func(domain.CatalogEvent) error) {
	evt, err := DecodeCatalogEvent(msg.Body)
	if err != nil {
		slog.Error("目录事件反序列化失败", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := handle(evt); err != nil {
		requeue := !msg.Redelivered
		slog.Error("处理目录事件失败", "type", evt.Type, "requeue", requeue, "error", err)
		_ = msg.Nack(false, requeue)
		return
	}

	_ = msg.Ack(false)
}
