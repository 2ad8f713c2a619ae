package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Decision 表示一条消息处理完之后的去向
type Decision int

const (
	Ack     Decision = iota // 确认消息
	Requeue                 // 拒绝并重新入队
	Drop                    // 拒绝并丢弃
)

// Handler 处理单条消息，ctx 在退出时会被取消
type Handler func(ctx context.Context, msg amqp.Delivery) Decision

// Declarer 和 Publisher 都由 *amqp.Channel 实现
type Declarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Declare 声明持久化队列
func Declare(ch Declarer, queues ...string) error {
	for _, queue := range queues {
		if _, err := ch.QueueDeclare(
			queue, // 队列名称
			true,  // 是否持久化
			false, // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
			false, // 是否独占
			false, // 是否不等待，等待 RabbitMQ 确认队列是否创建成功
			nil,   // 额外参数
		); err != nil {
			return err
		}
	}
	return nil
}

// PublishJSON 把 v 序列化后以持久化消息发送到指定的队列
func PublishJSON(ctx context.Context, p Publisher, queue string, timeout time.Duration, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return p.PublishWithContext(
		ctx,
		"",
		queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume 逐条处理消息并按 handle 的结果确认或拒绝，直到 ctx 被取消或通道关闭
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				slog.Error("消息通道已关闭")
				return
			}

			var err error
			switch handle(ctx, msg) {
			case Ack:
				err = msg.Ack(false)
			case Requeue:
				err = msg.Nack(false, true)
			default:
				err = msg.Nack(false, false)
			}
			if err != nil {
				slog.Error("无法确认消息", "deliveryTag", msg.DeliveryTag, "error", err)
			}
		}
	}
}

// Serve 在后台消费消息，收到 CTRL+C 或 SIGTERM 后取消正在处理的消息并等待退出，
// 消息通道关闭时直接返回
func Serve(name string, deliveries <-chan amqp.Delivery, handle Handler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		Consume(ctx, deliveries, handle)
	}()

	slog.Info("等待消息...（按 CTRL+C 退出）", "worker", name)
	// 通道被关闭时没有必要继续等待信号
	select {
	case <-sigChan:
	case <-done:
	}

	slog.Info("正在关闭 worker...", "worker", name)
	cancel()
	wg.Wait()
	slog.Info("worker 已成功关闭", "worker", name)
}
