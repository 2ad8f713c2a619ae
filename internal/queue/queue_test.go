package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecord struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	records []ackRecord
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, ackRecord{tag: tag, ack: true})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, ackRecord{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestConsumeFollowsDecision(t *testing.T) {
	acker := &fakeAcknowledger{}
	deliveries := make(chan amqp.Delivery, 4)
	for i, body := range []string{"ack", "requeue", "drop", "unknown"} {
		deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: uint64(i + 1), Body: []byte(body)}
	}
	close(deliveries)

	Consume(context.Background(), deliveries, func(ctx context.Context, msg amqp.Delivery) Decision {
		switch string(msg.Body) {
		case "ack":
			return Ack
		case "requeue":
			return Requeue
		case "drop":
			return Drop
		}
		return Decision(42)
	})

	assert.Equal(t, []ackRecord{
		{tag: 1, ack: true},
		{tag: 2, requeue: true},
		{tag: 3},
		{tag: 4},
	}, acker.records)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 通道保持打开，只有 ctx 能让 Consume 返回
	deliveries := make(chan amqp.Delivery)

	done := make(chan struct{})
	go func() {
		Consume(ctx, deliveries, func(ctx context.Context, msg amqp.Delivery) Decision {
			return Ack
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Consume 没有在 ctx 取消后返回")
	}
}

func TestConsumePassesContextToHandler(t *testing.T) {
	acker := &fakeAcknowledger{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 9}
	close(deliveries)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "worker")

	var got any
	Consume(ctx, deliveries, func(ctx context.Context, msg amqp.Delivery) Decision {
		got = ctx.Value(key{})
		return Ack
	})

	assert.Equal(t, "worker", got)
}

type publishCall struct {
	exchange    string
	key         string
	mandatory   bool
	hasDeadline bool
	msg         amqp.Publishing
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	_, ok := ctx.Deadline()
	p.calls = append(p.calls, publishCall{exchange: exchange, key: key, mandatory: mandatory, hasDeadline: ok, msg: msg})
	return p.err
}

func TestPublishJSON(t *testing.T) {
	p := &fakePublisher{}

	err := PublishJSON(context.Background(), p, "email_queue", 5*time.Second, map[string]string{"type": "welcome"})
	require.NoError(t, err)
	require.Len(t, p.calls, 1)

	call := p.calls[0]
	assert.Equal(t, "", call.exchange)
	assert.Equal(t, "email_queue", call.key)
	assert.True(t, call.mandatory)
	assert.True(t, call.hasDeadline)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.JSONEq(t, `{"type":"welcome"}`, string(call.msg.Body))
}

func TestPublishJSONErrors(t *testing.T) {
	t.Run("unmarshalable value", func(t *testing.T) {
		p := &fakePublisher{}
		var typeErr *json.UnsupportedTypeError
		err := PublishJSON(context.Background(), p, "q", time.Second, make(chan int))
		assert.ErrorAs(t, err, &typeErr)
		assert.Empty(t, p.calls)
	})

	t.Run("publisher error", func(t *testing.T) {
		boom := errors.New("channel closed")
		p := &fakePublisher{err: boom}
		assert.ErrorIs(t, PublishJSON(context.Background(), p, "q", time.Second, 1), boom)
	})
}

type fakeDeclarer struct {
	declared []string
	durable  []bool
	failOn   string
}

func (d *fakeDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if name == d.failOn {
		return amqp.Queue{}, errors.New("access refused")
	}
	d.declared = append(d.declared, name)
	d.durable = append(d.durable, durable)
	return amqp.Queue{Name: name}, nil
}

func TestDeclare(t *testing.T) {
	d := &fakeDeclarer{}
	require.NoError(t, Declare(d, "sequencing_queue", "email_queue"))
	assert.Equal(t, []string{"sequencing_queue", "email_queue"}, d.declared)
	assert.Equal(t, []bool{true, true}, d.durable)

	d = &fakeDeclarer{failOn: "email_queue"}
	assert.Error(t, Declare(d, "sequencing_queue", "email_queue", "other"))
	assert.Equal(t, []string{"sequencing_queue"}, d.declared)
}
