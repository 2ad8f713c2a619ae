package handler

import (
	"context"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/queue"
)

var errQueueUnavailable = errors.New("消息队列不可用")

// publishJSON 把 v 序列化后发送到指定的队列
func (h *Handler) publishJSON(ctx context.Context, queueName string, v any) error {
	if h.mqChannel == nil {
		return errQueueUnavailable
	}

	return queue.PublishJSON(ctx, h.mqChannel, queueName, time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second, v)
}
