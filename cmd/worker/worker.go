package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/queue"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/sequencer"
)

type sequencingPlanner interface {
	Plan(ctx context.Context, userID int64, req domain.SequencingRequest) (*domain.SequencingResult, []*domain.Task, error)
}

type userStore interface {
	GetUserByID(id int64) (*domain.User, error)
}

type worker struct {
	planner        sequencingPlanner
	users          userStore
	publisher      queue.Publisher
	emailQueue     string
	publishTimeout time.Duration
}

func (w *worker) handle(ctx context.Context, msg amqp.Delivery) queue.Decision {
	req := domain.SequencingRequest{}
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		slog.Error("排序请求反序列化失败", slog.String("error", err.Error()))
		return queue.Drop
	}

	result, tasks, err := w.planner.Plan(ctx, req.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// 正在退出，重新入队交给下一个 worker
			return queue.Requeue
		case errors.Is(err, sequencer.ErrEmptyInput), errors.Is(err, sequencer.ErrInvalidParameters):
			slog.Warn("排序请求无效", "userID", req.UserID, "error", err)
		default:
			slog.Error("排序失败", "userID", req.UserID, "error", err)
		}
		return queue.Drop
	}

	if err := w.notify(ctx, result, tasks); err != nil {
		// 结果已经保存，通知失败不需要重新排序
		slog.Error("无法发送排序完成通知", "userID", req.UserID, "error", err)
	}

	return queue.Ack
}

func (w *worker) notify(ctx context.Context, result *domain.SequencingResult, tasks []*domain.Task) error {
	user, err := w.users.GetUserByID(result.UserID)
	if err != nil {
		return err
	}

	taskNames := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskNames = append(taskNames, task.TaskName)
	}

	return queue.PublishJSON(ctx, w.publisher, w.emailQueue, w.publishTimeout, domain.MailMessage{
		Type: domain.MailTypeSequencingDone,
		To:   user.Email,
		Data: domain.SequencingDoneMailData{
			FullName:               user.FullName,
			Method:                 result.Method,
			TaskNames:              taskNames,
			TotalWeightedTardiness: result.TotalWeightedTardiness,
		},
	})
}
