package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
)

func ValidateTaskPenalty(penalty int64) error {
	if penalty < domain.MinTaskPenalty || penalty > domain.MaxTaskPenalty {
		return fmt.Errorf("惩罚值必须在 %d 到 %d 之间", domain.MinTaskPenalty, domain.MaxTaskPenalty)
	}
	return nil
}

func ValidateTask(task *domain.Task) error {
	if task.ExpectedTime <= 0 {
		return errors.New("预计所需时间必须大于 0")
	}

	if err := ValidateTaskPenalty(task.Penalty); err != nil {
		return err
	}

	if task.EndTime.IsZero() {
		return errors.New("截止时间不能为空")
	}

	return nil
}

// ValidateSubtask 检查子任务和父任务之间的约束，子任务的惩罚值必须与父任务一致
func ValidateSubtask(task *domain.Task, parent *domain.Task) error {
	if parent.UserID != task.UserID {
		return errors.New("父任务不存在")
	}

	if parent.ID == task.ID {
		return errors.New("任务不能成为自己的子任务")
	}

	if parent.Penalty != task.Penalty {
		return fmt.Errorf("子任务的惩罚值必须与父任务一致（%d）", parent.Penalty)
	}

	return nil
}
