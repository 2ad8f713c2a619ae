package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/utils"
)

func (h *Handler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	tasks, err := h.repository.GetTasksByUserID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务列表成功", tasks)
}

func (h *Handler) GetMyLeafTasks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	tasks, err := h.repository.GetUnfinishedLeafTasksByUserID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取待完成任务成功", tasks)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ParentID     *int64    `json:"parentID"`
		TaskName     string    `json:"taskName" validate:"required,max=100"`
		TaskDetail   string    `json:"taskDetail" validate:"max=1000"`
		ExpectedTime int64     `json:"expectedTime" validate:"required,min=1"`
		Penalty      int64     `json:"penalty" validate:"required,min=1,max=10"`
		EndTime      time.Time `json:"endTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	task := &domain.Task{
		UserID:       myInfo.ID,
		ParentID:     req.ParentID,
		TaskName:     req.TaskName,
		TaskDetail:   req.TaskDetail,
		ExpectedTime: req.ExpectedTime,
		Penalty:      req.Penalty,
		EndTime:      req.EndTime,
	}

	if err := utils.ValidateTask(task); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if task.ParentID != nil {
		parent, err := h.repository.GetTaskByID(*task.ParentID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "父任务不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		if err := utils.ValidateSubtask(task, parent); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	if err := h.repository.CreateTask(task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建任务成功", task)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)
	h.successResponse(w, r, "获取任务成功", task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)

	var req struct {
		TaskName     *string    `json:"taskName" validate:"omitempty,max=100"`
		TaskDetail   *string    `json:"taskDetail" validate:"omitempty,max=1000"`
		ExpectedTime *int64     `json:"expectedTime" validate:"omitempty,min=1"`
		Penalty      *int64     `json:"penalty" validate:"omitempty,min=1,max=10"`
		EndTime      *time.Time `json:"endTime"`
		IsFinished   *bool      `json:"isFinished"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.TaskName != nil {
		task.TaskName = *req.TaskName
	}
	if req.TaskDetail != nil {
		task.TaskDetail = *req.TaskDetail
	}
	if req.ExpectedTime != nil {
		task.ExpectedTime = *req.ExpectedTime
	}
	if req.EndTime != nil {
		task.EndTime = *req.EndTime
	}
	if req.IsFinished != nil {
		task.IsFinished = *req.IsFinished
	}

	if req.Penalty != nil && *req.Penalty != task.Penalty {
		// 惩罚值在整棵任务树中保持一致，只有独立的任务可以修改
		if task.ParentID != nil {
			h.errorResponse(w, r, "子任务的惩罚值必须与父任务一致")
			return
		}

		children, err := h.repository.CountChildTasks(task.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if children > 0 {
			h.errorResponse(w, r, "存在子任务的任务不能修改惩罚值")
			return
		}

		task.Penalty = *req.Penalty
	}

	if err := utils.ValidateTask(task); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateTask(task); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "任务已被修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新任务成功", task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)

	if err := h.repository.DeleteTask(task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除任务成功", nil)
}
