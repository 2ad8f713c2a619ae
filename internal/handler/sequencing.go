package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/planner"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/sequencer"
)

type sequenceResponse struct {
	TaskIDs                []json.RawMessage `json:"taskIDs"`
	Method                 string            `json:"method"`
	TotalWeightedTardiness int64             `json:"totalWeightedTardiness"`
	Generations            int               `json:"generations"`
}

// sequencingError 把排序相关的错误转换为响应
func (h *Handler) sequencingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sequencer.ErrMismatchedLength):
		h.errorResponse(w, r, "任务ID、预计时间、截止时间和惩罚值的数量必须一致")
	case errors.Is(err, sequencer.ErrEmptyInput):
		h.errorResponse(w, r, "没有需要排序的任务")
	case errors.Is(err, sequencer.ErrInvalidParameters):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.errorResponse(w, r, "排序超时")
	default:
		h.internalServerError(w, r, err)
	}
}

// Sequence 接收完整的作业数据并返回排好序的任务ID，不涉及数据库
func (h *Handler) Sequence(w http.ResponseWriter, r *http.Request) {
	var req domain.SequenceEnvelope

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req.SequencingParameters); err != nil {
		h.badRequest(w, r, err)
		return
	}

	method := sequencer.ParseMethod(int(req.Alg))
	params := planner.BuildParameters(method, req.SequencingParameters, h.config.Sequencer.Workers)
	jobs := sequencer.Jobs{
		Durations: req.ExpectedTime,
		DueTimes:  req.EndTimes,
		Penalties: req.Penalty,
	}

	seed := req.Seed
	if seed == 0 {
		seed = h.config.Sequencer.Seed
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Sequencer.Timeout)*time.Second)
	defer cancel()

	ids, res, err := sequencer.Schedule(ctx, req.TaskIDs, jobs, method, params, planner.NewRand(seed))
	if err != nil {
		h.sequencingError(w, r, err)
		return
	}

	h.successResponse(w, r, "排序成功", sequenceResponse{
		TaskIDs:                ids,
		Method:                 method.String(),
		TotalWeightedTardiness: res.Fitness,
		Generations:            res.Generations,
	})
}

type sequencingRequest struct {
	Method     int                         `json:"method"`
	Parameters domain.SequencingParameters `json:"parameters"`
	Seed       int64                       `json:"seed"`
}

func (h *Handler) readSequencingRequest(w http.ResponseWriter, r *http.Request) (domain.SequencingRequest, bool) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req sequencingRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return domain.SequencingRequest{}, false
	}
	if err := h.validate.Struct(req.Parameters); err != nil {
		h.badRequest(w, r, err)
		return domain.SequencingRequest{}, false
	}

	return domain.SequencingRequest{
		UserID:     myInfo.ID,
		Method:     req.Method,
		Parameters: req.Parameters,
		Seed:       req.Seed,
	}, true
}

func (h *Handler) SequenceMyTasks(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readSequencingRequest(w, r)
	if !ok {
		return
	}

	result, tasks, err := h.planner.Plan(r.Context(), req.UserID, req)
	if err != nil {
		h.sequencingError(w, r, err)
		return
	}

	h.successResponse(w, r, "排序成功", map[string]any{
		"result": result,
		"tasks":  tasks,
	})
}

// SequenceMyTasksAsync 把排序请求放入队列，由 worker 完成后通过邮件通知
func (h *Handler) SequenceMyTasksAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readSequencingRequest(w, r)
	if !ok {
		return
	}

	if err := h.publishJSON(r.Context(), h.config.RabbitMQ.SequencingQueue, req); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排序请求已提交，完成后将通过邮件通知", nil)
}

func (h *Handler) GetLatestSequencingResult(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	result, err := h.planner.Latest(r.Context(), myInfo.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "暂无排序结果", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排序结果成功", result)
}
