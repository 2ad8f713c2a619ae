package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/planner"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/sequencer"
)

// 从标准输入读取作业数据，把排好序的任务ID以 JSON 数组写到标准输出
func main() {
	// 标准输出只用于结果，日志写到标准错误
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadSequencerConfig()
	if err != nil {
		logger.Error("无法读取配置", "error", err)
		os.Exit(1)
	}

	var req domain.SequenceEnvelope
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		logger.Error("无法解析输入", "error", err)
		os.Exit(1)
	}

	method := sequencer.ParseMethod(int(req.Alg))
	params := planner.BuildParameters(method, req.SequencingParameters, cfg.Workers)
	jobs := sequencer.Jobs{
		Durations: req.ExpectedTime,
		DueTimes:  req.EndTimes,
		Penalties: req.Penalty,
	}

	seed := req.Seed
	if seed == 0 {
		seed = cfg.Seed
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout)*time.Second)
	defer cancel()

	ids, res, err := sequencer.Schedule(ctx, req.TaskIDs, jobs, method, params, planner.NewRand(seed))
	if err != nil {
		logger.Error("排序失败", "method", method.String(), "error", err)
		os.Exit(1)
	}

	logger.Info("排序完成", "method", method.String(), "tasks", len(ids), "fitness", res.Fitness, "generations", res.Generations, "duration", res.Duration)

	if err := json.NewEncoder(os.Stdout).Encode(ids); err != nil {
		logger.Error("无法输出结果", "error", err)
		os.Exit(1)
	}
}
