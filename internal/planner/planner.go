package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/sequencer"
)

// TaskStore 是 Planner 需要的持久化操作，由 repository.Repository 实现
type TaskStore interface {
	GetUnfinishedLeafTasksByUserID(userID int64) ([]*domain.Task, error)
	InsertSequencingResult(result *domain.SequencingResult) error
	GetLatestSequencingResultByUserID(userID int64) (*domain.SequencingResult, error)
}

type Planner struct {
	cfg         *config.Config
	store       TaskStore
	redisClient *redis.Client // 为 nil 时不使用缓存

	now func() time.Time
}

func New(cfg *config.Config, store TaskStore, rdb *redis.Client) *Planner {
	return &Planner{
		cfg:         cfg,
		store:       store,
		redisClient: rdb,
		now:         time.Now,
	}
}

func resultCacheKey(userID int64) string {
	return fmt.Sprintf("sequencing_result_%d", userID)
}

// TasksToJobs 把任务转换为排序输入，时间单位均为分钟，截止时间相对于 now
func TasksToJobs(tasks []*domain.Task, now time.Time) sequencer.Jobs {
	jobs := sequencer.Jobs{
		Durations: make([]int64, len(tasks)),
		DueTimes:  make([]int64, len(tasks)),
		Penalties: make([]int64, len(tasks)),
	}

	for i, task := range tasks {
		jobs.Durations[i] = task.ExpectedTime
		jobs.DueTimes[i] = int64(task.EndTime.Sub(now) / time.Minute) // 已经逾期的任务为负数
		jobs.Penalties[i] = task.Penalty
	}

	return jobs
}

// BuildParameters 以方法的默认参数为基础，覆盖请求中给出的字段
func BuildParameters(method sequencer.Method, overrides domain.SequencingParameters, workers int) sequencer.Parameters {
	params := sequencer.DefaultParametersFor(method)

	if overrides.PopulationSize != nil {
		params.PopulationSize = *overrides.PopulationSize
	}
	if overrides.MaxGenerations != nil {
		params.MaxGenerations = *overrides.MaxGenerations
	}
	if overrides.CrossoverRate != nil {
		params.CrossoverRate = *overrides.CrossoverRate
	}
	if overrides.MutationRate != nil {
		params.MutationRate = *overrides.MutationRate
	}
	if workers > 0 {
		params.Workers = workers
	}

	return params
}

// NewRand 为 0 的种子表示使用当前时间
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Plan 对用户所有未完成的叶子任务排序，保存结果并返回排好序的任务
func (p *Planner) Plan(ctx context.Context, userID int64, req domain.SequencingRequest) (*domain.SequencingResult, []*domain.Task, error) {
	tasks, err := p.store.GetUnfinishedLeafTasksByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	if len(tasks) == 0 {
		return nil, nil, sequencer.ErrEmptyInput
	}

	method := sequencer.ParseMethod(req.Method)
	params := BuildParameters(method, req.Parameters, p.cfg.Sequencer.Workers)

	seed := req.Seed
	if seed == 0 {
		seed = p.cfg.Sequencer.Seed
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.Sequencer.Timeout)*time.Second)
	defer cancel()

	ordered, res, err := sequencer.Schedule(ctx, tasks, TasksToJobs(tasks, p.now()), method, params, NewRand(seed))
	if err != nil {
		return nil, nil, err
	}

	slog.Info("排序完成", "userID", userID, "method", method.String(), "tasks", len(tasks), "fitness", res.Fitness, "generations", res.Generations, "duration", res.Duration)

	result := &domain.SequencingResult{
		UserID:                 userID,
		Method:                 method.String(),
		TaskIDs:                make([]int64, 0, len(ordered)),
		TotalWeightedTardiness: res.Fitness,
	}
	for _, task := range ordered {
		result.TaskIDs = append(result.TaskIDs, task.ID)
	}

	if err := p.store.InsertSequencingResult(result); err != nil {
		return nil, nil, err
	}

	// 缓存失败不影响排序结果
	if err := p.cacheResult(ctx, result); err != nil {
		slog.Warn("无法缓存排序结果", "userID", userID, "error", err)
	}

	return result, ordered, nil
}

// Latest 优先从 redis 读取最近一次的排序结果，未命中时回退到数据库
func (p *Planner) Latest(ctx context.Context, userID int64) (*domain.SequencingResult, error) {
	if p.redisClient != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.Redis.OperationTimeout)*time.Second)
		defer cancel()

		data, err := p.redisClient.Get(ctx, resultCacheKey(userID)).Bytes()
		switch {
		case err == nil:
			var result domain.SequencingResult
			if err := json.Unmarshal(data, &result); err == nil {
				return &result, nil
			}
		case !errors.Is(err, redis.Nil):
			slog.Warn("无法读取排序结果缓存", "userID", userID, "error", err)
		}
	}

	result, err := p.store.GetLatestSequencingResultByUserID(userID)
	if err != nil {
		return nil, err
	}

	if err := p.cacheResult(ctx, result); err != nil {
		slog.Warn("无法缓存排序结果", "userID", userID, "error", err)
	}

	return result, nil
}

func (p *Planner) cacheResult(ctx context.Context, result *domain.SequencingResult) error {
	if p.redisClient == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	return p.redisClient.Set(ctx, resultCacheKey(result.UserID), data, time.Duration(p.cfg.Redis.ResultExpiration)*time.Minute).Err()
}
