package planner

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-scheduler/backend/internal/sequencer"
)

type fakeStore struct {
	tasks  []*domain.Task
	err    error
	saved  []*domain.SequencingResult
	nextID int64
}

func (s *fakeStore) GetUnfinishedLeafTasksByUserID(userID int64) ([]*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Task{}
	for _, task := range s.tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertSequencingResult(result *domain.SequencingResult) error {
	s.nextID++
	result.ID = s.nextID
	s.saved = append(s.saved, result)
	return nil
}

func (s *fakeStore) GetLatestSequencingResultByUserID(userID int64) (*domain.SequencingResult, error) {
	for i := len(s.saved) - 1; i >= 0; i-- {
		if s.saved[i].UserID == userID {
			return s.saved[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

var testNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestPlanner(store TaskStore) *Planner {
	cfg := &config.Config{}
	cfg.Sequencer = config.SequencerConfig{Workers: 1, Seed: 7, Timeout: 10}

	p := New(cfg, store, nil)
	p.now = func() time.Time { return testNow }
	return p
}

func ptr[T any](v T) *T {
	return &v
}

func TestTasksToJobs(t *testing.T) {
	tasks := []*domain.Task{
		{ID: 1, ExpectedTime: 120, Penalty: 3, EndTime: testNow.Add(90 * time.Minute)},
		{ID: 2, ExpectedTime: 30, Penalty: 10, EndTime: testNow.Add(-30 * time.Minute)},
		{ID: 3, ExpectedTime: 60, Penalty: 1, EndTime: testNow.Add(90*time.Minute + 30*time.Second)},
	}

	jobs := TasksToJobs(tasks, testNow)

	assert.Equal(t, []int64{120, 30, 60}, jobs.Durations)
	assert.Equal(t, []int64{90, -30, 90}, jobs.DueTimes)
	assert.Equal(t, []int64{3, 10, 1}, jobs.Penalties)
	require.NoError(t, jobs.Validate())
}

func TestTasksToJobsEmpty(t *testing.T) {
	jobs := TasksToJobs(nil, testNow)
	assert.ErrorIs(t, jobs.Validate(), sequencer.ErrEmptyInput)
}

func TestBuildParameters(t *testing.T) {
	t.Run("method defaults", func(t *testing.T) {
		params := BuildParameters(sequencer.MethodResampling, domain.SequencingParameters{}, 0)
		assert.Equal(t, sequencer.ResamplingParameters(), params)

		params = BuildParameters(sequencer.MethodGenetic, domain.SequencingParameters{}, 0)
		assert.Equal(t, sequencer.DefaultParameters(), params)
	})

	t.Run("overrides", func(t *testing.T) {
		overrides := domain.SequencingParameters{
			PopulationSize: ptr(10),
			MaxGenerations: ptr(3),
			CrossoverRate:  ptr(0.5),
			MutationRate:   ptr(0.0),
		}
		params := BuildParameters(sequencer.MethodResampling, overrides, 4)

		assert.Equal(t, 10, params.PopulationSize)
		assert.Equal(t, 3, params.MaxGenerations)
		assert.Equal(t, 0.5, params.CrossoverRate)
		assert.Equal(t, 0.0, params.MutationRate)
		assert.Equal(t, 4, params.Workers)
	})
}

func TestNewRandSeeded(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestPlanDeterministicMethod(t *testing.T) {
	store := &fakeStore{tasks: []*domain.Task{
		{ID: 11, UserID: 1, TaskName: "a", ExpectedTime: 60, Penalty: 1, EndTime: testNow.Add(300 * time.Minute)},
		{ID: 12, UserID: 1, TaskName: "b", ExpectedTime: 60, Penalty: 5, EndTime: testNow.Add(60 * time.Minute)},
		{ID: 13, UserID: 1, TaskName: "c", ExpectedTime: 60, Penalty: 2, EndTime: testNow.Add(120 * time.Minute)},
		{ID: 99, UserID: 2, TaskName: "other", ExpectedTime: 1, Penalty: 1, EndTime: testNow},
	}}
	p := newTestPlanner(store)

	result, ordered, err := p.Plan(context.Background(), 1, domain.SequencingRequest{Method: int(sequencer.MethodEarliestDueDate)})
	require.NoError(t, err)

	assert.Equal(t, []int64{12, 13, 11}, result.TaskIDs)
	assert.Equal(t, "earliest_due_date", result.Method)
	assert.Equal(t, int64(0), result.TotalWeightedTardiness)
	assert.Equal(t, int64(1), result.UserID)
	require.Len(t, ordered, 3)
	assert.Equal(t, "b", ordered[0].TaskName)

	require.Len(t, store.saved, 1)
	assert.Equal(t, int64(1), result.ID)
}

func TestPlanGeneticIsReproducibleWithSeed(t *testing.T) {
	tasks := []*domain.Task{}
	for i := int64(1); i <= 8; i++ {
		tasks = append(tasks, &domain.Task{
			ID:           i,
			UserID:       1,
			ExpectedTime: 10 * i,
			Penalty:      (i % 10) + 1,
			EndTime:      testNow.Add(time.Duration(200-15*i) * time.Minute),
		})
	}

	req := domain.SequencingRequest{
		Method: int(sequencer.MethodGenetic),
		Parameters: domain.SequencingParameters{
			PopulationSize: ptr(20),
			MaxGenerations: ptr(30),
		},
		Seed: 2024,
	}

	first, _, err := newTestPlanner(&fakeStore{tasks: tasks}).Plan(context.Background(), 1, req)
	require.NoError(t, err)
	second, _, err := newTestPlanner(&fakeStore{tasks: tasks}).Plan(context.Background(), 1, req)
	require.NoError(t, err)

	assert.Equal(t, first.TaskIDs, second.TaskIDs)
	assert.Equal(t, first.TotalWeightedTardiness, second.TotalWeightedTardiness)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, first.TaskIDs)
}

func TestPlanErrors(t *testing.T) {
	t.Run("no tasks", func(t *testing.T) {
		_, _, err := newTestPlanner(&fakeStore{}).Plan(context.Background(), 1, domain.SequencingRequest{})
		assert.ErrorIs(t, err, sequencer.ErrEmptyInput)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := newTestPlanner(&fakeStore{err: boom}).Plan(context.Background(), 1, domain.SequencingRequest{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		store := &fakeStore{tasks: []*domain.Task{{ID: 1, UserID: 1, ExpectedTime: 1, Penalty: 1, EndTime: testNow}}}
		req := domain.SequencingRequest{Parameters: domain.SequencingParameters{PopulationSize: ptr(1)}}
		_, _, err := newTestPlanner(store).Plan(context.Background(), 1, req)
		assert.ErrorIs(t, err, sequencer.ErrInvalidParameters)
		assert.Empty(t, store.saved)
	})
}

func TestLatestWithoutCache(t *testing.T) {
	store := &fakeStore{}
	p := newTestPlanner(store)

	_, err := p.Latest(context.Background(), 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	store.saved = append(store.saved, &domain.SequencingResult{ID: 5, UserID: 1, TaskIDs: []int64{3, 1}})
	result, err := p.Latest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.ID)
}

func TestCacheResultStopsWithCallerContext(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.OperationTimeout = 30
	cfg.Redis.ResultExpiration = 10

	// 地址不可达，只有调用方的 context 能让写入立即返回
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	p := New(cfg, &fakeStore{}, rdb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.cacheResult(ctx, &domain.SequencingResult{UserID: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheResultWithoutRedis(t *testing.T) {
	p := newTestPlanner(&fakeStore{})
	assert.NoError(t, p.cacheResult(context.Background(), &domain.SequencingResult{UserID: 1}))
}
