package sequencer

import (
	"cmp"
	"context"
	"math/rand"
	"slices"
	"time"
)

type Method int

const (
	MethodGenetic                Method = 1
	MethodResampling             Method = 2
	MethodEarliestDueDate        Method = 3
	MethodHighestPenalty         Method = 4
	MethodShortestProcessingTime Method = 5
)

// ParseMethod 把数字编码转换为排序方法，无法识别的编码一律回退到遗传算法
func ParseMethod(code int) Method {
	switch m := Method(code); m {
	case MethodGenetic, MethodResampling, MethodEarliestDueDate, MethodHighestPenalty, MethodShortestProcessingTime:
		return m
	default:
		return MethodGenetic
	}
}

func (m Method) String() string {
	switch m {
	case MethodResampling:
		return "resampling"
	case MethodEarliestDueDate:
		return "earliest_due_date"
	case MethodHighestPenalty:
		return "highest_penalty"
	case MethodShortestProcessingTime:
		return "shortest_processing_time"
	default:
		return "genetic"
	}
}

func DefaultParametersFor(m Method) Parameters {
	if m == MethodResampling {
		return ResamplingParameters()
	}
	return DefaultParameters()
}

// Dispatch 按方法计算作业顺序。无论哪种方法都会先校验输入。
func Dispatch(ctx context.Context, method Method, jobs Jobs, parameters Parameters, rng *rand.Rand) (*Result, error) {
	if err := jobs.Validate(); err != nil {
		return nil, err
	}

	switch ParseMethod(int(method)) {
	case MethodResampling:
		return Resample(ctx, parameters, jobs, rng)
	case MethodEarliestDueDate:
		return sortedResult(jobs, ascendingBy(jobs.DueTimes)), nil
	case MethodHighestPenalty:
		return sortedResult(jobs, descendingBy(jobs.Penalties)), nil
	case MethodShortestProcessingTime:
		return sortedResult(jobs, ascendingBy(jobs.Durations)), nil
	default:
		s, err := New(parameters, jobs, rng)
		if err != nil {
			return nil, err
		}
		return s.Run(ctx)
	}
}

// 比较函数返回 0 时按原始下标升序，保证相同键值的作业保持输入顺序
func ascendingBy(keys []int64) func(a, b int) int {
	return func(a, b int) int {
		if c := cmp.Compare(keys[a], keys[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
}

func descendingBy(keys []int64) func(a, b int) int {
	return func(a, b int) int {
		if c := cmp.Compare(keys[b], keys[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
}

func sortedResult(jobs Jobs, compare func(a, b int) int) *Result {
	start := time.Now()

	seq := make([]int, jobs.Len())
	for i := range seq {
		seq[i] = i
	}
	slices.SortFunc(seq, compare)

	return &Result{
		Sequence: seq,
		Fitness:  TotalWeightedTardiness(seq, jobs),
		Duration: time.Since(start),
	}
}

// Schedule 计算顺序并映射回调用方的作业标识
func Schedule[T any](ctx context.Context, ids []T, jobs Jobs, method Method, parameters Parameters, rng *rand.Rand) ([]T, *Result, error) {
	if err := jobs.Validate(); err != nil {
		return nil, nil, err
	}
	if len(ids) != jobs.Len() {
		return nil, nil, ErrMismatchedLength
	}

	res, err := Dispatch(ctx, method, jobs, parameters, rng)
	if err != nil {
		return nil, nil, err
	}

	return MapIdentifiers(ids, res.Sequence), res, nil
}

// MapIdentifiers 把下标排列映射为标识序列
func MapIdentifiers[T any](ids []T, seq []int) []T {
	out := make([]T, len(seq))
	for i, j := range seq {
		out[i] = ids[j]
	}
	return out
}
