package sequencer

import (
	"context"
	"math/rand"
	"time"
)

// RankBiasedResample 对已排好序的列表做不放回的加权抽样。
// 剩余 m 个元素中第 i 个（从 0 开始）的权重为 m - i，排名越靠前越容易先被抽中。
func RankBiasedResample(ranked []int, rng *rand.Rand) []int {
	remaining := make([]int, len(ranked))
	copy(remaining, ranked)
	selected := make([]int, 0, len(ranked))

	for len(remaining) > 0 {
		m := len(remaining)
		total := float64(m * (m + 1) / 2)
		r := rng.Float64() * total

		// 浮点误差兜底，默认取最后一个
		pick := m - 1
		acc := 0.0
		for i := 0; i < m; i++ {
			acc += float64(m - i)
			if r <= acc {
				pick = i
				break
			}
		}

		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	return selected
}

// Resample 先用遗传算法得到基准排序，再对其做按排名加权的随机重排
func Resample(ctx context.Context, parameters Parameters, jobs Jobs, rng *rand.Rand) (*Result, error) {
	start := time.Now()

	s, err := New(parameters, jobs, rng)
	if err != nil {
		return nil, err
	}

	base, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	seq := RankBiasedResample(base.Sequence, rng)

	return &Result{
		Sequence:    seq,
		Fitness:     TotalWeightedTardiness(seq, jobs),
		Generations: base.Generations,
		Duration:    time.Since(start),
	}, nil
}
