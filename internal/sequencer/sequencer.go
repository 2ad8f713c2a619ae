package sequencer

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	elitePercent   = 10 // 每一代直接保留的精英比例（百分比）
	parentPoolSize = 20 // 交叉时只从排名前 parentPoolSize 的个体中选父本
)

type Sequencer struct {
	parameters Parameters
	jobs       Jobs
	rng        *rand.Rand
}

func New(parameters Parameters, jobs Jobs, rng *rand.Rand) (*Sequencer, error) {
	if err := jobs.Validate(); err != nil {
		return nil, err
	}
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("随机数生成器未初始化 (nil)")
	}

	return &Sequencer{
		parameters: parameters,
		jobs:       jobs,
		rng:        rng,
	}, nil
}

// Run 执行固定代数的遗传算法，返回最后一代中适应度最小的排列
func (s *Sequencer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	n := s.jobs.Len()
	popSize := s.parameters.PopulationSize

	// 生成初始种群
	pop := make([]*Chromosome, popSize)
	for i := range pop {
		pop[i] = randomInitChromosome(n, s.rng)
	}

	eliteCount := popSize * elitePercent / 100
	poolSize := min(parentPoolSize, popSize)

	for gen := 0; gen < s.parameters.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 每一代都重新计算适应度，因为上一代的个体可能已经被变异
		if err := s.calcFitness(ctx, pop); err != nil {
			return nil, err
		}
		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].fitness < pop[j].fitness
		})

		// 保留精英
		newPop := make([]*Chromosome, 0, popSize)
		for _, elite := range pop[:eliteCount] {
			newPop = append(newPop, elite.clone())
		}

		// 繁殖
		for len(newPop) < popSize {
			var child *Chromosome
			if s.rng.Float64() < s.parameters.CrossoverRate {
				i, j := twoDistinct(poolSize, s.rng)
				child = &Chromosome{sequence: orderCrossover(pop[i].sequence, pop[j].sequence, s.rng)}
			} else {
				child = pop[s.rng.Intn(popSize)].clone()
			}

			mutateSwap(child.sequence, s.parameters.MutationRate, s.rng)
			newPop = append(newPop, child)
		}

		pop = newPop
	}

	// 变异之后适应度可能变化，需要重新计算
	if err := s.calcFitness(ctx, pop); err != nil {
		return nil, err
	}
	best := pop[0]
	for _, ch := range pop[1:] {
		if ch.fitness < best.fitness {
			best = ch
		}
	}

	seq := make([]int, n)
	copy(seq, best.sequence)

	return &Result{
		Sequence:    seq,
		Fitness:     best.fitness,
		Generations: s.parameters.MaxGenerations,
		Duration:    time.Since(start),
	}, nil
}

// calcFitness 计算整个种群的适应度。
// 适应度函数是纯函数，所以并行计算的结果与顺序计算完全一致。
func (s *Sequencer) calcFitness(ctx context.Context, pop []*Chromosome) error {
	if s.parameters.Workers <= 1 {
		for _, ch := range pop {
			ch.fitness = TotalWeightedTardiness(ch.sequence, s.jobs)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parameters.Workers)
	for _, ch := range pop {
		ch := ch
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ch.fitness = TotalWeightedTardiness(ch.sequence, s.jobs)
			return nil
		})
	}
	return g.Wait()
}
