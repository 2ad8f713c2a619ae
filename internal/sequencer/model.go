package sequencer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMismatchedLength  = errors.New("工期、截止时间与惩罚权重数组的长度必须相同")
	ErrEmptyInput        = errors.New("工期、截止时间与惩罚权重数组的长度必须大于零")
	ErrInvalidParameters = errors.New("遗传算法参数不合法")
)

// Jobs 以三个平行数组描述所有作业，下标即作业编号
type Jobs struct {
	Durations []int64 // 处理时长
	DueTimes  []int64 // 截止时间，可以为负数
	Penalties []int64 // 延误惩罚权重
}

func (j Jobs) Len() int {
	return len(j.Durations)
}

// Validate 先检查长度是否一致，再检查是否为空
func (j Jobs) Validate() error {
	if len(j.Durations) != len(j.DueTimes) || len(j.Durations) != len(j.Penalties) {
		return ErrMismatchedLength
	}
	if len(j.Durations) == 0 {
		return ErrEmptyInput
	}
	return nil
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int     // 种群大小
	MaxGenerations int     // 迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	Workers        int     // 并行计算适应度的 goroutine 数量
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 50,
		MaxGenerations: 500,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
		Workers:        1,
	}
}

// ResamplingParameters 是重采样前置搜索使用的参数，迭代次数比单独运行时少
func ResamplingParameters() Parameters {
	p := DefaultParameters()
	p.MaxGenerations = 100
	return p
}

func (p Parameters) Validate() error {
	if p.PopulationSize < 2 {
		return fmt.Errorf("%w: 种群大小必须 >= 2 (得到 %d)", ErrInvalidParameters, p.PopulationSize)
	}
	if p.MaxGenerations < 1 {
		return fmt.Errorf("%w: 迭代次数必须 >= 1 (得到 %d)", ErrInvalidParameters, p.MaxGenerations)
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("%w: 交叉概率必须在 [0,1] 之间 (得到 %f)", ErrInvalidParameters, p.CrossoverRate)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("%w: 变异概率必须在 [0,1] 之间 (得到 %f)", ErrInvalidParameters, p.MutationRate)
	}
	if p.Workers < 1 {
		return fmt.Errorf("%w: 并行数必须 >= 1 (得到 %d)", ErrInvalidParameters, p.Workers)
	}
	return nil
}

// Chromosome: 作业编号 0..N-1 的一个排列，每个染色体独占自己的切片
type Chromosome struct {
	sequence []int
	fitness  int64
}

func (ch *Chromosome) clone() *Chromosome {
	seq := make([]int, len(ch.sequence))
	copy(seq, ch.sequence)
	return &Chromosome{sequence: seq, fitness: ch.fitness}
}

// Result 是一次搜索的输出
type Result struct {
	Sequence    []int         `json:"sequence"`
	Fitness     int64         `json:"fitness"`
	Generations int           `json:"generations"`
	Duration    time.Duration `json:"duration"`
}
