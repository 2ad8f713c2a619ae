package sequencer

import "math/rand"

// randomInitChromosome 用 Fisher-Yates 洗牌生成一个均匀随机的排列
func randomInitChromosome(n int, rng *rand.Rand) *Chromosome {
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
	return &Chromosome{sequence: seq}
}

// twoDistinct 在 [0, n) 中均匀选出两个不同的下标，要求 n >= 2
func twoDistinct(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// orderCrossover 顺序交叉，只产生一个子代。
// 子代在 [a, b) 上保留 p1 的片段，其余位置从 b 开始（循环）
// 按 p2 从 b 开始（循环）的顺序填入尚未出现的基因。
func orderCrossover(p1, p2 []int, rng *rand.Rand) []int {
	n := len(p1)
	child := make([]int, n)
	if n < 2 {
		// 选不出两个不同的切点，直接复制父本
		copy(child, p1)
		return child
	}

	a, b := twoDistinct(n, rng)
	if a > b {
		a, b = b, a
	}

	used := make([]bool, n)
	for i := a; i < b; i++ {
		child[i] = p1[i]
		used[p1[i]] = true
	}

	pos := b
	for i := 0; i < n; i++ {
		gene := p2[(b+i)%n]
		if used[gene] {
			continue
		}
		child[pos%n] = gene
		used[gene] = true
		pos++
	}

	return child
}

// mutateSwap 以 rate 的概率交换两个不同位置上的作业
func mutateSwap(seq []int, rate float64, rng *rand.Rand) {
	if rng.Float64() >= rate || len(seq) < 2 {
		return
	}
	i, j := twoDistinct(len(seq), rng)
	seq[i], seq[j] = seq[j], seq[i]
}
