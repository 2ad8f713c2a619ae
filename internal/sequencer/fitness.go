package sequencer

// TotalWeightedTardiness 从时刻 0 开始依次无抢占地执行 seq 中的作业，
// 返回 Σ penalty × max(0, 完成时刻 − 截止时间)。
// 调用方需保证 seq 是与 jobs 等长的合法排列。
func TotalWeightedTardiness(seq []int, jobs Jobs) int64 {
	var clock, total int64
	for _, j := range seq {
		clock += jobs.Durations[j]
		if late := clock - jobs.DueTimes[j]; late > 0 {
			total += jobs.Penalties[j] * late
		}
	}
	return total
}
