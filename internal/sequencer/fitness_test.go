package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalWeightedTardiness(t *testing.T) {
	jobs := Jobs{
		Durations: []int64{3, 2},
		DueTimes:  []int64{5, 1},
		Penalties: []int64{1, 10},
	}

	cases := []struct {
		Name     string
		Sequence []int
		Expected int64
	}{
		{Name: "long job first", Sequence: []int{0, 1}, Expected: 40},
		{Name: "urgent job first", Sequence: []int{1, 0}, Expected: 10},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expected, TotalWeightedTardiness(c.Sequence, jobs))
		})
	}
}

func TestTotalWeightedTardinessSingleJob(t *testing.T) {
	cases := []struct {
		Name     string
		Jobs     Jobs
		Expected int64
	}{
		{Name: "late", Jobs: Jobs{Durations: []int64{7}, DueTimes: []int64{4}, Penalties: []int64{3}}, Expected: 9},
		{Name: "on time", Jobs: Jobs{Durations: []int64{4}, DueTimes: []int64{4}, Penalties: []int64{3}}, Expected: 0},
		{Name: "early", Jobs: Jobs{Durations: []int64{1}, DueTimes: []int64{10}, Penalties: []int64{3}}, Expected: 0},
		{Name: "negative due", Jobs: Jobs{Durations: []int64{2}, DueTimes: []int64{-3}, Penalties: []int64{2}}, Expected: 10},
		{Name: "zero weight", Jobs: Jobs{Durations: []int64{9}, DueTimes: []int64{0}, Penalties: []int64{0}}, Expected: 0},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expected, TotalWeightedTardiness([]int{0}, c.Jobs))
		})
	}
}

func TestTotalWeightedTardinessIsDeterministic(t *testing.T) {
	jobs := Jobs{
		Durations: []int64{4, 1, 6, 2, 3},
		DueTimes:  []int64{5, 2, 10, 3, 0},
		Penalties: []int64{2, 7, 1, 4, 3},
	}
	seq := []int{3, 0, 4, 2, 1}

	first := TotalWeightedTardiness(seq, jobs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TotalWeightedTardiness(seq, jobs))
	}
	assert.Equal(t, []int{3, 0, 4, 2, 1}, seq)
}
