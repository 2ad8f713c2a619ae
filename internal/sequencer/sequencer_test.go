package sequencer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func smallParameters() Parameters {
	p := DefaultParameters()
	p.MaxGenerations = 60
	return p
}

func bruteForceOptimum(jobs Jobs) int64 {
	n := jobs.Len()
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}

	best := TotalWeightedTardiness(seq, jobs)
	var permute func(k int)
	permute = func(k int) {
		if k == n {
			if f := TotalWeightedTardiness(seq, jobs); f < best {
				best = f
			}
			return
		}
		for i := k; i < n; i++ {
			seq[k], seq[i] = seq[i], seq[k]
			permute(k + 1)
			seq[k], seq[i] = seq[i], seq[k]
		}
	}
	permute(0)
	return best
}

func TestNewRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		Name       string
		Jobs       Jobs
		Parameters Parameters
		Error      error
	}{
		{
			Name:       "Mismatched Length",
			Jobs:       Jobs{Durations: []int64{1, 2, 3}, DueTimes: []int64{1, 2}, Penalties: []int64{1, 2, 3}},
			Parameters: DefaultParameters(),
			Error:      ErrMismatchedLength,
		},
		{
			Name:       "Empty Input",
			Jobs:       Jobs{Durations: []int64{}, DueTimes: []int64{}, Penalties: []int64{}},
			Parameters: DefaultParameters(),
			Error:      ErrEmptyInput,
		},
		{
			Name:       "Population Too Small",
			Jobs:       Jobs{Durations: []int64{1}, DueTimes: []int64{1}, Penalties: []int64{1}},
			Parameters: Parameters{PopulationSize: 1, MaxGenerations: 1, Workers: 1},
			Error:      ErrInvalidParameters,
		},
		{
			Name:       "Crossover Rate Out Of Range",
			Jobs:       Jobs{Durations: []int64{1}, DueTimes: []int64{1}, Penalties: []int64{1}},
			Parameters: Parameters{PopulationSize: 10, MaxGenerations: 1, CrossoverRate: 1.5, Workers: 1},
			Error:      ErrInvalidParameters,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := New(c.Parameters, c.Jobs, newTestRand(1))
			assert.ErrorIs(t, err, c.Error)
		})
	}
}

func TestNewRejectsNilRand(t *testing.T) {
	jobs := Jobs{Durations: []int64{1}, DueTimes: []int64{1}, Penalties: []int64{1}}
	_, err := New(DefaultParameters(), jobs, nil)
	assert.Error(t, err)
}

func TestRunConvergesOnTwoJobs(t *testing.T) {
	jobs := Jobs{
		Durations: []int64{3, 2},
		DueTimes:  []int64{5, 1},
		Penalties: []int64{1, 10},
	}

	s, err := New(DefaultParameters(), jobs, newTestRand(2024))
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, res.Sequence)
	assert.Equal(t, int64(10), res.Fitness)
	assert.Equal(t, 500, res.Generations)
}

func TestRunReturnsPermutation(t *testing.T) {
	rng := newTestRand(99)

	for _, n := range []int{1, 2, 3, 10, 30} {
		jobs := Jobs{
			Durations: make([]int64, n),
			DueTimes:  make([]int64, n),
			Penalties: make([]int64, n),
		}
		for i := 0; i < n; i++ {
			jobs.Durations[i] = int64(rng.Intn(20))
			jobs.DueTimes[i] = int64(rng.Intn(100) - 10)
			jobs.Penalties[i] = int64(rng.Intn(10))
		}

		s, err := New(smallParameters(), jobs, rng)
		require.NoError(t, err)

		res, err := s.Run(context.Background())
		require.NoError(t, err)
		requirePermutation(t, res.Sequence, n)
		assert.Equal(t, TotalWeightedTardiness(res.Sequence, jobs), res.Fitness)
	}
}

func TestRunFindsOptimumOnSmallInstance(t *testing.T) {
	jobs := Jobs{
		Durations: []int64{4, 1, 6, 2, 3},
		DueTimes:  []int64{5, 2, 10, 3, 0},
		Penalties: []int64{2, 7, 1, 4, 3},
	}

	s, err := New(DefaultParameters(), jobs, newTestRand(17))
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bruteForceOptimum(jobs), res.Fitness)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	jobs := Jobs{
		Durations: []int64{5, 3, 8, 2, 7, 4, 6, 1},
		DueTimes:  []int64{10, 4, 20, 3, 15, 9, 12, 2},
		Penalties: []int64{1, 4, 2, 5, 3, 2, 1, 6},
	}

	sequential := smallParameters()
	parallel := smallParameters()
	parallel.Workers = 4

	s1, err := New(sequential, jobs, newTestRand(8))
	require.NoError(t, err)
	s2, err := New(parallel, jobs, newTestRand(8))
	require.NoError(t, err)

	r1, err := s1.Run(context.Background())
	require.NoError(t, err)
	r2, err := s2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, r1.Sequence, r2.Sequence)
	assert.Equal(t, r1.Fitness, r2.Fitness)
}

func TestRunHonorsCancellation(t *testing.T) {
	jobs := Jobs{Durations: []int64{1, 2}, DueTimes: []int64{1, 2}, Penalties: []int64{1, 1}}

	s, err := New(DefaultParameters(), jobs, newTestRand(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
