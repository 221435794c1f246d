package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }
func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 0 22 * * *", &countingJob{name: "b"}))
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "a"}))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "@every 1h", jobs[0].Schedule)
	assert.Equal(t, "b", jobs[1].Name)
}

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	// five fields: the seconds field is required
	err := s.AddJob("0 22 * * *", &countingJob{name: "x"})
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_StartPopulatesNextRun(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "a"}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return !s.Jobs()[0].Next.IsZero()
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	boom := errors.New("boom")
	job := &countingJob{name: "x", err: boom}

	assert.ErrorIs(t, s.RunNow(job), boom)
	assert.Equal(t, 1, job.runs)

	// failures are logged, not propagated
	s.run(job)
	assert.Equal(t, 2, job.runs)
}
