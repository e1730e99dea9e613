package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{name: "morning", input: "06:30", want: ScheduleTime{Hour: 6, Minute: 30}},
		{name: "midnight", input: "00:00", want: ScheduleTime{Hour: 0, Minute: 0}},
		{name: "end of day", input: "23:59", want: ScheduleTime{Hour: 23, Minute: 59}},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRunMatchesScheduleOncePerMinute(t *testing.T) {
	s, err := New(Config{
		ScheduleTimes: []string{"09:00", "21:00"},
		WorkerCount:   1,
		QueueSize:     1,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at := time.Date(2024, 3, 15, 9, 0, 30, 0, time.UTC)

	if !s.shouldRun(at) {
		t.Fatal("expected first check at 09:00 to trigger")
	}
	if s.shouldRun(at.Add(10 * time.Second)) {
		t.Error("expected second check within the same minute to be suppressed")
	}
	if s.shouldRun(time.Date(2024, 3, 15, 9, 1, 0, 0, time.UTC)) {
		t.Error("expected 09:01 not to trigger")
	}
	if !s.shouldRun(time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)) {
		t.Error("expected 21:00 to trigger")
	}
	if !s.shouldRun(time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)) {
		t.Error("expected 09:00 the next day to trigger again")
	}
}

func TestNewRequiresScheduleTime(t *testing.T) {
	if _, err := New(Config{WorkerCount: 1, QueueSize: 1}, zerolog.Nop()); err == nil {
		t.Fatal("expected error when no schedule times are configured")
	}
}

type countingJob struct {
	runs *int32
	done chan struct{}
	err  error
}

func (j *countingJob) Execute(ctx context.Context) error {
	atomic.AddInt32(j.runs, 1)
	j.done <- struct{}{}
	return j.err
}

func (j *countingJob) Key() string { return "counting" }

func (j *countingJob) Description() string { return "counting job" }

func TestWorkerPoolProcessesSubmittedJobs(t *testing.T) {
	pool := NewWorkerPool(2, 0, 4, zerolog.Nop())
	pool.Start()

	var runs int32
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		if err := pool.Submit(&countingJob{runs: &runs, done: done}); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs to run")
		}
	}

	pool.ShutdownWithTimeout(time.Second)

	if got := atomic.LoadInt32(&runs); got != 3 {
		t.Errorf("expected 3 runs, got %d", got)
	}
}

func TestWorkerPoolRejectsWhenQueueFull(t *testing.T) {
	// Pool is never started, so the single queue slot fills immediately.
	pool := NewWorkerPool(1, 0, 1, zerolog.Nop())

	var runs int32
	done := make(chan struct{}, 2)
	if err := pool.Submit(&countingJob{runs: &runs, done: done}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if err := pool.Submit(&countingJob{runs: &runs, done: done}); err == nil {
		t.Fatal("expected error when queue is full")
	}
}

func TestRateRefreshJobsSkipsMalformedPairs(t *testing.T) {
	jobs := RateRefreshJobs(nil, []string{"usd/brl", "EUR/BRL", "nope", "/BRL", "GBP/"})

	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Key() != "USD/BRL" {
		t.Errorf("expected USD/BRL, got %s", jobs[0].Key())
	}
	if jobs[1].Key() != "EUR/BRL" {
		t.Errorf("expected EUR/BRL, got %s", jobs[1].Key())
	}
}
