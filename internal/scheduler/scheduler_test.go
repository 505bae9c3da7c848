package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/scheduler"
)

func noop(context.Context) error { return nil }

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name           string
		setupScheduler func() *scheduler.Scheduler
		expectedError  error
	}{
		{
			name: "success",
			setupScheduler: func() *scheduler.Scheduler {
				return scheduler.NewScheduler("prune", zap.NewNop(), 100*time.Millisecond, noop)
			},
			expectedError: nil,
		},
		{
			name: "already running",
			setupScheduler: func() *scheduler.Scheduler {
				s := scheduler.NewScheduler("prune", zap.NewNop(), 100*time.Millisecond, noop)
				require.NoError(t, s.Start(context.Background()))
				return s
			},
			expectedError: scheduler.ErrSchedulerAlreadyRunning,
		},
		{
			name: "invalid interval",
			setupScheduler: func() *scheduler.Scheduler {
				return scheduler.NewScheduler("prune", zap.NewNop(), 0, noop)
			},
			expectedError: scheduler.ErrInvalidInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setupScheduler()
			defer func() {
				if s.IsRunning() {
					_ = s.Stop()
				}
			}()

			err := s.Start(context.Background())
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestScheduler_Stop(t *testing.T) {
	s := scheduler.NewScheduler("prune", zap.NewNop(), 100*time.Millisecond, noop)
	assert.Equal(t, scheduler.ErrSchedulerNotRunning, s.Stop())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start(context.Background()), "a stopped scheduler can be restarted")
	assert.NoError(t, s.Stop())
}

func TestScheduler_TaskExecution(t *testing.T) {
	tests := []struct {
		name         string
		taskErr      error
		interval     time.Duration
		testDuration time.Duration
		minCalls     int32
		maxCalls     int32
	}{
		{
			name:         "task executes multiple times",
			interval:     50 * time.Millisecond,
			testDuration: 275 * time.Millisecond,
			minCalls:     4,
			maxCalls:     6,
		},
		{
			name:         "task errors do not stop the loop",
			taskErr:      errors.New("task error"),
			interval:     50 * time.Millisecond,
			testDuration: 175 * time.Millisecond,
			minCalls:     2,
			maxCalls:     4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			s := scheduler.NewScheduler("prune", zap.NewNop(), tt.interval, func(ctx context.Context) error {
				atomic.AddInt32(&calls, 1)
				return tt.taskErr
			})

			require.NoError(t, s.Start(context.Background()))
			time.Sleep(tt.testDuration)
			require.NoError(t, s.Stop())

			got := atomic.LoadInt32(&calls)
			assert.GreaterOrEqual(t, got, tt.minCalls)
			assert.LessOrEqual(t, got, tt.maxCalls)

			lastRun, lastErr := s.LastRun()
			assert.False(t, lastRun.IsZero())
			assert.Equal(t, tt.taskErr, lastErr)
		})
	}
}

func TestScheduler_ContextCancellation(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	s := scheduler.NewScheduler("prune", zap.NewNop(), 50*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, s.Start(ctx))
	time.Sleep(120 * time.Millisecond)
	before := atomic.LoadInt32(&calls)
	assert.GreaterOrEqual(t, before, int32(2))

	cancel()
	time.Sleep(100 * time.Millisecond)
	assert.False(t, s.IsRunning())
	assert.LessOrEqual(t, atomic.LoadInt32(&calls)-before, int32(1))
}

func TestScheduler_ConcurrentStart(t *testing.T) {
	s := scheduler.NewScheduler("prune", zap.NewNop(), 50*time.Millisecond, noop)

	done := make(chan struct{})
	errs := make(chan error, 5)

	for i := 0; i < 5; i++ {
		go func() {
			if err := s.Start(context.Background()); err != nil && err != scheduler.ErrSchedulerAlreadyRunning {
				errs <- err
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	assert.True(t, s.IsRunning())
	assert.Len(t, errs, 0)
	assert.NoError(t, s.Stop())
}
