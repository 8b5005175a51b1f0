package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParallelExecutor(t *testing.T) {
	executor := NewParallelExecutor()

	impl, ok := executor.(*ParallelExecutorImpl)
	require.True(t, ok)
	assert.Equal(t, 0, impl.maxConcurrency)
	assert.Equal(t, 10*time.Minute, impl.timeout)
}

func TestParallelExecutor_Execute_EmptyTasks(t *testing.T) {
	assert.NoError(t, NewParallelExecutor().Execute(context.Background(), nil))
}

func TestParallelExecutor_Execute_MultipleTasks(t *testing.T) {
	executor := NewParallelExecutor()

	var counter int32
	tasks := make([]domain.ExecutableTask, 5)
	for i := range tasks {
		tasks[i] = NewSimpleTask("pair", true, func(ctx context.Context) (interface{}, error) {
			atomic.AddInt32(&counter, 1)
			return nil, nil
		})
	}

	require.NoError(t, executor.Execute(context.Background(), tasks))
	assert.Equal(t, int32(5), counter)
}

func TestParallelExecutor_Execute_DisabledTasks(t *testing.T) {
	executed := false
	task := NewSimpleTask("disabled-task", false, func(ctx context.Context) (interface{}, error) {
		executed = true
		return nil, nil
	})

	require.NoError(t, NewParallelExecutor().Execute(context.Background(), []domain.ExecutableTask{task}))
	assert.False(t, executed, "disabled task should not be executed")
}

func TestParallelExecutor_Execute_ErrorsDoNotCancelOthers(t *testing.T) {
	var finished int32
	errA := errors.New("error a")
	errB := errors.New("error b")

	tasks := []domain.ExecutableTask{
		NewSimpleTask("fail-a", true, func(ctx context.Context) (interface{}, error) { return nil, errA }),
		NewSimpleTask("fail-b", true, func(ctx context.Context) (interface{}, error) { return nil, errB }),
		NewSimpleTask("ok", true, func(ctx context.Context) (interface{}, error) {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&finished, 1)
			return nil, nil
		}),
	}

	err := NewParallelExecutor().Execute(context.Background(), tasks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, int32(1), finished)
}

func TestParallelExecutor_Execute_WithConcurrencyLimit(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(2)

	var maxConcurrent, current int32
	tasks := make([]domain.ExecutableTask, 6)
	for i := range tasks {
		tasks[i] = NewSimpleTask("pair", true, func(ctx context.Context) (interface{}, error) {
			now := atomic.AddInt32(&current, 1)
			for {
				seen := atomic.LoadInt32(&maxConcurrent)
				if now <= seen || atomic.CompareAndSwapInt32(&maxConcurrent, seen, now) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil, nil
		})
	}

	require.NoError(t, executor.Execute(context.Background(), tasks))
	assert.LessOrEqual(t, maxConcurrent, int32(2))
}

func TestParallelExecutor_Execute_Timeout(t *testing.T) {
	executor := NewParallelExecutor()
	executor.SetTimeout(20 * time.Millisecond)

	task := NewSimpleTask("slow-pair", true, func(ctx context.Context) (interface{}, error) {
		select {
		case <-time.After(time.Second):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	err := executor.Execute(context.Background(), []domain.ExecutableTask{task})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "slow-pair")
}

func TestParallelExecutor_Execute_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executed := false
	task := NewSimpleTask("late", true, func(ctx context.Context) (interface{}, error) {
		executed = true
		return nil, nil
	})

	err := NewParallelExecutor().Execute(ctx, []domain.ExecutableTask{task})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	assert.False(t, executed)
}

func TestSimpleTask(t *testing.T) {
	task := NewSimpleTask("my-task", true, func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})
	assert.Equal(t, "my-task", task.Name())
	assert.True(t, task.IsEnabled())

	result, err := task.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	_, err = NewSimpleTask("nil-func", true, nil).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no execute function")
}
