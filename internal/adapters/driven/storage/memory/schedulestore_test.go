package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

func TestScheduleStore_SaveAndGet(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	task := &domain.ScheduledTask{
		ID:       domain.TaskIDClarificationSweep,
		Name:     "Clarification Sweep",
		Interval: 5 * time.Minute,
		Enabled:  true,
	}
	require.NoError(t, store.SaveTask(ctx, task))

	saved, err := store.GetTask(ctx, domain.TaskIDClarificationSweep)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Clarification Sweep", saved.Name)
	assert.True(t, saved.Enabled)
}

func TestScheduleStore_GetTask_Missing(t *testing.T) {
	store := NewScheduleStore()

	task, err := store.GetTask(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestScheduleStore_ListTasks_OrderedByID(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	_ = store.SaveTask(ctx, &domain.ScheduledTask{ID: "task-b"})
	_ = store.SaveTask(ctx, &domain.ScheduledTask{ID: "task-a"})
	_ = store.SaveTask(ctx, &domain.ScheduledTask{ID: "task-c"})

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "task-a", tasks[0].ID)
	assert.Equal(t, "task-b", tasks[1].ID)
	assert.Equal(t, "task-c", tasks[2].ID)
}

func TestScheduleStore_DeleteTask_RemovesHistory(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	_ = store.SaveTask(ctx, &domain.ScheduledTask{ID: "task-1"})
	_ = store.RecordResult(ctx, &domain.TaskResult{TaskID: "task-1", Success: true})

	require.NoError(t, store.DeleteTask(ctx, "task-1"))

	task, err := store.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Nil(t, task)

	history, err := store.GetTaskHistory(ctx, "task-1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScheduleStore_GetTaskHistory_NewestFirst(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		result := &domain.TaskResult{
			TaskID:         "task-1",
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			Success:        true,
			ItemsProcessed: i,
		}
		require.NoError(t, store.RecordResult(ctx, result))
	}

	history, err := store.GetTaskHistory(ctx, "task-1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.Equal(t, 3, history[1].ItemsProcessed)
	assert.Equal(t, 2, history[2].ItemsProcessed)
}

func TestScheduleStore_PruneHistory(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 10; i++ {
		_ = store.RecordResult(ctx, &domain.TaskResult{
			TaskID:         "task-1",
			StartedAt:      base.Add(time.Duration(i) * time.Second),
			ItemsProcessed: i,
		})
	}

	require.NoError(t, store.PruneHistory(ctx, 4))

	history, err := store.GetTaskHistory(ctx, "task-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, 9, history[0].ItemsProcessed)
	assert.Equal(t, 6, history[3].ItemsProcessed)
}

func TestScheduleStore_PruneHistory_NonPositiveKeep(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	_ = store.RecordResult(ctx, &domain.TaskResult{TaskID: "task-1"})

	require.NoError(t, store.PruneHistory(ctx, 0))

	history, err := store.GetTaskHistory(ctx, "task-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestScheduleStore_Concurrency(t *testing.T) {
	store := NewScheduleStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.SaveTask(ctx, &domain.ScheduledTask{ID: "task-1", LastRun: time.Now()})
			_ = store.RecordResult(ctx, &domain.TaskResult{TaskID: "task-1", StartedAt: time.Now()})
			_, _ = store.GetTaskHistory(ctx, "task-1", 10)
		}(i)
	}
	wg.Wait()

	history, err := store.GetTaskHistory(ctx, "task-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 50)
}
