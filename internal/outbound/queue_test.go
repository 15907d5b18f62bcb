package outbound

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

func TestNewJob(t *testing.T) {
	req := device.ViewRequest(timebox.ViewClock)
	job := NewJob(req)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, device.KindView, job.Kind)
	assert.Equal(t, PriorityHigh, job.Priority)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Equal(t, req, job.Request())
	assert.Equal(t, 8, job.Bytes())

	assert.NotEqual(t, job.ID, NewJob(req).ID)
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("优先级优先，同优先级先进先出", func(t *testing.T) {
		q := NewMemoryQueue(0)
		require.NoError(t, q.Enqueue(ctx, Job{ID: "a", Priority: PriorityLow}))
		require.NoError(t, q.Enqueue(ctx, Job{ID: "b", Priority: PriorityNormal}))
		require.NoError(t, q.Enqueue(ctx, Job{ID: "c", Priority: PriorityHigh}))
		require.NoError(t, q.Enqueue(ctx, Job{ID: "d", Priority: PriorityNormal}))
		require.NoError(t, q.Enqueue(ctx, Job{ID: "e", Priority: PriorityHigh}))

		var order []string
		for {
			j, err := q.Dequeue(ctx)
			require.NoError(t, err)
			if j == nil {
				break
			}
			order = append(order, j.ID)
		}
		assert.Equal(t, []string{"c", "e", "b", "d", "a"}, order)

		st, _ := q.Stats(ctx)
		assert.Equal(t, int64(0), st.Pending)
		assert.Equal(t, int64(5), st.Processing)
	})

	t.Run("容量限制", func(t *testing.T) {
		q := NewMemoryQueue(1)
		require.NoError(t, q.Enqueue(ctx, Job{ID: "a"}))
		assert.ErrorIs(t, q.Enqueue(ctx, Job{ID: "b"}), ErrQueueFull)
	})

	t.Run("完成与失败", func(t *testing.T) {
		q := NewMemoryQueue(0)
		require.NoError(t, q.Enqueue(ctx, Job{ID: "ok"}))
		require.NoError(t, q.Enqueue(ctx, Job{ID: "bad1"}))
		require.NoError(t, q.Enqueue(ctx, Job{ID: "bad2"}))

		j, _ := q.Dequeue(ctx)
		require.NoError(t, q.Done(ctx, *j))
		j, _ = q.Dequeue(ctx)
		require.NoError(t, q.Fail(ctx, *j, "first"))
		j, _ = q.Dequeue(ctx)
		require.NoError(t, q.Fail(ctx, *j, "second"))

		st, _ := q.Stats(ctx)
		assert.Equal(t, Stats{Pending: 0, Processing: 0, Dead: 2}, st)

		dead, err := q.Dead(ctx, 1)
		require.NoError(t, err)
		require.Len(t, dead, 1)
		assert.Equal(t, "bad2", dead[0].Job.ID)
		assert.Equal(t, "second", dead[0].Error)

		dead, _ = q.Dead(ctx, 0)
		assert.Len(t, dead, 2)
	})
}
