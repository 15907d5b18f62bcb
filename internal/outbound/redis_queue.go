package outbound

import (
	"context"
	"errors"

	redisstorage "github.com/taoyao-code/timebox/internal/storage/redis"
)

// RedisQueue 基于 Redis 的共享队列，多个进程可同时入队
type RedisQueue struct {
	q *redisstorage.JobQueue
}

var _ Queue = (*RedisQueue)(nil)

// NewRedisQueue 包装 Redis 任务队列
func NewRedisQueue(q *redisstorage.JobQueue) *RedisQueue {
	return &RedisQueue{q: q}
}

func (r *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	err := r.q.Enqueue(ctx, toMessage(job))
	if errors.Is(err, redisstorage.ErrQueueFull) {
		return ErrQueueFull
	}
	return err
}

func (r *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	msg, err := r.q.Dequeue(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err := r.q.MarkProcessing(ctx, msg); err != nil {
		return nil, err
	}
	job := fromMessage(*msg)
	return &job, nil
}

func (r *RedisQueue) Done(ctx context.Context, job Job) error {
	return r.q.MarkSuccess(ctx, toMessage(job))
}

func (r *RedisQueue) Fail(ctx context.Context, job Job, reason string) error {
	return r.q.MarkFailed(ctx, toMessage(job), reason)
}

func (r *RedisQueue) Dead(ctx context.Context, limit int) ([]DeadJob, error) {
	dead, err := r.q.Dead(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]DeadJob, 0, len(dead))
	for _, d := range dead {
		out = append(out, DeadJob{Job: fromMessage(d.Message), Error: d.Error, FailedAt: d.FailedAt})
	}
	return out, nil
}

func (r *RedisQueue) Stats(ctx context.Context) (Stats, error) {
	st, err := r.q.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Pending: st.Pending, Processing: st.Processing, Dead: st.Dead}, nil
}

func toMessage(j Job) *redisstorage.Message {
	return &redisstorage.Message{
		ID:        j.ID,
		Kind:      j.Kind,
		Priority:  j.Priority,
		Frames:    j.Frames,
		CreatedAt: j.CreatedAt,
	}
}

func fromMessage(m redisstorage.Message) Job {
	return Job{
		ID:        m.ID,
		Kind:      m.Kind,
		Priority:  m.Priority,
		Frames:    m.Frames,
		CreatedAt: m.CreatedAt,
	}
}
