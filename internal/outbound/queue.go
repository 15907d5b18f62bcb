package outbound

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taoyao-code/timebox/internal/device"
)

// ErrQueueFull 队列已满
var ErrQueueFull = errors.New("job queue is full")

// Job 一次排队下发的操作
type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Priority  int       `json:"priority"`
	Frames    [][]byte  `json:"frames"`
	CreatedAt time.Time `json:"created_at"`
}

// NewJob 为已编码的操作分配 ID 与优先级
func NewJob(req device.Request) Job {
	return Job{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Priority:  KindPriority(req.Kind),
		Frames:    req.Frames,
		CreatedAt: time.Now(),
	}
}

// Request 还原为设备请求
func (j Job) Request() device.Request {
	return device.Request{Kind: j.Kind, Frames: j.Frames}
}

// Bytes 所有帧的总字节数
func (j Job) Bytes() int {
	n := 0
	for _, f := range j.Frames {
		n += len(f)
	}
	return n
}

// DeadJob 下发失败的任务
type DeadJob struct {
	Job      Job       `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// Stats 队列统计
type Stats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Dead       int64 `json:"dead"`
}

// Queue 下发队列。
// 约束：
// - Dequeue 在队列为空时返回 nil, nil
// - 失败任务不重试，Fail 后只进入死信
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) (*Job, error)
	Done(ctx context.Context, job Job) error
	Fail(ctx context.Context, job Job, reason string) error
	Dead(ctx context.Context, limit int) ([]DeadJob, error)
	Stats(ctx context.Context) (Stats, error)
}

// MemoryQueue 进程内优先级队列，同优先级先进先出
type MemoryQueue struct {
	mu         sync.Mutex
	items      jobHeap
	seq        uint64
	capacity   int
	processing map[string]Job
	dead       []DeadJob
	deadMax    int
}

// NewMemoryQueue capacity<=0 表示不限制
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		capacity:   capacity,
		processing: make(map[string]Job),
		deadMax:    1000,
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.seq++
	heap.Push(&q.items, &queued{job: job, seq: q.seq})
	return nil
}

func (q *MemoryQueue) Dequeue(_ context.Context) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, nil
	}
	it := heap.Pop(&q.items).(*queued)
	q.processing[it.job.ID] = it.job
	return &it.job, nil
}

func (q *MemoryQueue) Done(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, job.ID)
	return nil
}

func (q *MemoryQueue) Fail(_ context.Context, job Job, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, job.ID)
	q.dead = append(q.dead, DeadJob{Job: job, Error: reason, FailedAt: time.Now()})
	if len(q.dead) > q.deadMax {
		q.dead = q.dead[len(q.dead)-q.deadMax:]
	}
	return nil
}

// Dead 新的在前
func (q *MemoryQueue) Dead(_ context.Context, limit int) ([]DeadJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit <= 0 || limit > len(q.dead) {
		limit = len(q.dead)
	}
	out := make([]DeadJob, 0, limit)
	for i := len(q.dead) - 1; i >= len(q.dead)-limit; i-- {
		out = append(out, q.dead[i])
	}
	return out, nil
}

func (q *MemoryQueue) Stats(_ context.Context) (Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Pending:    int64(len(q.items)),
		Processing: int64(len(q.processing)),
		Dead:       int64(len(q.dead)),
	}, nil
}

type queued struct {
	job Job
	seq uint64
}

type jobHeap []*queued

func (h jobHeap) Len() int { return len(h) }
func (h jobHeap) Less(i, j int) bool {
	if h[i].job.Priority != h[j].job.Priority {
		return h[i].job.Priority < h[j].job.Priority
	}
	return h[i].seq < h[j].seq
}
func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any) { *h = append(*h, x.(*queued)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
