package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobQueueKey      = "timebox:jobs"       // 待下发（Sorted Set，优先级+序号）
	jobSeqKey        = "timebox:jobs:seq"   // 入队序号，保证同优先级先进先出
	jobProcessingKey = "timebox:processing" // 下发中（Hash）
	jobDeadKey       = "timebox:dead"       // 失败任务（List）

	deadListMax = 1000
	// 序号占 score 的低 12 位十进制
	prioritySpan = 1e12
)

// ErrQueueFull 队列已满
var ErrQueueFull = errors.New("job queue is full")

// Message 队列中的一次下发任务
type Message struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Priority  int       `json:"priority"`
	Frames    [][]byte  `json:"frames"`
	CreatedAt time.Time `json:"created_at"`
}

// DeadMessage 死信记录
type DeadMessage struct {
	Message  Message   `json:"message"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// JobQueue Redis 下发队列：ZPOPMIN 取优先级最高（数值最小）的任务，失败不重试直接进入死信
type JobQueue struct {
	client   *Client
	capacity int64
}

// NewJobQueue 创建队列，capacity<=0 表示不限制
func NewJobQueue(client *Client, capacity int) *JobQueue {
	return &JobQueue{client: client, capacity: int64(capacity)}
}

// Enqueue 入队
func (q *JobQueue) Enqueue(ctx context.Context, msg *Message) error {
	if q.capacity > 0 {
		n, err := q.client.ZCard(ctx, jobQueueKey).Result()
		if err != nil {
			return err
		}
		if n >= q.capacity {
			return ErrQueueFull
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	seq, err := q.client.Incr(ctx, jobSeqKey).Result()
	if err != nil {
		return err
	}
	score := float64(msg.Priority)*prioritySpan + float64(seq%int64(prioritySpan))

	return q.client.ZAdd(ctx, jobQueueKey, redis.Z{
		Score:  score,
		Member: msg.ID + ":" + string(data),
	}).Err()
}

// Dequeue 出队，队列为空时返回 nil, nil
func (q *JobQueue) Dequeue(ctx context.Context) (*Message, error) {
	result, err := q.client.ZPopMin(ctx, jobQueueKey, 1).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	member, ok := result[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected member type %T", result[0].Member)
	}
	msg, err := parseMessage(member)
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return msg, nil
}

// MarkProcessing 标记为下发中
func (q *JobQueue) MarkProcessing(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.client.HSet(ctx, jobProcessingKey, msg.ID, data).Err()
}

// MarkSuccess 下发成功
func (q *JobQueue) MarkSuccess(ctx context.Context, msg *Message) error {
	return q.client.HDel(ctx, jobProcessingKey, msg.ID).Err()
}

// MarkFailed 下发失败，移入死信队列
func (q *JobQueue) MarkFailed(ctx context.Context, msg *Message, errMsg string) error {
	data, err := json.Marshal(DeadMessage{Message: *msg, Error: errMsg, FailedAt: time.Now()})
	if err != nil {
		return err
	}
	pipe := q.client.TxPipeline()
	pipe.HDel(ctx, jobProcessingKey, msg.ID)
	pipe.LPush(ctx, jobDeadKey, data)
	pipe.LTrim(ctx, jobDeadKey, 0, deadListMax-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Dead 最近 limit 条死信
func (q *JobQueue) Dead(ctx context.Context, limit int) ([]DeadMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := q.client.LRange(ctx, jobDeadKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadMessage, 0, len(raw))
	for _, r := range raw {
		var d DeadMessage
		if err := json.Unmarshal([]byte(r), &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// QueueStats 队列统计
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Dead       int64 `json:"dead"`
}

// Stats 获取队列统计
func (q *JobQueue) Stats(ctx context.Context) (QueueStats, error) {
	pipe := q.client.Pipeline()
	pending := pipe.ZCard(ctx, jobQueueKey)
	processing := pipe.HLen(ctx, jobProcessingKey)
	dead := pipe.LLen(ctx, jobDeadKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return QueueStats{}, err
	}
	return QueueStats{
		Pending:    pending.Val(),
		Processing: processing.Val(),
		Dead:       dead.Val(),
	}, nil
}

// CheckQueueKeys 队列键不存在或类型正确时返回 nil
func CheckQueueKeys(ctx context.Context, client *Client) error {
	want := map[string]string{
		jobQueueKey:      "zset",
		jobProcessingKey: "hash",
		jobDeadKey:       "list",
	}
	for key, typ := range want {
		got, err := client.Type(ctx, key).Result()
		if err != nil {
			return err
		}
		if got != "none" && got != typ {
			return fmt.Errorf("key %s has type %s, want %s", key, got, typ)
		}
	}
	return nil
}

// parseMessage 解析 "ID:JSON" 格式的成员
func parseMessage(member string) (*Message, error) {
	_, data, ok := strings.Cut(member, ":")
	if !ok {
		return nil, fmt.Errorf("invalid message format")
	}
	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
