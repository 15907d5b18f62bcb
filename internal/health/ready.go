package health

import "sync/atomic"

// Readiness 守护进程启动阶段的就绪标记
type Readiness struct {
	storeReady atomic.Bool
	queueReady atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetStoreReady(v bool) { r.storeReady.Store(v) }
func (r *Readiness) SetQueueReady(v bool) { r.queueReady.Store(v) }

// Ready 存储与队列 worker 均已启动
func (r *Readiness) Ready() bool {
	return r.storeReady.Load() && r.queueReady.Load()
}
