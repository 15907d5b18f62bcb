package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/outbound"
	"github.com/taoyao-code/timebox/internal/storage"
	"github.com/taoyao-code/timebox/internal/transport"
)

// DeviceHandler 已知设备与下发历史查询
type DeviceHandler struct {
	store   storage.KnownDeviceStore
	history storage.CommandLog
	queue   outbound.Queue
	logger  *zap.Logger
}

// NewDeviceHandler history 为 nil 时历史接口返回空列表
func NewDeviceHandler(store storage.KnownDeviceStore, history storage.CommandLog, q outbound.Queue, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{store: store, history: history, queue: q, logger: logger}
}

// ListDevices GET /api/v1/devices
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list known devices failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list devices")
		return
	}
	if devices == nil {
		devices = []storage.KnownDevice{}
	}
	respond(c, http.StatusOK, devices)
}

// AddDeviceRequest 添加已知设备
type AddDeviceRequest struct {
	Address string `json:"address" binding:"required"`
	Name    string `json:"name"`
}

// AddDevice POST /api/v1/devices
func (h *DeviceHandler) AddDevice(c *gin.Context) {
	var req AddDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	addr, err := transport.NormalizeAddress(req.Address)
	if err != nil {
		badRequest(c, err)
		return
	}
	d := storage.KnownDevice{Address: addr, Name: req.Name}
	if err := h.store.Add(c.Request.Context(), d); err != nil {
		h.logger.Error("add known device failed", zap.String("address", addr), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to add device")
		return
	}
	respond(c, http.StatusCreated, d)
}

// RemoveDevice DELETE /api/v1/devices/:addr
func (h *DeviceHandler) RemoveDevice(c *gin.Context) {
	addr, err := transport.NormalizeAddress(c.Param("addr"))
	if err != nil {
		badRequest(c, err)
		return
	}
	err = h.store.Remove(c.Request.Context(), addr)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(c, http.StatusNotFound, fmt.Sprintf("device %s not found", addr))
	case err != nil:
		h.logger.Error("remove known device failed", zap.String("address", addr), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to remove device")
	default:
		respond(c, http.StatusOK, gin.H{"address": addr})
	}
}

// History GET /api/v1/history?limit=50
func (h *DeviceHandler) History(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if h.history == nil {
		respond(c, http.StatusOK, []storage.CommandRecord{})
		return
	}
	recs, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("read command history failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to read history")
		return
	}
	if recs == nil {
		recs = []storage.CommandRecord{}
	}
	respond(c, http.StatusOK, recs)
}

// QueueStatus GET /api/v1/queue，包含最近的死信
func (h *DeviceHandler) QueueStatus(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	st, err := h.queue.Stats(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read queue stats")
		return
	}
	dead, err := h.queue.Dead(ctx, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read dead jobs")
		return
	}
	respond(c, http.StatusOK, gin.H{"stats": st, "dead": dead})
}

func queryLimit(c *gin.Context) (int, error) {
	v := c.DefaultQuery("limit", "50")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 1000 {
		return 0, fmt.Errorf("limit must be 1-1000, got %q", v)
	}
	return n, nil
}
