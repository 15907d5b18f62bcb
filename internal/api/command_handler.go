package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/api/middleware"
	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/imaging"
	"github.com/taoyao-code/timebox/internal/outbound"
	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

// maxUploadBytes 单个上传文件上限
const maxUploadBytes = 8 << 20

// CommandHandler 把请求编码为帧后放入下发队列，立即返回任务ID
type CommandHandler struct {
	queue        outbound.Queue
	defaultScale imaging.Filter
	defaultDelay int
	now          func() time.Time
	logger       *zap.Logger
}

// NewCommandHandler scaling/delay 为图片与动画的默认参数
func NewCommandHandler(q outbound.Queue, scaling string, delay int, logger *zap.Logger) *CommandHandler {
	f, err := imaging.ParseFilter(scaling)
	if err != nil {
		f = imaging.DefaultFilter
	}
	return &CommandHandler{
		queue:        q,
		defaultScale: f,
		defaultDelay: delay,
		now:          time.Now,
		logger:       logger,
	}
}

// JobAccepted 入队结果
type JobAccepted struct {
	JobID    string `json:"job_id"`
	Kind     string `json:"kind"`
	Priority int    `json:"priority"`
	Frames   int    `json:"frames"`
}

func (h *CommandHandler) enqueue(c *gin.Context, req device.Request) {
	job := outbound.NewJob(req)
	if err := h.queue.Enqueue(c.Request.Context(), job); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, outbound.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("enqueue failed", zap.String("kind", req.Kind), zap.Error(err))
		respondError(c, status, fmt.Sprintf("入队失败: %v", err))
		return
	}
	h.logger.Info("job accepted",
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Int("frames", len(job.Frames)),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)))
	respond(c, http.StatusAccepted, JobAccepted{
		JobID:    job.ID,
		Kind:     job.Kind,
		Priority: job.Priority,
		Frames:   len(job.Frames),
	})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, fmt.Sprintf("无效的请求: %v", err))
}

// ViewRequest 切换视图
type ViewRequest struct {
	View string `json:"view" binding:"required"`
}

// SwitchView POST /api/v1/view
func (h *CommandHandler) SwitchView(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	v, err := timebox.ParseView(req.View)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.ViewRequest(v))
}

// ClockRequest 时钟，color 为空时只切换视图
type ClockRequest struct {
	Color string `json:"color"`
	H24   bool   `json:"h24"`
}

// ShowClock POST /api/v1/clock
func (h *CommandHandler) ShowClock(c *gin.Context) {
	var req ClockRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	color, err := optionalColor(req.Color)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.ClockRequest(color, req.H24))
}

// TempRequest 温度，color 为空时只切换视图
type TempRequest struct {
	Color      string `json:"color"`
	Fahrenheit bool   `json:"fahrenheit"`
}

// ShowTemperature POST /api/v1/temp
func (h *CommandHandler) ShowTemperature(c *gin.Context) {
	var req TempRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	color, err := optionalColor(req.Color)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.TempRequest(color, req.Fahrenheit))
}

// TempUnitRequest 温度单位
type TempUnitRequest struct {
	Fahrenheit bool `json:"fahrenheit"`
}

// SetTemperatureUnit POST /api/v1/temp/unit
func (h *CommandHandler) SetTemperatureUnit(c *gin.Context) {
	var req TempUnitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.TempUnitRequest(req.Fahrenheit))
}

// VolumeRequest 音量 0-16
type VolumeRequest struct {
	Level *int `json:"level" binding:"required"`
}

// SetVolume POST /api/v1/volume
func (h *CommandHandler) SetVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := device.VolumeRequest(*req.Level)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, r)
}

// TimeRequest 设备校时，date 为空或 "now" 表示当前时间
type TimeRequest struct {
	Date string `json:"date"`
}

// SetClock POST /api/v1/time
func (h *CommandHandler) SetClock(c *gin.Context) {
	var req TimeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Date == "" {
		req.Date = "now"
	}
	t, err := device.ParseDate(req.Date, h.now)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.SetClockRequest(t))
}

// RadioRequest FM 收音机开关
type RadioRequest struct {
	On *bool `json:"on" binding:"required"`
}

// FMRadio POST /api/v1/fmradio
func (h *CommandHandler) FMRadio(c *gin.Context) {
	var req RadioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.RadioRequest(*req.On))
}

// RawRequest 原始字节
type RawRequest struct {
	Hex   string `json:"hex" binding:"required"`
	Mask  bool   `json:"mask"`
	Frame bool   `json:"frame"`
}

// SendRaw POST /api/v1/raw
func (h *CommandHandler) SendRaw(c *gin.Context) {
	var req RawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	data, err := device.ParseHex(req.Hex)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.RawRequest(data, req.Mask, req.Frame))
}

// ImageRequest JSON 方式上传图片，data 为 base64
type ImageRequest struct {
	Data    string `json:"data" binding:"required"`
	Scaling string `json:"scaling"`
}

// ShowImage POST /api/v1/image，multipart 字段 file 或 JSON
func (h *CommandHandler) ShowImage(c *gin.Context) {
	src, scaling, err := h.readUpload(c, "file")
	if err != nil {
		badRequest(c, err)
		return
	}
	filter, err := h.filter(scaling)
	if err != nil {
		badRequest(c, err)
		return
	}
	img, err := imaging.DecodeImage(bytes.NewReader(src))
	if err != nil {
		badRequest(c, err)
		return
	}
	frame, err := imaging.Convert(img, filter)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, device.ImageRequest(frame))
}

// AnimationRequest JSON 方式上传 GIF，data 为 base64
type AnimationRequest struct {
	Data    string `json:"data" binding:"required"`
	Scaling string `json:"scaling"`
	Delay   *int   `json:"delay"`
}

// PlayAnimation POST /api/v1/animation。
// multipart 时 file 为 GIF，或以多个 frames 字段按顺序上传静态图；JSON 时 data 为 base64 GIF
func (h *CommandHandler) PlayAnimation(c *gin.Context) {
	delay := h.defaultDelay
	if v := c.PostForm("delay"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, fmt.Errorf("delay: %w", err))
			return
		}
		delay = d
	}

	var frames []timebox.PixelFrame
	if form, err := c.MultipartForm(); err == nil && len(form.File["frames"]) > 0 {
		filter, err := h.filter(c.PostForm("scaling"))
		if err != nil {
			badRequest(c, err)
			return
		}
		frames, err = convertFiles(form.File["frames"], filter)
		if err != nil {
			badRequest(c, err)
			return
		}
	} else {
		src, scaling, d, err := h.readAnimationUpload(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		if d != nil {
			delay = *d
		}
		filter, err := h.filter(scaling)
		if err != nil {
			badRequest(c, err)
			return
		}
		frames, _, err = imaging.LoadGIF(bytes.NewReader(src), filter)
		if err != nil {
			badRequest(c, err)
			return
		}
	}

	if delay < 0 || delay > 255 {
		badRequest(c, fmt.Errorf("delay must be 0-255, got %d", delay))
		return
	}
	req, err := device.AnimationRequest(frames, byte(delay))
	if err != nil {
		badRequest(c, err)
		return
	}
	h.enqueue(c, req)
}

func (h *CommandHandler) filter(name string) (imaging.Filter, error) {
	if name == "" {
		return h.defaultScale, nil
	}
	return imaging.ParseFilter(name)
}

// readUpload 读取 multipart 文件或 JSON base64 内容
func (h *CommandHandler) readUpload(c *gin.Context, field string) ([]byte, string, error) {
	if fh, err := c.FormFile(field); err == nil {
		data, err := readFileHeader(fh)
		return data, c.PostForm("scaling"), err
	}
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", err
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, "", fmt.Errorf("data: %w", err)
	}
	return data, req.Scaling, nil
}

func (h *CommandHandler) readAnimationUpload(c *gin.Context) ([]byte, string, *int, error) {
	if fh, err := c.FormFile("file"); err == nil {
		data, err := readFileHeader(fh)
		return data, c.PostForm("scaling"), nil, err
	}
	var req AnimationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, "", nil, fmt.Errorf("data: %w", err)
	}
	return data, req.Scaling, req.Delay, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, fmt.Errorf("%s: file too large", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}

func convertFiles(files []*multipart.FileHeader, filter imaging.Filter) ([]timebox.PixelFrame, error) {
	frames := make([]timebox.PixelFrame, 0, len(files))
	for _, fh := range files {
		data, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		img, err := imaging.DecodeImage(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		frame, err := imaging.Convert(img, filter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// bindOptionalJSON 允许空请求体
func bindOptionalJSON(c *gin.Context, v interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}

func optionalColor(s string) (*timebox.RGB, error) {
	if s == "" {
		return nil, nil
	}
	rgb, err := imaging.ParseRGB(s)
	if err != nil {
		return nil, err
	}
	return &rgb, nil
}
