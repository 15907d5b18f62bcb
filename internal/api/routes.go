package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/api/middleware"
	"github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/outbound"
	"github.com/taoyao-code/timebox/internal/storage"
)

// Deps 路由依赖
type Deps struct {
	Queue   outbound.Queue
	Devices storage.KnownDeviceStore
	History storage.CommandLog
	Render  config.RenderConfig
}

// RegisterRoutes 注册 /api/v1 路由
func RegisterRoutes(r *gin.Engine, deps Deps, authCfg config.AuthConfig, logger *zap.Logger) {
	if r == nil || deps.Queue == nil || deps.Devices == nil {
		return
	}

	cmd := NewCommandHandler(deps.Queue, deps.Render.Scaling, deps.Render.Delay, logger)
	dev := NewDeviceHandler(deps.Devices, deps.History, deps.Queue, logger)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestTracing(), middleware.CORS())
	// 预检请求由 CORS 中间件直接应答
	api.OPTIONS("/*path", func(*gin.Context) {})
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 下发命令（异步入队，返回 202）
	api.POST("/view", cmd.SwitchView)
	api.POST("/clock", cmd.ShowClock)
	api.POST("/temp", cmd.ShowTemperature)
	api.POST("/temp/unit", cmd.SetTemperatureUnit)
	api.POST("/volume", cmd.SetVolume)
	api.POST("/time", cmd.SetClock)
	api.POST("/fmradio", cmd.FMRadio)
	api.POST("/raw", cmd.SendRaw)
	api.POST("/image", cmd.ShowImage)
	api.POST("/animation", cmd.PlayAnimation)

	// 已知设备
	api.GET("/devices", dev.ListDevices)
	api.POST("/devices", dev.AddDevice)
	api.DELETE("/devices/:addr", dev.RemoveDevice)

	// 历史与队列
	api.GET("/history", dev.History)
	api.GET("/queue", dev.QueueStatus)

	logger.Info("api routes registered", zap.Int("endpoints", 15))
}
