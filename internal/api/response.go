package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/timebox/internal/api/middleware"
)

// StandardResponse 统一响应格式
type StandardResponse struct {
	Code      int         `json:"code"`           // 0=成功, >0=HTTP 状态码
	Message   string      `json:"message"`        // 消息
	Data      interface{} `json:"data,omitempty"` // 业务数据
	RequestID string      `json:"request_id"`     // 请求追踪ID
	Timestamp int64       `json:"timestamp"`      // 时间戳
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, StandardResponse{
		Code:      0,
		Message:   "success",
		Data:      data,
		RequestID: c.GetString(middleware.RequestIDKey),
		Timestamp: time.Now().Unix(),
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, StandardResponse{
		Code:      status,
		Message:   message,
		RequestID: c.GetString(middleware.RequestIDKey),
		Timestamp: time.Now().Unix(),
	})
}
