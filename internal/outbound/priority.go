package outbound

import "github.com/taoyao-code/timebox/internal/device"

// 下发优先级，数值越小越先下发（Redis ZPOPMIN 取最小 score）
const (
	// PriorityHigh 视图切换，用户立刻能看到
	PriorityHigh = 1
	// PriorityNormal 设置类命令与静态图片
	PriorityNormal = 2
	// PriorityLow 动画，帧数多占用链路时间长
	PriorityLow = 3
)

// KindPriority 根据命令种类返回优先级
func KindPriority(kind string) int {
	switch kind {
	case device.KindView, device.KindClock, device.KindTemp:
		return PriorityHigh
	case device.KindAnimation:
		return PriorityLow
	default:
		return PriorityNormal
	}
}
