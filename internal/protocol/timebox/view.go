package timebox

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownView 未知的视图名称
var ErrUnknownView = errors.New("unknown view")

// ViewType 设备显示模式，对应固定的操作码
type ViewType byte

const (
	ViewClock      ViewType = 0x00
	ViewTemp       ViewType = 0x01
	ViewOff        ViewType = 0x02
	ViewAnim       ViewType = 0x03
	ViewGraph      ViewType = 0x04
	ViewImage      ViewType = 0x05
	ViewStopwatch  ViewType = 0x06
	ViewScoreboard ViewType = 0x07
)

var viewNames = map[string]ViewType{
	"clock":      ViewClock,
	"temp":       ViewTemp,
	"off":        ViewOff,
	"anim":       ViewAnim,
	"graph":      ViewGraph,
	"image":      ViewImage,
	"stopwatch":  ViewStopwatch,
	"scoreboard": ViewScoreboard,
}

// ParseView 视图名称 → ViewType，名称不区分大小写
func ParseView(name string) (ViewType, error) {
	v, ok := viewNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q (one of %s)", ErrUnknownView, name, strings.Join(ViewNames(), ", "))
	}
	return v, nil
}

// ViewNames 按操作码排序的视图名称列表
func ViewNames() []string {
	names := make([]string, 0, len(viewNames))
	for n := range viewNames {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return viewNames[names[i]] < viewNames[names[j]] })
	return names
}

func (v ViewType) String() string {
	for n, t := range viewNames {
		if t == v {
			return n
		}
	}
	return fmt.Sprintf("view(0x%02x)", byte(v))
}
