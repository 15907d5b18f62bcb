//go:build !linux

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DialRFCOMM 仅 Linux 支持原生 RFCOMM，其他平台请使用串口（已绑定的 rfcomm tty）
func DialRFCOMM(_ context.Context, address string, _ int) (io.ReadWriteCloser, error) {
	if _, err := ParseBDAddr(address); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("rfcomm: %w", errors.ErrUnsupported)
}
