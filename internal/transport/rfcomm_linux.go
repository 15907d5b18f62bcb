//go:build linux

package transport

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// DialRFCOMM 建立 RFCOMM 流式连接
// 返回的连接基于非阻塞 fd，支持读超时
func DialRFCOMM(ctx context.Context, address string, channel int) (io.ReadWriteCloser, error) {
	addr, err := ParseBDAddr(address)
	if err != nil {
		return nil, err
	}
	if channel < 1 || channel > 30 {
		return nil, fmt.Errorf("rfcomm: invalid channel %d", channel)
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("rfcomm socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: addr.reversed(), Channel: uint8(channel)}

	done := make(chan error, 1)
	go func() { done <- unix.Connect(fd, sa) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		// shutdown 使阻塞中的 connect 返回
		_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		<-done
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm connect %s: %w", addr, ctx.Err())
	}
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm connect %s: %w", addr, err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm nonblock: %w", err)
	}
	return os.NewFile(uintptr(fd), "rfcomm:"+addr.String()), nil
}
