package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// OpenSerial 打开串口设备（例如 rfcomm bind 生成的 /dev/rfcomm0）
func OpenSerial(name string, baud int, readTimeout time.Duration) (io.ReadWriteCloser, error) {
	if name == "" {
		return nil, fmt.Errorf("serial: empty port name")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}
