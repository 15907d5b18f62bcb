package transport

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAddress 蓝牙地址格式错误
var ErrInvalidAddress = errors.New("invalid bluetooth address")

// BDAddr 蓝牙设备地址，按书写顺序存放（最高字节在前）
type BDAddr [6]byte

// ParseBDAddr 解析 "AA:BB:CC:DD:EE:FF"（也接受 "-" 分隔）
func ParseBDAddr(s string) (BDAddr, error) {
	var a BDAddr
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool { return r == ':' || r == '-' })
	if len(parts) != 6 {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	for i, p := range parts {
		if len(p) != 2 {
			return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		b, err := hex.DecodeString(p)
		if err != nil {
			return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		a[i] = b[0]
	}
	return a, nil
}

// String 大写冒号分隔形式
func (a BDAddr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// reversed 内核 sockaddr 使用的字节序（最低字节在前）
func (a BDAddr) reversed() [6]byte {
	var r [6]byte
	for i := range a {
		r[i] = a[len(a)-1-i]
	}
	return r
}

// NormalizeAddress 校验并统一为大写冒号分隔形式
func NormalizeAddress(s string) (string, error) {
	a, err := ParseBDAddr(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}
