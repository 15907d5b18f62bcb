package timebox

import "bytes"

// Hello 设备建立连接后主动发送的问候报文
var Hello = []byte{0x00, 0x05, 'H', 'E', 'L', 'L', 'O', 0x00}

// IsHello 判断收到的数据是否为问候报文
func IsHello(b []byte) bool {
	return bytes.Equal(b, Hello)
}
