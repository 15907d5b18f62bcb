package timebox

// 帧控制字节
const (
	Start  byte = 0x01 // 帧头
	End    byte = 0x02 // 帧尾
	Escape byte = 0x03 // 转义前缀，后跟 原值+0x03

	escapeOffset byte = 0x03
)

// isReserved 判断是否为需要转义的控制字节
func isReserved(b byte) bool {
	return b == Start || b == End || b == Escape
}

// Mask 对控制字节做转义：0x01→03 04，0x02→03 05，0x03→03 06，其余原样输出
func Mask(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8)
	for _, b := range data {
		if isReserved(b) {
			out = append(out, Escape, b+escapeOffset)
			continue
		}
		out = append(out, b)
	}
	return out
}

// Unmask Mask 的逆操作，单次线性扫描
// 末尾孤立的转义字节没有后继字节可还原，直接丢弃
func Unmask(data []byte) []byte {
	out := make([]byte, 0, len(data))
	escaped := false
	for _, b := range data {
		if escaped {
			out = append(out, b-escapeOffset)
			escaped = false
			continue
		}
		if b == Escape {
			escaped = true
			continue
		}
		out = append(out, b)
	}
	return out
}
