package timebox

import "errors"

var (
	// ErrChecksumMismatch 校验和不一致
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Sum 对若干字节段做算术累加（不截断）
func Sum(parts ...[]byte) int {
	total := 0
	for _, p := range parts {
		for _, b := range p {
			total += int(b)
		}
	}
	return total
}

// Checksum 将累加和拆分为小端两字节，超过16位的部分直接丢弃
func Checksum(sum int) (lo, hi byte) {
	return byte(sum & 0xFF), byte((sum >> 8) & 0xFF)
}
