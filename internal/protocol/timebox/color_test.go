package timebox

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorComponent(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected byte
	}{
		{"零", 0.0, 0x00},
		{"一", 1.0, 0xFF},
		{"略小于一", 255.0 / 256.0, 0xFF},
		{"一半", 0.5, 0x80},
		{"最小非零步长", 1.0 / 256.0, 0x01},
		{"负数截断", -0.5, 0x00},
		{"超过一截断", 2.0, 0xFF},
		{"非数", math.NaN(), 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColorComponent(tt.in))
		})
	}
}

func TestColorFromFloat(t *testing.T) {
	assert.Equal(t, RGB{R: 0xFF, G: 0x80, B: 0x00}, ColorFromFloat(1, 0.5, 0))
	assert.Equal(t, []byte{0xFF, 0x80, 0x00, 0xFF}, ColorFromFloat(1, 0.5, 0).payload())
}
