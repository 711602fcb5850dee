package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{"zero", 0, "Rp 0"},
		{"under a thousand", 950, "Rp 950"},
		{"thousands", 15000, "Rp 15.000"},
		{"millions", 1500000, "Rp 1.500.000"},
		{"negative", -25000, "Rp -25.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupiah(tt.amount))
		})
	}
}
