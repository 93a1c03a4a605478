package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFIPS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1001", "1001"},
		{"01001", "1001"},
		{" 01001 ", "1001"},
		{"0500000US01001", "1001"},
		{"0500000US48201", "48201"},
		{"1001.0", "1001"},
		{"48201", "48201"},
		{"", ""},
		{"00000", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFIPS(tt.in))
		})
	}
}

func TestPadFIPS(t *testing.T) {
	assert.Equal(t, "01001", PadFIPS("1001"))
	assert.Equal(t, "48201", PadFIPS("48201"))
	assert.Equal(t, "", PadFIPS(""))
}
