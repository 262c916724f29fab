package format

import "testing"

func TestAlign16(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 16},
		{8, 16},
		{16, 16},
		{17, 32},
		{1000, 1008},
		{4096, 4096},
	}
	for _, tt := range tests {
		if got := Align16(tt.in); got != tt.want {
			t.Errorf("Align16(%d) = %d, want %d", tt.in, got, tt.want)
		}
		if !IsAligned(Align16(tt.in)) {
			t.Errorf("IsAligned(Align16(%d)) = false", tt.in)
		}
	}
	if IsAligned(24) {
		t.Errorf("IsAligned(24) = true")
	}
}
