package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(64, 16); !ok || p != 1024 {
		t.Fatalf("MulOverflowSafe(64,16)=%d,%v want 1024,true", p, ok)
	}
	if p, ok := MulOverflowSafe(0, math.MaxInt); !ok || p != 0 {
		t.Fatalf("MulOverflowSafe(0,MaxInt)=%d,%v want 0,true", p, ok)
	}
	if _, ok := MulOverflowSafe(math.MaxInt/2+1, 2); ok {
		t.Fatalf("expected overflow")
	}
	if _, ok := MulOverflowSafe(-1, 2); ok {
		t.Fatalf("negative operands must be rejected")
	}
}

func TestCheckSpan(t *testing.T) {
	tests := []struct {
		name    string
		bufLen  int
		offset  int
		n       int
		wantEnd int
		wantErr bool
	}{
		{name: "fits exactly", bufLen: 64, offset: 16, n: 48, wantEnd: 64},
		{name: "zero length", bufLen: 64, offset: 64, n: 0, wantEnd: 64},
		{name: "past end", bufLen: 64, offset: 32, n: 48, wantErr: true},
		{name: "negative offset", bufLen: 64, offset: -16, n: 16, wantErr: true},
		{name: "negative length", bufLen: 64, offset: 0, n: -1, wantErr: true},
		{name: "overflow", bufLen: 64, offset: math.MaxInt, n: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, err := CheckSpan(tt.bufLen, tt.offset, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CheckSpan(%d,%d,%d) expected error", tt.bufLen, tt.offset, tt.n)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckSpan: %v", err)
			}
			if end != tt.wantEnd {
				t.Fatalf("end = %d, want %d", end, tt.wantEnd)
			}
		})
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
