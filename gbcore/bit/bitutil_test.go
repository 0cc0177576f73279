package bit

import "testing"

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		want      uint16
	}{
		{0x12, 0x34, 0x1234},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
	}

	for _, tt := range tests {
		if got := Combine(tt.high, tt.low); got != tt.want {
			t.Errorf("Combine(%#x, %#x) = %#x, want %#x", tt.high, tt.low, got, tt.want)
		}
	}
}

func TestSetResetIsSet(t *testing.T) {
	var v uint8
	for i := uint8(0); i < 8; i++ {
		v = Set(i, v)
		if !IsSet(i, v) {
			t.Fatalf("bit %d should be set after Set", i)
		}
		v = Reset(i, v)
		if IsSet(i, v) {
			t.Fatalf("bit %d should be clear after Reset", i)
		}
	}
}

func TestHighLow(t *testing.T) {
	if High(0xABCD) != 0xAB {
		t.Error("High returned wrong byte")
	}
	if Low(0xABCD) != 0xCD {
		t.Error("Low returned wrong byte")
	}
}

func TestExtractBits(t *testing.T) {
	if got := ExtractBits(0b11010110, 6, 4); got != 0b101 {
		t.Errorf("ExtractBits = %03b, want 101", got)
	}
}
