package bits

import "testing"

func TestField(t *testing.T) {
	v := uint32(0b1011_0110)
	if got := Field(v, 4, 7); got != 0b1011 {
		t.Errorf("Field(4,7) = %#b, want 0b1011", got)
	}
}

func TestSignExtend(t *testing.T) {
	if got := SignExtend(0x1FF, 9); got != -1 {
		t.Errorf("SignExtend(0x1FF, 9) = %d, want -1", got)
	}
	if got := SignExtend(0x0FF, 9); got != 0xFF {
		t.Errorf("SignExtend(0xFF, 9) = %d, want 255", got)
	}
}

func TestRotateRight32(t *testing.T) {
	if got := RotateRight32(0x1, 1); got != 0x80000000 {
		t.Errorf("RotateRight32(1,1) = %#x, want 0x80000000", got)
	}
	if got := RotateRight32(0xF0, 0); got != 0xF0 {
		t.Errorf("RotateRight32(x,0) should be identity, got %#x", got)
	}
}

func TestFixed8_8(t *testing.T) {
	if got := Fixed8_8(0x0080); got != 0.5 {
		t.Errorf("Fixed8_8(0x0080) = %v, want 0.5", got)
	}
	if got := Fixed8_8(0xFF80); got != -0.5 {
		t.Errorf("Fixed8_8(0xFF80) = %v, want -0.5", got)
	}
}

func TestFixed19_8(t *testing.T) {
	if got := Fixed19_8(0x00000180); got != 1.5 {
		t.Errorf("Fixed19_8(0x180) = %v, want 1.5", got)
	}
}
