package ioregs

import "testing"

func TestDISPCNTBitLayout(t *testing.T) {
	r := NewRegs()
	r.WriteIO8(0x04000000, 0x03) // bg_mode=3
	r.WriteIO8(0x04000001, 0x80) // obj_window_enable
	if r.LCD.DISPCNT.BGMode != 3 {
		t.Fatalf("bg_mode = %d, want 3", r.LCD.DISPCNT.BGMode)
	}
	if !r.LCD.DISPCNT.ObjWindowEnable {
		t.Fatalf("obj_window_enable not set")
	}
}

func TestIFWriteOneToClear(t *testing.T) {
	r := NewRegs()
	r.RequestIRQ(IRQVBlank)
	r.RequestIRQ(IRQDMA0)
	if r.IRQ.IF&(1<<IRQVBlank) == 0 || r.IRQ.IF&(1<<IRQDMA0) == 0 {
		t.Fatalf("expected both IF bits pending, got %#x", r.IRQ.IF)
	}
	// writing 1 to the VBlank bit clears only that bit
	r.WriteIO8(0x04000202, 1<<IRQVBlank)
	if r.IRQ.IF&(1<<IRQVBlank) != 0 {
		t.Fatalf("VBlank bit not cleared: %#x", r.IRQ.IF)
	}
	if r.IRQ.IF&(1<<IRQDMA0) == 0 {
		t.Fatalf("DMA0 bit incorrectly cleared: %#x", r.IRQ.IF)
	}
}

func TestDMACountZeroWraps(t *testing.T) {
	r := NewRegs()
	// channel 2 CNT_L = 0 at 0x040000C8
	r.WriteIO8(0x040000C8, 0)
	r.WriteIO8(0x040000C9, 0)
	if r.DMA[2].Count != 0x4000 {
		t.Fatalf("channel 2 zero count = %#x, want 0x4000", r.DMA[2].Count)
	}
}

func TestDMAChannel3CountZeroWrapsSameAsOthers(t *testing.T) {
	r := NewRegs()
	r.WriteIO8(0x040000DC, 0)
	r.WriteIO8(0x040000DD, 0)
	if r.DMA[3].Count != 0x4000 {
		t.Fatalf("channel 3 zero count = %#x, want 0x4000", r.DMA[3].Count)
	}
}

func TestPaletteExpansion(t *testing.T) {
	r := NewRegs()
	// entry 1: raw 0x001F = pure red (low 5 bits), zero-extended (<<3,
	// no bit replication): 0x1F<<3 = 0xF8.
	r.WritePalette8(0x05000002, 0x1F)
	r.WritePalette8(0x05000003, 0x00)
	c := r.Pal.BG[1]
	if c[0] != 0xF8 || c[1] != 0 || c[2] != 0 || c[3] != 0xFF {
		t.Fatalf("BG[1] = %v, want pure red opaque (0xF8,0,0,0xFF)", c)
	}
}

func TestSpriteAffineMode(t *testing.T) {
	r := NewRegs()
	// sprite 0 attr0: mode=1 (affine) at bits 8-9
	r.WriteOAM8(0x07000000, 0x00)
	r.WriteOAM8(0x07000001, 0x01)
	// attr1: affine group index = 5 at bits 9-13
	r.WriteOAM8(0x07000002, 0x00)
	r.WriteOAM8(0x07000003, 0x0A) // 5<<1 in the high byte's low bits... (5<<9)>>8 = 0x0A
	s := r.Sprites[0]
	if s.Mode != ObjModeAffine {
		t.Fatalf("mode = %d, want affine", s.Mode)
	}
	if s.AffineGroup != 5 {
		t.Fatalf("affine group = %d, want 5", s.AffineGroup)
	}
}
