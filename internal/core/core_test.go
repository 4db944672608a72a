package core

import "testing"

// A minimal BIOS image: an infinite branch-to-self at the reset vector so
// Step never wanders into unmapped memory during the smoke tests below.
func infiniteLoopBIOS() []byte {
	bios := make([]byte, 0x4000)
	// ARM: B $ (branch to self): cond=AL(1110), 101, L=0, offset=-2 (0xFFFFFE)
	bios[0] = 0xFE
	bios[1] = 0xFF
	bios[2] = 0xFF
	bios[3] = 0xEA
	return bios
}

func TestStepAdvancesScanlineClock(t *testing.T) {
	c := New(make([]byte, 0x1000))
	c.LoadBIOS(infiniteLoopBIOS())

	vblanks := 0
	c.Hooks.OnVBlank = func() { vblanks++ }

	for i := 0; i < CyclesPerScanline*TotalLines+10; i++ {
		c.Step()
	}
	if vblanks == 0 {
		t.Fatalf("expected at least one VBlank hook firing after a full frame's worth of steps")
	}
}

func TestVCountMatchTriggersIRQWhenEnabled(t *testing.T) {
	c := New(make([]byte, 0x1000))
	c.LoadBIOS(infiniteLoopBIOS())

	// Enable VCount IRQ with trigger line 5: DISPSTAT bits [5]=VCountIRQEnable, [15:8]=trigger.
	c.Regs.WriteIO8(0x04000004, 1<<5)
	c.Regs.WriteIO8(0x04000005, 5)
	c.Regs.WriteIO8(0x04000200, 1<<2) // IE: VCount
	c.Regs.WriteIO8(0x04000208, 1)    // IME

	for i := 0; i < CyclesPerScanline*6; i++ {
		c.Step()
	}
	if c.Regs.IRQ.IF&(1<<2) == 0 {
		t.Fatalf("expected VCount IF bit latched once line 5 was reached")
	}
}
