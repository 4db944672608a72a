package interrupt

import (
	"testing"

	"goba/internal/ioregs"
)

func TestPendingRequiresIMEAndMask(t *testing.T) {
	regs := ioregs.NewRegs()
	c := New(regs)
	if c.Pending() {
		t.Fatalf("expected no pending IRQ on a fresh register file")
	}
	c.Request(ioregs.IRQVBlank)
	if c.Pending() {
		t.Fatalf("IF set but IME/IE clear should not report pending")
	}

	regs.IO.Bytes()[0x200] = 1 // IE: enable VBlank
	regs.IO.Bytes()[0x208] = 1 // IME
	regs.IRQ = ioregs.ParseInterrupt(regs.IO.Bytes())
	if !c.Pending() {
		t.Fatalf("expected pending IRQ once IME and IE both allow VBlank")
	}
}
