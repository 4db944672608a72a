package bus

import (
	"testing"

	"goba/internal/cartridge"
	"goba/internal/memory"
)

func newTestBus() *Bus {
	return New(cartridge.New(make([]byte, 0x1000)))
}

func TestEWRAMMirrorsFold(t *testing.T) {
	b := newTestBus()
	b.Write8(memory.EWRAMStart, 0x42)
	if got := b.Read8(memory.EWRAMStart + memory.EWRAMSize); got != 0x42 {
		t.Fatalf("expected mirrored EWRAM read to see the canonical write, got %#x", got)
	}
}

func TestIOWriteSyncsParsedView(t *testing.T) {
	b := newTestBus()
	b.Write16(memory.IOStart, 0x0080) // DISPCNT bit 7: ForceBlank
	if !b.Regs.LCD.DISPCNT.ForceBlank {
		t.Fatalf("expected DISPCNT parsed view to reflect the write")
	}
}

func TestVRAMTwoLevelMirror(t *testing.T) {
	b := newTestBus()
	b.Write8(memory.VRAMStart+0x10000, 0x7)
	if got := b.Read8(memory.VRAMStart + 0x18000); got != 0x7 {
		t.Fatalf("expected VRAM upper 32KiB block to mirror at +0x8000, got %#x", got)
	}
}

func TestBIOSLockBlanksAfterLeaving(t *testing.T) {
	b := newTestBus()
	b.BIOS.Load([]byte{0xAA})
	if got := b.Read8(0); got != 0xAA {
		t.Fatalf("expected BIOS byte before lock, got %#x", got)
	}
	b.LockBIOS()
	if got := b.Read8(0); got != 0 {
		t.Fatalf("expected open-bus zero after BIOS lock, got %#x", got)
	}
}

func TestROMMirrorsAcrossWaitstateWindows(t *testing.T) {
	rom := make([]byte, 4)
	rom[0] = 0x99
	b := New(cartridge.New(rom))
	if got := b.Read8(memory.ROMStart1); got != 0x99 {
		t.Fatalf("expected ROM waitstate-1 window to alias waitstate-0 bytes, got %#x", got)
	}
}
