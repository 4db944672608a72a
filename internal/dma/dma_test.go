package dma

import (
	"testing"

	"goba/internal/cartridge"
	"goba/internal/ioregs"

	gbabus "goba/internal/bus"
)

func setChannel3(raw []byte, src, dest uint32, count uint16, word bool, timing uint8) {
	base := uint32(0xB0 + 3*0x0C)
	raw[base] = byte(src)
	raw[base+1] = byte(src >> 8)
	raw[base+2] = byte(src >> 16)
	raw[base+3] = byte(src >> 24)
	raw[base+4] = byte(dest)
	raw[base+5] = byte(dest >> 8)
	raw[base+6] = byte(dest >> 16)
	raw[base+7] = byte(dest >> 24)
	raw[base+8] = byte(count)
	raw[base+9] = byte(count >> 8)
	cntH := uint16(timing)<<12 | 1<<15
	if word {
		cntH |= 1 << 10
	}
	raw[base+10] = byte(cntH)
	raw[base+11] = byte(cntH >> 8)
}

type nopIRQ struct{ requested []uint }

func (n *nopIRQ) Request(bit uint) { n.requested = append(n.requested, bit) }

func TestChannel3WordCopyAndDisableOnFinish(t *testing.T) {
	b := gbabus.New(cartridge.New(make([]byte, 0x100)))
	b.Write32(0x02000000, 0xCAFEBABE)
	setChannel3(b.Regs.IO.Bytes(), 0x02000000, 0x02000100, 1, true, 0)
	b.Regs.DMA = ioregs.ParseAllDMA(b.Regs.IO.Bytes())

	irq := &nopIRQ{}
	e := New(b.Regs, b, irq)
	e.Trigger(ioregs.DMATimingNow)

	if got := b.Read32(0x02000100); got != 0xCAFEBABE {
		t.Fatalf("expected word copied to destination, got %#x", got)
	}
	if b.Regs.DMA[3].Enable {
		t.Fatalf("expected non-repeat channel to clear its enable bit after finishing")
	}
}

func TestCountZeroWrapsToChannel3Max(t *testing.T) {
	b := gbabus.New(cartridge.New(make([]byte, 0x100)))
	setChannel3(b.Regs.IO.Bytes(), 0x02000000, 0x02000100, 0, false, 0)
	b.Regs.DMA = ioregs.ParseAllDMA(b.Regs.IO.Bytes())
	if b.Regs.DMA[3].Count != 0x4000 {
		t.Fatalf("expected channel 3's zero count to wrap to 0x4000, got %#x", b.Regs.DMA[3].Count)
	}
}
