// Package dma implements C11: the four-channel DMA engine of §4.7. Each
// channel's control state is read straight out of the shared
// internal/ioregs view (no private copy, per §9's single-source-of-truth
// rule); this package only adds the transfer loop and the reload/disable
// bookkeeping that happens when a transfer completes.
package dma

import "goba/internal/ioregs"

// Bus is the narrow memory seam the DMA engine needs: halfword/word
// transfers only, since GBA DMA never moves single bytes.
type Bus interface {
	Read16(addr uint32) uint16
	Write16(addr uint32, v uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// IRQRequester lets a finished channel post its completion interrupt
// without the dma package importing the interrupt controller directly.
type IRQRequester interface {
	Request(bit uint)
}

var finishIRQBit = [4]uint{
	ioregs.IRQDMA0, ioregs.IRQDMA1, ioregs.IRQDMA2, ioregs.IRQDMA3,
}

// Engine drives the four DMA channels against the shared register view.
type Engine struct {
	Regs *ioregs.Regs
	Bus  Bus
	IRQ  IRQRequester

	// OnFinish is the wall-clock driver's on_dma_finish(channel) hook
	// (§6), fired whenever a channel completes a transfer, independent of
	// whether that channel also requests an IRQ.
	OnFinish func(channel int)
}

// New wires a DMA engine to its collaborators.
func New(regs *ioregs.Regs, bus Bus, irq IRQRequester) *Engine {
	return &Engine{Regs: regs, Bus: bus, IRQ: irq}
}

// Trigger runs every enabled channel whose timing matches, in priority
// order (channel 0 highest, §4.7). Called by the wall-clock driver at the
// Now/VBlank/HBlank boundaries; nothing in the core triggers Refresh.
func (e *Engine) Trigger(timing ioregs.DMATiming) {
	for ch := 0; ch < 4; ch++ {
		c := e.Regs.DMA[ch]
		if !c.Enable || c.Timing != timing {
			continue
		}
		e.run(ch, c)
	}
}

// run performs one channel's transfer and applies the post-transfer
// write-back/disable rules of §4.7.
func (e *Engine) run(ch int, c ioregs.DMAChannel) {
	src, dest := c.SrcAddr, c.DestAddr
	for i := uint32(0); i < c.Count; i++ {
		if c.Word {
			e.Bus.Write32(dest, e.Bus.Read32(src))
		} else {
			e.Bus.Write16(dest, e.Bus.Read16(src))
		}
		src = stepAddr(src, c.SrcCtrl, c.Word)
		dest = stepAddr(dest, c.DestCtrl, c.Word)
	}

	if c.IRQOnFinish && e.IRQ != nil {
		e.IRQ.Request(finishIRQBit[ch])
	}
	if e.OnFinish != nil {
		e.OnFinish(ch)
	}

	base := uint32(0xB0 + ch*0x0C)
	raw := e.Regs.IO.Bytes()
	if c.DestCtrl == ioregs.DMAAddrIncReload {
		dest = c.DestAddr // reload to the original base for the next repeat
	}
	writeWord(raw, base, src)
	writeWord(raw, base+4, dest)

	if !c.Repeat || c.Timing == ioregs.DMATimingNow {
		clearEnable(raw, base+11)
	}
	e.Regs.DMA = ioregs.ParseAllDMA(raw)
}

func stepAddr(addr uint32, ctrl ioregs.DMAAddrCtrl, word bool) uint32 {
	unit := uint32(2)
	if word {
		unit = 4
	}
	switch ctrl {
	case ioregs.DMAAddrInc, ioregs.DMAAddrIncReload:
		return addr + unit
	case ioregs.DMAAddrDec:
		return addr - unit
	default: // Fixed
		return addr
	}
}

func writeWord(raw []byte, base uint32, v uint32) {
	raw[base] = byte(v)
	raw[base+1] = byte(v >> 8)
	raw[base+2] = byte(v >> 16)
	raw[base+3] = byte(v >> 24)
}

func clearEnable(raw []byte, cntHHighByte uint32) {
	raw[cntHHighByte] &^= 1 << 7 // bit 15 of CNT_H lives in bit 7 of its high byte
}
