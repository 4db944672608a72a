// Package core implements C13, the wall-clock driver: it advances the CPU
// one instruction at a time, scans DMA and interrupts at the points §4.9
// and §5 require, and fires the scanline hooks an external PPU collaborator
// needs to render each frame (§6). The core owns every piece of mutable
// state in the emulator — CPU, bus, DMA engine, interrupt controller — and
// hands out no shared mutability, matching the single-threaded cooperative
// model of §5.
package core

import (
	"goba/internal/bus"
	"goba/internal/cartridge"
	"goba/internal/cpu"
	"goba/internal/dma"
	"goba/internal/interrupt"
	"goba/internal/ioregs"
)

// Scanline timing, in CPU cycles, per the GBA's 16.78 MHz dot clock: 4
// cycles per dot, 308 dots per scanline (240 visible + 68 blanking dots),
// 228 scanlines per frame (160 VDraw + 68 VBlank).
const (
	CyclesPerScanline = 1232
	HDrawCycles       = 960 // 240 visible dots * 4 cycles/dot
	VisibleLines      = 160
	TotalLines        = 228
)

// Hooks are the PPU/peripheral collaborator callbacks of §6. Every field is
// optional; a nil hook is simply not called.
type Hooks struct {
	OnVDraw     func()
	OnHDraw     func()
	OnHBlank    func()
	OnVBlank    func()
	OnVCount    func(line uint16)
	OnDMAFinish func(channel int)
	UpdatePixel func(row, col int)
}

// Core wires the CPU to its bus and the peripheral collaborators that the
// spec leaves external (PPU, audio, timers, keypad).
type Core struct {
	CPU    *cpu.CPU
	Bus    *bus.Bus
	Regs   *ioregs.Regs
	DMA    *dma.Engine
	IRQ    *interrupt.Controller
	Hooks  Hooks

	lineCycle  uint64
	line       uint16
	inHBlank   bool
	inVBlank   bool
	didLeaveBIOS bool
}

// New constructs a fully wired core around a borrowed cartridge image.
func New(rom []byte) *Core {
	cart := cartridge.New(rom)
	b := bus.New(cart)
	irq := interrupt.New(b.Regs)
	c := cpu.New(b)
	c.IRQ = irq

	k := &Core{
		CPU:  c,
		Bus:  b,
		Regs: b.Regs,
		IRQ:  irq,
	}

	d := dma.New(b.Regs, b, irq)
	d.OnFinish = func(channel int) {
		if k.Hooks.OnDMAFinish != nil {
			k.Hooks.OnDMAFinish(channel)
		}
	}
	k.DMA = d

	return k
}

// LoadBIOS installs the boot ROM image (§6 load_bios).
func (k *Core) LoadBIOS(data []byte) { k.Bus.LoadBIOS(data) }

// SetSaveBackend installs a host-provided SRAM/flash backend (§9 Open
// Question: save RAM persistence is a collaborator, not core state).
func (k *Core) SetSaveBackend(backend cartridge.SaveBackend) {
	k.Bus.Cart.SetSaveBackend(backend)
}

// Step runs exactly one instruction (or services one pending IRQ), scans
// DMA(Now) and interrupts, advances the scanline clock, and fires any
// boundary hooks crossed. It returns whether the pipeline was flushed,
// matching §6's step() contract.
func (k *Core) Step() bool {
	cycles, flushed := k.CPU.Step()
	k.lockBIOSOnceLeft()

	k.DMA.Trigger(ioregs.DMATimingNow)

	k.lineCycle += cycles

	if !k.inHBlank && k.lineCycle >= HDrawCycles {
		k.enterHBlank()
	}
	for k.lineCycle >= CyclesPerScanline {
		k.lineCycle -= CyclesPerScanline
		k.advanceLine()
	}

	return flushed
}

// Frame runs Step until exactly one full 228-line frame has elapsed.
func (k *Core) Frame() {
	startLine := k.line
	k.Step()
	for k.line != startLine {
		k.Step()
	}
}

func (k *Core) lockBIOSOnceLeft() {
	if k.didLeaveBIOS {
		return
	}
	if k.CPU.Registers.PC() >= 0x4000 {
		k.didLeaveBIOS = true
		k.Bus.LockBIOS()
	}
}

// enterHBlank crosses the HDraw→HBlank boundary within the current line:
// sets DISPSTAT bit 1, fires the HBlank hook, and (outside VBlank) triggers
// HBlank-timed DMA and the HBlank IRQ (§6 on_hblank).
func (k *Core) enterHBlank() {
	k.inHBlank = true
	k.Regs.SetHBlank(true)
	if k.Hooks.OnHBlank != nil {
		k.Hooks.OnHBlank()
	}
	if !k.inVBlank {
		k.DMA.Trigger(ioregs.DMATimingHBlank)
		if k.Regs.IRQ.IE&(1<<ioregs.IRQHBlank) != 0 {
			k.IRQ.Request(ioregs.IRQHBlank)
		}
		if k.Hooks.UpdatePixel != nil && k.line < VisibleLines {
			for col := 0; col < 240; col++ {
				k.Hooks.UpdatePixel(int(k.line), col)
			}
		}
	}
}

// advanceLine rolls over to the next scanline once a full line's cycle
// budget has elapsed: updates VCOUNT, fires on_vcount, and crosses the
// VDraw/VBlank boundaries at lines 0 and 160 (§6).
func (k *Core) advanceLine() {
	k.inHBlank = false
	k.Regs.SetHBlank(false)
	k.line++
	if k.line >= TotalLines {
		k.line = 0
	}
	k.Regs.SetVCount(k.line)
	if k.Hooks.OnVCount != nil {
		k.Hooks.OnVCount(k.line)
	}
	if uint8(k.line) == k.Regs.LCD.DISPSTAT.VCountTrigger {
		k.Regs.SetVCountMatch(true)
		if k.Regs.IRQ.IE&(1<<ioregs.IRQVCount) != 0 {
			k.IRQ.Request(ioregs.IRQVCount)
		}
	} else {
		k.Regs.SetVCountMatch(false)
	}

	switch {
	case k.line == 0:
		k.inVBlank = false
		k.Regs.SetVBlank(false)
		if k.Hooks.OnVDraw != nil {
			k.Hooks.OnVDraw()
		}
	case k.line == VisibleLines:
		k.inVBlank = true
		k.Regs.SetVBlank(true)
		if k.Hooks.OnVBlank != nil {
			k.Hooks.OnVBlank()
		}
		k.DMA.Trigger(ioregs.DMATimingVBlank)
		if k.Regs.IRQ.IE&(1<<ioregs.IRQVBlank) != 0 {
			k.IRQ.Request(ioregs.IRQVBlank)
		}
	case k.line < VisibleLines:
		if k.Hooks.OnVDraw != nil {
			k.Hooks.OnVDraw()
		}
	default:
		if k.Hooks.OnHDraw != nil {
			k.Hooks.OnHDraw()
		}
	}
}
