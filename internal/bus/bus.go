// Package bus implements C3's unified address-space dispatch: it owns the
// raw memory segments and cartridge, folds mirrored addresses per §3, and
// routes every access to the right backing store (adapted from the
// teacher's address-range-switch Bus, rewired onto internal/memory,
// internal/cartridge and internal/ioregs instead of the deleted
// apu/io/joypad/ppu/timer packages).
package bus

import (
	"goba/internal/cartridge"
	"goba/internal/ioregs"
	"goba/internal/memory"
	"goba/util/dbg"
)

// Bus is the GBA's single unified address space. It owns no CPU state; the
// cpu.CPU package depends on it only through the narrow cpu.Bus interface.
type Bus struct {
	BIOS     *memory.BIOS
	EWRAM    *memory.RAMSegment
	IWRAM    *memory.RAMSegment
	VRAM     *memory.RAMSegment
	Regs     *ioregs.Regs
	Cart     *cartridge.Cartridge
	biosLock bool // true once PC has left the BIOS region once (§5 read lock)
}

// New constructs a bus with all RAM segments allocated and zeroed, wired to
// the given cartridge image.
func New(cart *cartridge.Cartridge) *Bus {
	return &Bus{
		BIOS:  memory.NewBIOS(),
		EWRAM: memory.NewRAMSegment(memory.EWRAMStart, memory.EWRAMSize),
		IWRAM: memory.NewRAMSegment(memory.IWRAMStart, memory.IWRAMSize),
		VRAM:  memory.NewRAMSegment(memory.VRAMStart, memory.VRAMSize),
		Regs:  ioregs.NewRegs(),
		Cart:  cart,
	}
}

// LoadBIOS installs the boot ROM image.
func (b *Bus) LoadBIOS(data []byte) { b.BIOS.Load(data) }

// Read8 dispatches a single byte read to the segment owning addr, folding
// any mirrored region down to its canonical offset first (§3).
func (b *Bus) Read8(addr uint32) uint8 {
	switch {
	case addr < memory.BIOSStart+memory.BIOSSize:
		if b.biosLock {
			return 0 // open bus once execution has left the BIOS region
		}
		return b.BIOS.Read8(addr)
	case addr >= memory.EWRAMStart && addr < memory.EWRAMStart+0x1000000:
		return b.EWRAM.Read8(memory.EWRAMStart + memory.CanonicalEWRAM(addr))
	case addr >= memory.IWRAMStart && addr < memory.IWRAMStart+0x1000000:
		return b.IWRAM.Read8(memory.IWRAMStart + memory.CanonicalIWRAM(addr))
	case addr >= memory.IOStart && addr < memory.IOStart+0x1000000:
		return b.readIO8(addr)
	case addr >= memory.PaletteStart && addr < memory.PaletteStart+0x1000000:
		return b.Regs.Palette.Read8(memory.PaletteStart + memory.CanonicalPalette(addr))
	case addr >= memory.VRAMStart && addr < memory.VRAMStart+0x1000000:
		return b.VRAM.Read8(memory.VRAMStart + memory.CanonicalVRAM(addr))
	case addr >= memory.OAMStart && addr < memory.OAMStart+0x1000000:
		return b.Regs.OAM.Read8(memory.OAMStart + memory.CanonicalOAM(addr))
	case addr >= memory.ROMStart0 && addr < memory.ROMStart0+3*memory.ROMWindow:
		offset := (addr - memory.ROMStart0) % memory.ROMWindow
		return b.Cart.ReadROM8(offset)
	case addr >= memory.SaveRAMStart:
		return b.Cart.ReadSRAM8(addr - memory.SaveRAMStart)
	default:
		dbg.Printf("bus: read8 from unmapped address %#08x", addr)
		return 0
	}
}

func (b *Bus) readIO8(addr uint32) uint8 {
	offset := (addr - memory.IOStart) % memory.IOSize
	return b.Regs.IO.Read8(memory.IOStart + offset)
}

// Write8 dispatches a single byte write, routing the three parsed-view
// windows (I/O, Palette, OAM) through ioregs.Regs so the cached views stay
// in sync (§4.6, §9).
func (b *Bus) Write8(addr uint32, v uint8) {
	switch {
	case addr < memory.BIOSStart+memory.BIOSSize:
		// BIOS is read-only; ignored per §5.
	case addr >= memory.EWRAMStart && addr < memory.EWRAMStart+0x1000000:
		b.EWRAM.Write8(memory.EWRAMStart+memory.CanonicalEWRAM(addr), v)
	case addr >= memory.IWRAMStart && addr < memory.IWRAMStart+0x1000000:
		b.IWRAM.Write8(memory.IWRAMStart+memory.CanonicalIWRAM(addr), v)
	case addr >= memory.IOStart && addr < memory.IOStart+0x1000000:
		offset := (addr - memory.IOStart) % memory.IOSize
		b.Regs.WriteIO8(memory.IOStart+offset, v)
	case addr >= memory.PaletteStart && addr < memory.PaletteStart+0x1000000:
		b.Regs.WritePalette8(memory.PaletteStart+memory.CanonicalPalette(addr), v)
	case addr >= memory.VRAMStart && addr < memory.VRAMStart+0x1000000:
		b.VRAM.Write8(memory.VRAMStart+memory.CanonicalVRAM(addr), v)
	case addr >= memory.OAMStart && addr < memory.OAMStart+0x1000000:
		b.Regs.WriteOAM8(memory.OAMStart+memory.CanonicalOAM(addr), v)
	case addr >= memory.SaveRAMStart:
		b.Cart.WriteSRAM8(addr-memory.SaveRAMStart, v)
	default:
		dbg.Printf("bus: write8 to unmapped/ROM address %#08x", addr)
	}
}

// Read16/Write16/Read32/Write32 are built from the byte primitives, little-
// endian, matching the teacher's layering (one seam for mirror folding and
// parsed-view sync, widened here).
func (b *Bus) Read16(addr uint32) uint16 {
	return uint16(b.Read8(addr)) | uint16(b.Read8(addr+1))<<8
}

func (b *Bus) Write16(addr uint32, v uint16) {
	b.Write8(addr, uint8(v))
	b.Write8(addr+1, uint8(v>>8))
}

func (b *Bus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}

func (b *Bus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}

// LockBIOS is called once the CPU's PC leaves the BIOS region for the
// first time, so later reads from 0x0 return open-bus zero instead of
// exposing the boot ROM to user-mode code (§5).
func (b *Bus) LockBIOS() { b.biosLock = true }
