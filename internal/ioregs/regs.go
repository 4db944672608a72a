package ioregs

import "goba/internal/memory"

// Regs owns the three raw byte windows this package instruments (I/O,
// Palette, OAM) plus their parsed mirrors, and keeps the mirrors in sync on
// every write (§4.6, §9 "Two views of I/O memory"). WriteIO8, WritePalette8
// and WriteOAM8 are the intercepted entry points; reads always go through
// the raw segment, never
// through the parsed view, so Regs never becomes a second source of truth.
type Regs struct {
	IO      *memory.RAMSegment
	Palette *memory.RAMSegment
	OAM     *memory.RAMSegment

	LCD     LCD
	DMA     [4]DMAChannel
	IRQ     InterruptRegs
	Pal     Palette
	Sprites [128]Sprite
	Affine  [32]ObjAffineGroup
}

// NewRegs allocates the raw windows and an all-zero parsed view.
func NewRegs() *Regs {
	r := &Regs{
		IO:      memory.NewRAMSegment(memory.IOStart, memory.IOSize),
		Palette: memory.NewRAMSegment(memory.PaletteStart, memory.PaletteSize),
		OAM:     memory.NewRAMSegment(memory.OAMStart, memory.OAMSize),
	}
	r.resync()
	return r
}

func (r *Regs) resync() {
	r.LCD = ParseLCD(r.IO.Bytes(), &r.LCD)
	r.DMA = ParseAllDMA(r.IO.Bytes())
	r.IRQ = ParseInterrupt(r.IO.Bytes())
	r.Pal = ParsePalette(r.Palette.Bytes())
	r.Sprites = ParseAllSprites(r.OAM.Bytes())
	r.Affine = ParseObjAffineGroups(r.OAM.Bytes())
}

// WriteIO8 stores one byte into the raw I/O block and refreshes the
// affected parsed view. The IF window gets write-1-to-clear treatment
// instead of a plain store; every other byte is a plain store followed by
// a full resync (the block is 1 KiB, cheap enough to re-parse wholesale
// rather than tracking per-field dirtiness).
func (r *Regs) WriteIO8(addr uint32, v byte) {
	offset := addr - memory.IOStart
	switch offset {
	case 0x202:
		ApplyIFClear(r.IO.Bytes(), v, 0)
	case 0x203:
		ApplyIFClear(r.IO.Bytes(), 0, v)
	default:
		r.IO.Write8(addr, v)
	}
	r.resync()
}

// WritePalette8 stores one byte into palette RAM and refreshes the RGBA
// cache.
func (r *Regs) WritePalette8(addr uint32, v byte) {
	r.Palette.Write8(addr, v)
	r.Pal = ParsePalette(r.Palette.Bytes())
}

// WriteOAM8 stores one byte into OAM and refreshes the sprite/affine cache.
func (r *Regs) WriteOAM8(addr uint32, v byte) {
	r.OAM.Write8(addr, v)
	r.Sprites = ParseAllSprites(r.OAM.Bytes())
	r.Affine = ParseObjAffineGroups(r.OAM.Bytes())
}

// SetVBlank/SetHBlank/SetVCountMatch/SetVCount are the wall-clock driver's
// hooks into DISPSTAT/VCOUNT's driver-written bits (§6), applied directly
// to raw memory so the next resync sees them.
func (r *Regs) SetVBlank(v bool)      { r.LCD.DISPSTAT.VBlank = v; r.writeDispstatBit(0, v) }
func (r *Regs) SetHBlank(v bool)      { r.LCD.DISPSTAT.HBlank = v; r.writeDispstatBit(1, v) }
func (r *Regs) SetVCountMatch(v bool) { r.LCD.DISPSTAT.VCountMatch = v; r.writeDispstatBit(2, v) }

func (r *Regs) writeDispstatBit(bit uint, v bool) {
	cur := rawHalf(r.IO.Bytes(), 0x04)
	if v {
		cur |= 1 << bit
	} else {
		cur &^= 1 << bit
	}
	r.IO.Bytes()[0x04] = byte(cur)
	r.IO.Bytes()[0x05] = byte(cur >> 8)
}

// SetVCount writes the read-only VCOUNT register directly; only the wall
// clock driver calls this.
func (r *Regs) SetVCount(line uint16) {
	r.LCD.VCount = line
	r.IO.Bytes()[0x06] = byte(line)
	r.IO.Bytes()[0x07] = byte(line >> 8)
}

// RequestIRQ sets a peripheral-sourced IF bit and resyncs IRQ.
func (r *Regs) RequestIRQ(bit uint) {
	RequestIRQ(r.IO.Bytes(), bit)
	r.IRQ = ParseInterrupt(r.IO.Bytes())
}
