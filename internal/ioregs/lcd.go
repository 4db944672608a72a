// Package ioregs implements C4: the structured mirrors kept in sync with
// the raw I/O, Palette and OAM byte windows on every intercepted write. The
// byte array is always the source of truth (§9 "Two views of I/O memory");
// these structs are a read cache refreshed by Parse* after each write that
// lands in their window, never written to directly by the CPU.
package ioregs

import "goba/internal/bits"

// BGControl is one of the four BGCNT registers (§6 bit layout).
type BGControl struct {
	Priority   uint8
	TileBase   uint32 // byte address: field*0x4000 + 0x06000000
	Mosaic     bool
	Depth8bpp  bool // false=4bpp, true=8bpp
	MapBase    uint32 // byte address: field*0x800 + 0x06000000
	Overflow   bool
	SizeWidth  int
	SizeHeight int
}

func parseBGControl(v uint16) BGControl {
	size := bits.Field(uint32(v), 14, 15)
	w, h := 256, 256
	switch size {
	case 1:
		w, h = 512, 256
	case 2:
		w, h = 256, 512
	case 3:
		w, h = 512, 512
	}
	return BGControl{
		Priority:   uint8(bits.Field(uint32(v), 0, 1)),
		TileBase:   bits.Field(uint32(v), 2, 3)*0x4000 + 0x06000000,
		Mosaic:     bits.BitSet(uint32(v), 6),
		Depth8bpp:  bits.BitSet(uint32(v), 7),
		MapBase:    bits.Field(uint32(v), 8, 12)*0x800 + 0x06000000,
		Overflow:   bits.BitSet(uint32(v), 13),
		SizeWidth:  w,
		SizeHeight: h,
	}
}

// AffineParams is one BG2/BG3 affine parameter set: dx/dmx/dy/dmy are 8.8
// fixed-point, refX/refY are 19.8 fixed-point accumulators.
type AffineParams struct {
	DX, DMX, DY, DMY int32 // raw 8.8 values (use bits.Fixed8_8 to get a float)
	RefX, RefY       int32 // raw 19.8 values (use bits.Fixed19_8 to get a float)
}

// Window is one WIN0/WIN1 coordinate pair, holding the raw register bytes;
// the values are not clamped to screen bounds.
type Window struct {
	Left, Right, Top, Bottom uint8
}

// WindowMask is the per-layer enable mask carried by WININ/WINOUT.
type WindowMask struct {
	BG [4]bool
	OBJ bool
	ColorSpecial bool
}

func parseWindowMask(v uint8) WindowMask {
	return WindowMask{
		BG:           [4]bool{bits.BitSet(uint32(v), 0), bits.BitSet(uint32(v), 1), bits.BitSet(uint32(v), 2), bits.BitSet(uint32(v), 3)},
		OBJ:          bits.BitSet(uint32(v), 4),
		ColorSpecial: bits.BitSet(uint32(v), 5),
	}
}

// DISPCNT is the display-control register's parsed view (§6 bit layout).
type DISPCNT struct {
	BGMode             uint8
	FrameBase1         bool // bit 4
	HBlankIntervalFree bool // bit 5
	ObjCharMapping1D   bool // bit 6
	ForceBlank         bool // bit 7
	BGEnable           [4]bool
	WindowEnable       [2]bool
	ObjWindowEnable    bool
}

func parseDISPCNT(v uint16) DISPCNT {
	x := uint32(v)
	return DISPCNT{
		BGMode:             uint8(bits.Field(x, 0, 2)),
		FrameBase1:         bits.BitSet(x, 4),
		HBlankIntervalFree: bits.BitSet(x, 5),
		ObjCharMapping1D:   bits.BitSet(x, 6),
		ForceBlank:         bits.BitSet(x, 7),
		BGEnable:           [4]bool{bits.BitSet(x, 8), bits.BitSet(x, 9), bits.BitSet(x, 10), bits.BitSet(x, 11)},
		WindowEnable:       [2]bool{bits.BitSet(x, 13), bits.BitSet(x, 14)},
		ObjWindowEnable:    bits.BitSet(x, 15),
	}
}

// DISPSTAT is the display-status register's parsed view. is_vblank/
// is_hblank/vcount_match are driver-written only (the wall-clock driver, §6
// hooks); the remaining bits are user-writable.
type DISPSTAT struct {
	VBlank         bool
	HBlank         bool
	VCountMatch    bool
	VBlankIRQEnable bool
	HBlankIRQEnable bool
	VCountIRQEnable bool
	VCountTrigger   uint8
}

func parseDISPSTAT(v uint16) DISPSTAT {
	x := uint32(v)
	return DISPSTAT{
		VBlank:          bits.BitSet(x, 0),
		HBlank:          bits.BitSet(x, 1),
		VCountMatch:     bits.BitSet(x, 2),
		VBlankIRQEnable: bits.BitSet(x, 3),
		HBlankIRQEnable: bits.BitSet(x, 4),
		VCountIRQEnable: bits.BitSet(x, 5),
		VCountTrigger:   uint8(bits.Field(x, 8, 15)),
	}
}

// LCD is the full parsed LCD register block (0x04000000-0x04000055).
type LCD struct {
	DISPCNT  DISPCNT
	DISPSTAT DISPSTAT
	VCount   uint16
	BGCNT    [4]BGControl
	BGScrollX, BGScrollY [4]uint16
	Affine   [2]AffineParams // BG2, BG3
	Win      [2]Window
	WinIn    [2]WindowMask // inside WIN0, inside WIN1
	WinOut   WindowMask    // outside all windows
	WinObj   WindowMask    // inside OBJ window
	MosaicBG struct{ HSize, VSize uint8 }
	MosaicOBJ struct{ HSize, VSize uint8 }
	BlendMode   uint8
	BlendTarget [2][6]bool // [A/B][BG0..3,OBJ,Backdrop]
	BlendEVA, BlendEVB uint8
	BlendY             uint8
}

// rawHalf reads a little-endian halfword out of the 1 KiB raw I/O block.
func rawHalf(raw []byte, off uint32) uint16 {
	return uint16(raw[off]) | uint16(raw[off+1])<<8
}

// ParseLCD refreshes every LCD field from the raw I/O bytes; idempotent and
// value-equivalent to re-reading raw memory then decoding (§4.6).
func ParseLCD(raw []byte, driverWritten *LCD) LCD {
	l := LCD{}
	l.DISPCNT = parseDISPCNT(rawHalf(raw, 0x00))
	// DISPSTAT: driver-written bits (vblank/hblank/vcount-match) are
	// preserved from the previous parsed state; only the user-writable
	// subset comes from raw bytes freshly written by the CPU.
	userStat := parseDISPSTAT(rawHalf(raw, 0x04))
	l.DISPSTAT = DISPSTAT{
		VBlank:          driverWritten.DISPSTAT.VBlank,
		HBlank:          driverWritten.DISPSTAT.HBlank,
		VCountMatch:     driverWritten.DISPSTAT.VCountMatch,
		VBlankIRQEnable: userStat.VBlankIRQEnable,
		HBlankIRQEnable: userStat.HBlankIRQEnable,
		VCountIRQEnable: userStat.VCountIRQEnable,
		VCountTrigger:   userStat.VCountTrigger,
	}
	l.VCount = driverWritten.VCount
	for i := 0; i < 4; i++ {
		l.BGCNT[i] = parseBGControl(rawHalf(raw, uint32(0x08+i*2)))
		l.BGScrollX[i] = rawHalf(raw, uint32(0x10+i*4)) & 0x1FF
		l.BGScrollY[i] = rawHalf(raw, uint32(0x12+i*4)) & 0x1FF
	}
	for i := 0; i < 2; i++ {
		base := uint32(0x20 + i*0x10)
		l.Affine[i].DX = bits.Raw8_8(rawHalf(raw, base+0x00))
		l.Affine[i].DMX = bits.Raw8_8(rawHalf(raw, base+0x02))
		l.Affine[i].DY = bits.Raw8_8(rawHalf(raw, base+0x04))
		l.Affine[i].DMY = bits.Raw8_8(rawHalf(raw, base+0x06))
		refXRaw := uint32(rawHalf(raw, base+0x08)) | uint32(rawHalf(raw, base+0x0A))<<16
		refYRaw := uint32(rawHalf(raw, base+0x0C)) | uint32(rawHalf(raw, base+0x0E))<<16
		l.Affine[i].RefX = bits.Raw19_8(refXRaw)
		l.Affine[i].RefY = bits.Raw19_8(refYRaw)
	}
	l.Win[0] = Window{Left: raw[0x43], Right: raw[0x42], Top: raw[0x41], Bottom: raw[0x40]}
	l.Win[1] = Window{Left: raw[0x47], Right: raw[0x46], Top: raw[0x45], Bottom: raw[0x44]}
	l.WinIn[0] = parseWindowMask(raw[0x48])
	l.WinIn[1] = parseWindowMask(raw[0x49])
	l.WinOut = parseWindowMask(raw[0x4A])
	l.WinObj = parseWindowMask(raw[0x4B])
	mosaic := rawHalf(raw, 0x4C)
	l.MosaicBG.HSize = uint8(bits.Field(uint32(mosaic), 0, 3))
	l.MosaicBG.VSize = uint8(bits.Field(uint32(mosaic), 4, 7))
	l.MosaicOBJ.HSize = uint8(bits.Field(uint32(mosaic), 8, 11))
	l.MosaicOBJ.VSize = uint8(bits.Field(uint32(mosaic), 12, 15))
	bldcnt := rawHalf(raw, 0x50)
	l.BlendMode = uint8(bits.Field(uint32(bldcnt), 6, 7))
	for i := 0; i < 6; i++ {
		l.BlendTarget[0][i] = bits.BitSet(uint32(bldcnt), uint(i))
		l.BlendTarget[1][i] = bits.BitSet(uint32(bldcnt), uint(i+8))
	}
	bldalpha := rawHalf(raw, 0x52)
	l.BlendEVA = uint8(bits.Field(uint32(bldalpha), 0, 4))
	l.BlendEVB = uint8(bits.Field(uint32(bldalpha), 8, 12))
	l.BlendY = uint8(bits.Field(uint32(rawHalf(raw, 0x54)), 0, 4))
	return l
}
