package ioregs

import "goba/internal/bits"

// ObjShape/ObjMode mirror the attr0/attr1 encodings (§6).
type ObjShape uint8

const (
	ObjShapeSquare ObjShape = iota
	ObjShapeWide
	ObjShapeTall
)

type ObjMode uint8

const (
	ObjModeNormal ObjMode = iota
	ObjModeAffine
	ObjModeHidden
	ObjModeAffineDouble
)

// Sprite is one of the 128 parsed OAM attribute entries.
type Sprite struct {
	Y, X           int32
	Mode           ObjMode
	Mosaic         bool
	Depth8bpp      bool
	Shape          ObjShape
	Size           uint8 // 0-3, combined with Shape per §6 table
	HFlip, VFlip   bool  // only meaningful when Mode != Affine/AffineDouble
	AffineGroup    uint8 // only meaningful when Mode is Affine/AffineDouble
	TileIndex      uint16
	Priority       uint8
	PaletteBank    uint8 // only meaningful when Depth8bpp is false
}

// ParseSprite decodes the 6-byte attr0/attr1/attr2 block of OAM entry n.
func ParseSprite(raw []byte, n int) Sprite {
	base := uint32(n * 8)
	attr0 := uint32(raw[base]) | uint32(raw[base+1])<<8
	attr1 := uint32(raw[base+2]) | uint32(raw[base+3])<<8
	attr2 := uint32(raw[base+4]) | uint32(raw[base+5])<<8

	s := Sprite{
		Y:         int32(bits.Field(attr0, 0, 7)),
		Mode:      ObjMode(bits.Field(attr0, 8, 9)),
		Mosaic:    bits.BitSet(attr0, 12),
		Depth8bpp: bits.BitSet(attr0, 13),
		Shape:     ObjShape(bits.Field(attr0, 14, 15)),
		X:         bits.SignExtend(bits.Field(attr1, 0, 8), 9),
		Size:      uint8(bits.Field(attr1, 14, 15)),
		TileIndex: uint16(bits.Field(attr2, 0, 9)),
		Priority:  uint8(bits.Field(attr2, 10, 11)),
		PaletteBank: uint8(bits.Field(attr2, 12, 15)),
	}
	if s.Mode == ObjModeAffine || s.Mode == ObjModeAffineDouble {
		s.AffineGroup = uint8(bits.Field(attr1, 9, 13))
	} else {
		s.HFlip = bits.BitSet(attr1, 12)
		s.VFlip = bits.BitSet(attr1, 13)
	}
	return s
}

// ParseAllSprites decodes all 128 OAM entries.
func ParseAllSprites(raw []byte) [128]Sprite {
	var out [128]Sprite
	for i := range out {
		out[i] = ParseSprite(raw, i)
	}
	return out
}

// ObjAffineGroup is one of the 32 affine parameter groups shared by sprite
// attr entries 4n..4n+3's two-byte pad field, same 8.8 encoding as the BG
// affine registers.
type ObjAffineGroup struct {
	PA, PB, PC, PD int32
}

// ParseObjAffineGroups decodes all 32 affine groups out of the pad fields
// at OAM offset n*8+6 for entries n=4g..4g+3.
func ParseObjAffineGroups(raw []byte) [32]ObjAffineGroup {
	var out [32]ObjAffineGroup
	for g := 0; g < 32; g++ {
		pa := uint16(raw[(4*g+0)*8+6]) | uint16(raw[(4*g+0)*8+7])<<8
		pb := uint16(raw[(4*g+1)*8+6]) | uint16(raw[(4*g+1)*8+7])<<8
		pc := uint16(raw[(4*g+2)*8+6]) | uint16(raw[(4*g+2)*8+7])<<8
		pd := uint16(raw[(4*g+3)*8+6]) | uint16(raw[(4*g+3)*8+7])<<8
		out[g] = ObjAffineGroup{
			PA: bits.Raw8_8(pa),
			PB: bits.Raw8_8(pb),
			PC: bits.Raw8_8(pc),
			PD: bits.Raw8_8(pd),
		}
	}
	return out
}
