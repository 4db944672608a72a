// Package ppu is the bitmap-mode framebuffer collaborator referenced by
// Core.Hooks.UpdatePixel. Tile/sprite/window rendering is out of scope
// (see SPEC_FULL.md); this package only resolves Mode 3's direct BGR555
// bitmap so a host can render something to compare against real hardware
// output for the scanlines it chooses to drive.
package ppu

import (
	"image"
	"image/color"

	"goba/internal/bus"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160
	mode3Base    = 0x06000000
)

// Framebuffer renders into an RGBA image, one scanline at a time, driven by
// Core.Hooks.UpdatePixel at the HDraw->HBlank boundary.
type Framebuffer struct {
	Frame *image.RGBA
	Bus   *bus.Bus
}

func New(b *bus.Bus) *Framebuffer {
	return &Framebuffer{
		Frame: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
		Bus:   b,
	}
}

// UpdatePixel matches Core.Hooks.UpdatePixel's signature; wire it with
// core.Hooks.UpdatePixel = fb.UpdatePixel.
func (f *Framebuffer) UpdatePixel(row, col int) {
	if row < 0 || row >= ScreenHeight || col < 0 || col >= ScreenWidth {
		return
	}
	if f.Bus.Regs.LCD.DISPCNT.BGMode != 3 {
		f.Frame.SetRGBA(col, row, color.RGBA{A: 255})
		return
	}
	addr := uint32(mode3Base + (row*ScreenWidth+col)*2)
	c16 := uint16(f.Bus.Read8(addr)) | uint16(f.Bus.Read8(addr+1))<<8
	r := uint8((c16 & 0x1F) * 8)
	g := uint8(((c16 >> 5) & 0x1F) * 8)
	b := uint8(((c16 >> 10) & 0x1F) * 8)
	f.Frame.SetRGBA(col, row, color.RGBA{R: r, G: g, B: b, A: 255})
}
