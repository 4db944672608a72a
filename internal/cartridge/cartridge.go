// Package cartridge models the Game Pak: a borrowed, read-only ROM image
// mirrored across three waitstate windows, plus the Save RAM address window
// routed to a pluggable backend (the save-backend collaborator is out of
// scope per spec.md §1; this package only owns the address decoding).
package cartridge

// Cartridge holds a borrowed ROM slice for the lifetime of the core.
type Cartridge struct {
	rom  []byte
	save SaveBackend
}

// SaveBackend is the collaborator boundary for SRAM/flash persistence.
// spec.md §9 leaves the real implementation to the host; DefaultSaveRAM is
// a plain in-memory stand-in satisfying the same interface.
type SaveBackend interface {
	Read(addr uint32) byte
	Write(addr uint32, v byte)
}

// DefaultSaveRAM is an in-memory SaveBackend used when the host does not
// supply one: a flat 64 KiB array, matching the declared address window.
type DefaultSaveRAM struct {
	data [0x10000]byte
}

func (s *DefaultSaveRAM) Read(addr uint32) byte     { return s.data[addr&0xFFFF] }
func (s *DefaultSaveRAM) Write(addr uint32, v byte) { s.data[addr&0xFFFF] = v }

// New wraps a borrowed ROM image. The slice is never copied or retained
// beyond what the caller guarantees lives for the core's lifetime.
func New(rom []byte) *Cartridge {
	return &Cartridge{rom: rom, save: &DefaultSaveRAM{}}
}

// SetSaveBackend installs a host-provided SRAM/flash backend.
func (c *Cartridge) SetSaveBackend(b SaveBackend) { c.save = b }

// ReadROM8 reads a byte from the cartridge ROM at an offset already folded
// into the first 32 MiB window (0x08000000-based); all three waitstate
// mirrors alias the same bytes.
func (c *Cartridge) ReadROM8(offset uint32) byte {
	if int(offset) >= len(c.rom) {
		return 0 // open bus: read past the end of a short ROM image
	}
	return c.rom[offset]
}

// ROMLen reports the size of the borrowed ROM image.
func (c *Cartridge) ROMLen() int { return len(c.rom) }

// ReadSRAM8 / WriteSRAM8 route through the installed save backend.
func (c *Cartridge) ReadSRAM8(addr uint32) byte      { return c.save.Read(addr) }
func (c *Cartridge) WriteSRAM8(addr uint32, v byte) { c.save.Write(addr, v) }
