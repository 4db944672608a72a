// Package psr models the ARM7TDMI Program Status Register: the 32-bit
// condition/mode word and the parsed view kept in sync with it.
package psr

// Mode is one of the seven defined CPSR.mode values.
type Mode uint32

const (
	USR Mode = 0x10
	FIQ Mode = 0x11
	IRQ Mode = 0x12
	SVC Mode = 0x13
	ABT Mode = 0x17
	UND Mode = 0x1B
	SYS Mode = 0x1F
)

// Valid reports whether m is one of the seven defined modes.
func (m Mode) Valid() bool {
	switch m {
	case USR, FIQ, IRQ, SVC, ABT, UND, SYS:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	switch m {
	case USR:
		return "USR"
	case FIQ:
		return "FIQ"
	case IRQ:
		return "IRQ"
	case SVC:
		return "SVC"
	case ABT:
		return "ABT"
	case UND:
		return "UND"
	case SYS:
		return "SYS"
	default:
		return "INVALID"
	}
}

const (
	bitN = 31
	bitZ = 30
	bitC = 29
	bitV = 28
	bitI = 7
	bitF = 6
	bitT = 5
)

// PSR is a 32-bit status word, kept round-trippable to u32 bit-for-bit on
// its writable subset (Testable Property 1).
type PSR struct {
	raw uint32
}

// FromU32 builds a PSR from its packed representation.
func FromU32(v uint32) PSR { return PSR{raw: v} }

// ToU32 packs the PSR back to its 32-bit representation.
func (p PSR) ToU32() uint32 { return p.raw }

func (p PSR) bit(n uint) bool { return (p.raw>>n)&1 != 0 }

func (p *PSR) setBit(n uint, v bool) {
	if v {
		p.raw |= 1 << n
	} else {
		p.raw &^= 1 << n
	}
}

func (p PSR) N() bool { return p.bit(bitN) }
func (p PSR) Z() bool { return p.bit(bitZ) }
func (p PSR) C() bool { return p.bit(bitC) }
func (p PSR) V() bool { return p.bit(bitV) }
func (p PSR) I() bool { return p.bit(bitI) }
func (p PSR) F() bool { return p.bit(bitF) }
func (p PSR) T() bool { return p.bit(bitT) }

func (p *PSR) SetN(v bool) { p.setBit(bitN, v) }
func (p *PSR) SetZ(v bool) { p.setBit(bitZ, v) }
func (p *PSR) SetC(v bool) { p.setBit(bitC, v) }
func (p *PSR) SetV(v bool) { p.setBit(bitV, v) }
func (p *PSR) SetI(v bool) { p.setBit(bitI, v) }
func (p *PSR) SetF(v bool) { p.setBit(bitF, v) }
func (p *PSR) SetT(v bool) { p.setBit(bitT, v) }

// SetNZ sets N and Z from a result value in one call; used by every
// flag-setting data-processing executor.
func (p *PSR) SetNZ(result uint32) {
	p.SetN(result&0x80000000 != 0)
	p.SetZ(result == 0)
}

// Mode returns the raw 5-bit mode field, which may be an invalid pattern;
// callers must check Valid() before relying on the decoded Mode.
func (p PSR) Mode() Mode { return Mode(p.raw & 0x1F) }

// SetMode writes the 5-bit mode field, preserving every other bit.
func (p *PSR) SetMode(m Mode) {
	p.raw = (p.raw &^ 0x1F) | uint32(m)
}

// SetFlagBits writes only bits 31..24 (the MSR "flags-only" variant).
func (p *PSR) SetFlagBits(v uint32) {
	p.raw = (p.raw & 0x00FFFFFF) | (v & 0xFF000000)
}

// Bank holds the five saved-program-status registers; USR and SYS have no
// SPSR of their own.
type Bank struct {
	FIQ, IRQ, SVC, ABT, UND PSR
}

// Get returns the SPSR for mode m, or the zero PSR if m has none.
func (b *Bank) Get(m Mode) PSR {
	switch m {
	case FIQ:
		return b.FIQ
	case IRQ:
		return b.IRQ
	case SVC:
		return b.SVC
	case ABT:
		return b.ABT
	case UND:
		return b.UND
	default:
		return PSR{}
	}
}

// Set writes the SPSR for mode m; a no-op for USR/SYS.
func (b *Bank) Set(m Mode, v PSR) {
	switch m {
	case FIQ:
		b.FIQ = v
	case IRQ:
		b.IRQ = v
	case SVC:
		b.SVC = v
	case ABT:
		b.ABT = v
	case UND:
		b.UND = v
	}
}

// HasSPSR reports whether mode m banks a SPSR at all.
func HasSPSR(m Mode) bool {
	switch m {
	case USR, SYS:
		return false
	default:
		return true
	}
}
