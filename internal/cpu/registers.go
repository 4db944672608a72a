// Package cpu holds the ARM7TDMI register file, the condition-code gate and
// the barrel shifter: the pieces the decoder and executors share regardless
// of which instruction set is active.
package cpu

import (
	"fmt"

	"goba/internal/psr"
)

// Registers is the 16-slot visible file plus every banked shadow, keyed by
// mode at access time rather than interleaved into the main array (per the
// "Banked registers" design note: one always-present array, side-arrays for
// the banked subsets).
type Registers struct {
	r     [16]uint32 // R0..R15 as seen in USR/SYS mode (R8..R14 double as the common cell)
	rFIQ  [5]uint32  // R8_fiq..R12_fiq
	spFIQ uint32
	lrFIQ uint32
	spIRQ uint32
	lrIRQ uint32
	spSVC uint32
	lrSVC uint32
	spABT uint32
	lrABT uint32
	spUND uint32
	lrUND uint32

	cpsr   psr.PSR
	banked psr.Bank
}

// Reset puts the register file into the power-on state defined in §3's
// Lifecycle: zeroed registers, CPSR in SVC mode with I=F=1, ARM state, PC=0.
func (r *Registers) Reset() {
	*r = Registers{}
	r.cpsr.SetMode(psr.SVC)
	r.cpsr.SetI(true)
	r.cpsr.SetF(true)
}

// Get reads visible register i (0..15), resolving FIQ/IRQ/SVC/ABT/UND
// banking per §4.1.
func (r *Registers) Get(i uint32) uint32 {
	if i == 15 {
		return r.r[15]
	}
	mode := r.cpsr.Mode()
	switch {
	case i >= 8 && i <= 12 && mode == psr.FIQ:
		return r.rFIQ[i-8]
	case i == 13:
		return r.bankedSP(mode)
	case i == 14:
		return r.bankedLR(mode)
	default:
		return r.r[i]
	}
}

// Set writes visible register i (0..15). Writing R15 never post-masks
// alignment; callers that require alignment (THUMB PC-relative loads,
// branch targets) must mask explicitly.
func (r *Registers) Set(i uint32, v uint32) {
	if i == 15 {
		r.r[15] = v
		return
	}
	mode := r.cpsr.Mode()
	switch {
	case i >= 8 && i <= 12 && mode == psr.FIQ:
		r.rFIQ[i-8] = v
	case i == 13:
		r.setBankedSP(mode, v)
	case i == 14:
		r.setBankedLR(mode, v)
	default:
		r.r[i] = v
	}
}

func (r *Registers) bankedSP(mode psr.Mode) uint32 {
	switch mode {
	case psr.FIQ:
		return r.spFIQ
	case psr.IRQ:
		return r.spIRQ
	case psr.SVC:
		return r.spSVC
	case psr.ABT:
		return r.spABT
	case psr.UND:
		return r.spUND
	default: // USR, SYS
		return r.r[13]
	}
}

func (r *Registers) setBankedSP(mode psr.Mode, v uint32) {
	switch mode {
	case psr.FIQ:
		r.spFIQ = v
	case psr.IRQ:
		r.spIRQ = v
	case psr.SVC:
		r.spSVC = v
	case psr.ABT:
		r.spABT = v
	case psr.UND:
		r.spUND = v
	default:
		r.r[13] = v
	}
}

func (r *Registers) bankedLR(mode psr.Mode) uint32 {
	switch mode {
	case psr.FIQ:
		return r.lrFIQ
	case psr.IRQ:
		return r.lrIRQ
	case psr.SVC:
		return r.lrSVC
	case psr.ABT:
		return r.lrABT
	case psr.UND:
		return r.lrUND
	default:
		return r.r[14]
	}
}

func (r *Registers) setBankedLR(mode psr.Mode, v uint32) {
	switch mode {
	case psr.FIQ:
		r.lrFIQ = v
	case psr.IRQ:
		r.lrIRQ = v
	case psr.SVC:
		r.lrSVC = v
	case psr.ABT:
		r.lrABT = v
	case psr.UND:
		r.lrUND = v
	default:
		r.r[14] = v
	}
}

// PC returns R15 directly (no prefetch adjustment).
func (r *Registers) PC() uint32 { return r.r[15] }

// SetPC writes R15 directly.
func (r *Registers) SetPC(v uint32) { r.r[15] = v }

// CPSR returns the current program status register.
func (r *Registers) CPSR() psr.PSR { return r.cpsr }

// SetCPSR overwrites the current program status register wholesale, used by
// MSR and exception return.
func (r *Registers) SetCPSR(p psr.PSR) { r.cpsr = p }

// Mode returns the current, possibly-invalid, mode field of CPSR.
func (r *Registers) Mode() psr.Mode { return r.cpsr.Mode() }

// ChangeMode atomically saves CPSR into the target mode's SPSR (a no-op for
// USR/SYS, which have none) and switches CPSR.mode to newMode. Per §4.1.
func (r *Registers) ChangeMode(newMode psr.Mode) {
	if psr.HasSPSR(newMode) {
		r.banked.Set(newMode, r.cpsr)
	}
	r.cpsr.SetMode(newMode)
}

// RestoreCPSR copies the current mode's SPSR back over CPSR, used on
// exception return (DataProc S+Rd=15, LDM with S and PC in list, or an
// explicit MOVS PC, LR-style return).
func (r *Registers) RestoreCPSR() {
	r.cpsr = r.banked.Get(r.cpsr.Mode())
}

// SPSR returns the SPSR banked for the current mode (zero PSR for USR/SYS).
func (r *Registers) SPSR() psr.PSR { return r.banked.Get(r.cpsr.Mode()) }

// SetSPSR writes the SPSR banked for the current mode (no-op for USR/SYS).
func (r *Registers) SetSPSR(p psr.PSR) { r.banked.Set(r.cpsr.Mode(), p) }

// UserBankGet/UserBankSet read/write the USR-bank physical registers
// regardless of current mode, used by the S-bit block-transfer rule (the
// "force USR bank" LDM/STM variant) in §4.3.5.
func (r *Registers) UserBankGet(i uint32) uint32 {
	return r.r[i]
}

func (r *Registers) UserBankSet(i uint32, v uint32) {
	r.r[i] = v
}

// Snapshot captures R0..R15 as currently visible, for a CoreError report.
func (r *Registers) Snapshot() [16]uint32 {
	var s [16]uint32
	for i := uint32(0); i < 16; i++ {
		s[i] = r.Get(i)
	}
	return s
}

func (r *Registers) String() string {
	return fmt.Sprintf(
		"R0=%08X R1=%08X R2=%08X R3=%08X R4=%08X R5=%08X R6=%08X R7=%08X\n"+
			"R8=%08X R9=%08X R10=%08X R11=%08X R12=%08X SP=%08X LR=%08X PC=%08X\n"+
			"CPSR=%08X (%s %s N:%t Z:%t C:%t V:%t I:%t F:%t)",
		r.Get(0), r.Get(1), r.Get(2), r.Get(3), r.Get(4), r.Get(5), r.Get(6), r.Get(7),
		r.Get(8), r.Get(9), r.Get(10), r.Get(11), r.Get(12), r.Get(13), r.Get(14), r.Get(15),
		r.cpsr.ToU32(), r.cpsr.Mode(), thumbOrArm(r.cpsr.T()),
		r.cpsr.N(), r.cpsr.Z(), r.cpsr.C(), r.cpsr.V(), r.cpsr.I(), r.cpsr.F(),
	)
}

func thumbOrArm(t bool) string {
	if t {
		return "THUMB"
	}
	return "ARM"
}
