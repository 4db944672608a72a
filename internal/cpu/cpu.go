// Package cpu implements C5-C9: the ARM7TDMI register file, barrel
// shifter, condition evaluation, and the ARM/THUMB decode-and-execute core.
package cpu

import (
	"fmt"

	"goba/internal/coreerr"
	"goba/internal/pipeline"
	"goba/internal/psr"
	"goba/util/convert"
	"goba/util/dbg"
)

// Bus is the narrow memory-access seam the CPU needs: byte/halfword/word
// read and write at any address in the 32-bit space. internal/bus.Bus
// satisfies this structurally.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, v uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// IRQLine lets the CPU ask whether an interrupt is pending without importing
// the interrupt controller package (avoids an import cycle since the
// controller needs to reach into the CPU to dispatch).
type IRQLine interface {
	Pending() bool
}

// CPU is the ARM7TDMI core: registers, pipeline bookkeeping, and the
// decode/execute dispatch. It owns no memory; all access goes through Bus.
type CPU struct {
	Registers Registers
	Bus       Bus
	Pipeline  *pipeline.Pipeline
	IRQ       IRQLine
	Halted    bool
	cycles    uint64
}

// New constructs a CPU wired to bus, reset to the BIOS entry point in SVC
// mode with IRQ/FIQ disabled, matching real hardware reset state.
func New(bus Bus) *CPU {
	c := &CPU{Bus: bus, Pipeline: pipeline.New()}
	c.Reset()
	return c
}

func (c *CPU) Reset() {
	c.Registers.Reset()
	c.Registers.SetPC(0x00000000)
	c.Registers.ChangeMode(psr.SVC)
	cpsr := c.Registers.CPSR()
	cpsr.SetI(true)
	cpsr.SetF(true)
	cpsr.SetT(false)
	c.Registers.SetCPSR(cpsr)
	c.Pipeline.Flush()
	c.Halted = false
}

// Cycles reports the running cycle count (simplified: one unit per
// retired instruction; DMA and wait-state accounting layer on top in the
// wall-clock driver).
func (c *CPU) Cycles() uint64 { return c.cycles }

// Step executes exactly one instruction (or services one pending IRQ),
// driving the fetch stage into the C10 pipeline ring as it goes, and
// returns the number of cycles it took plus whether the pipeline was
// flushed (branch, mode switch, or exception entry/return — Testable
// Property 7), matching §6's step() return contract.
func (c *CPU) Step() (cycles uint64, flushed bool) {
	genBefore := c.Pipeline.FlushGen()
	defer func() {
		flushed = c.Pipeline.FlushGen() != genBefore
	}()

	if !c.Registers.CPSR().Mode().Valid() {
		coreerr.Raise(coreerr.InvalidMode, "CPSR mode field is not one of the seven defined modes",
			c.Registers.PC(), 0, c.Registers.Snapshot())
	}
	if c.IRQ != nil && c.IRQ.Pending() && !c.Registers.CPSR().I() {
		// LR_irq = address of the next instruction to fetch, +4 to account
		// for the 2-stage pipeline compensation ARM7TDMI applies on IRQ entry.
		c.enterException(psr.IRQ, 0x18, 4)
		c.cycles++
		cycles = 1
		return
	}
	if c.Halted {
		c.cycles++
		cycles = 1
		return
	}

	pc := c.Registers.PC()
	if c.Registers.CPSR().T() {
		instr := c.Bus.Read16(pc)
		c.Registers.SetPC(pc + 2)
		c.Pipeline.Advance(uint32(instr), pc, true)
		c.executeThumb(instr)
	} else {
		instr := c.Bus.Read32(pc)
		c.Registers.SetPC(pc + 4)
		c.Pipeline.Advance(instr, pc, false)
		c.executeArm(instr)
	}
	c.cycles++
	cycles = 1
	return
}

// TriggerSWI performs the SWI exception entry sequence (§4.8): switch to
// SVC mode, bank LR/SPSR, disable IRQ, jump to the fixed vector. Called
// from within executeArm/executeThumb after PC already points at the
// instruction following the SWI, so no LR adjustment is needed.
func (c *CPU) TriggerSWI() {
	c.enterException(psr.SVC, 0x08, 0)
}

// enterException performs a generic exception entry (§4.8): bank the
// current CPSR into the target mode's SPSR, switch mode, set LR to the
// return address, force ARM state, disable IRQ, and flush the pipeline
// into the fixed vector.
func (c *CPU) enterException(mode psr.Mode, vector uint32, lrAdjust uint32) {
	retAddr := c.Registers.PC()
	c.Registers.ChangeMode(mode) // also banks the outgoing CPSR into the new mode's SPSR
	c.Registers.Set(14, retAddr+lrAdjust)
	newCPSR := c.Registers.CPSR()
	newCPSR.SetT(false)
	newCPSR.SetI(true)
	c.Registers.SetCPSR(newCPSR)
	c.Registers.SetPC(vector)
	c.Pipeline.Flush()
}

func (c *CPU) setFlags(result uint32, carryOut bool, overflow bool) {
	cpsr := c.Registers.CPSR()
	cpsr.SetNZ(result)
	cpsr.SetC(carryOut)
	cpsr.SetV(overflow)
	c.Registers.SetCPSR(cpsr)
}

func (c *CPU) carryIn() uint32 {
	return uint32(convert.BoolToInt(c.Registers.CPSR().C()))
}

func (c *CPU) traceArm(instr uint32, mnemonic string, args ...interface{}) {
	dbg.Printf("ARM %08X: %s %s", instr, mnemonic, fmt.Sprint(args...))
}
