package cpu

import (
	"testing"

	"goba/internal/pipeline"
	"goba/internal/psr"
)

// flatBus is a byte-addressable map standing in for the real bus in these
// executor-level scenario tests (§8's concrete scenarios 1, 2, 4, 5, plus
// BX in scenario 3).
type flatBus struct{ mem map[uint32]byte }

func newFlatBus() *flatBus { return &flatBus{mem: make(map[uint32]byte)} }

func (b *flatBus) Read8(addr uint32) uint8  { return b.mem[addr] }
func (b *flatBus) Write8(addr uint32, v uint8) { b.mem[addr] = v }
func (b *flatBus) Read16(addr uint32) uint16 {
	return uint16(b.Read8(addr)) | uint16(b.Read8(addr+1))<<8
}
func (b *flatBus) Write16(addr uint32, v uint16) {
	b.Write8(addr, uint8(v))
	b.Write8(addr+1, uint8(v>>8))
}
func (b *flatBus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}
func (b *flatBus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}

func newTestCPU() *CPU {
	c := &CPU{Bus: newFlatBus(), Pipeline: pipeline.New()}
	c.Registers.Reset()
	c.Registers.SetCPSR(psr.FromU32(0x1F)) // SYS mode, ARM, no flags
	return c
}

// Scenario 1: post-increment-up STM, base not in the list.
func TestScenarioSTMPostIncrementUp(t *testing.T) {
	c := newTestCPU()
	c.Registers.Set(0, 0x03000000)
	c.Registers.Set(1, 0x123)
	c.Registers.Set(5, 0x321)
	c.Registers.Set(7, 0xABC)

	c.execArmBlockDataTransfer(ARMBlockDataTransferInstruction{
		ARMInstruction: ARMInstruction{Cond: AL},
		P:              false, U: true, W: true, L: false,
		Rn:           0,
		RegisterList: (1 << 1) | (1 << 5) | (1 << 7),
	})

	bus := c.Bus.(*flatBus)
	if bus.Read32(0x03000000) != 0x123 {
		t.Fatalf("MEM[0x03000000] = %#x, want 0x123", bus.Read32(0x03000000))
	}
	if bus.Read32(0x03000004) != 0x321 {
		t.Fatalf("MEM[0x03000004] = %#x, want 0x321", bus.Read32(0x03000004))
	}
	if bus.Read32(0x03000008) != 0xABC {
		t.Fatalf("MEM[0x03000008] = %#x, want 0xABC", bus.Read32(0x03000008))
	}
	if got := c.Registers.Get(0); got != 0x0300000C {
		t.Fatalf("R0 = %#x, want 0x0300000C", got)
	}
}

// Scenario 2: LDM with the base register first in the list suppresses write-back.
func TestScenarioLDMBaseInListSuppressesWriteback(t *testing.T) {
	c := newTestCPU()
	c.Registers.Set(0, 0x03000000)
	bus := c.Bus.(*flatBus)
	bus.Write32(0x03000000, 0xDEF)
	bus.Write32(0x03000004, 0xFFF123)

	c.execArmBlockDataTransfer(ARMBlockDataTransferInstruction{
		ARMInstruction: ARMInstruction{Cond: AL},
		P:              false, U: true, W: true, L: true,
		Rn:           0,
		RegisterList: 0b11,
	})

	if got := c.Registers.Get(0); got != 0xDEF {
		t.Fatalf("R0 = %#x, want 0xDEF (write-back suppressed, base was loaded)", got)
	}
	if got := c.Registers.Get(1); got != 0xFFF123 {
		t.Fatalf("R1 = %#x, want 0xFFF123", got)
	}
}

// Scenario 3: BX with bit 0 set switches to THUMB and masks the target.
func TestScenarioBXSetsThumbAndMasksBit0(t *testing.T) {
	c := newTestCPU()
	c.Registers.Set(3, 0x1123)
	c.execArmBX(ARMBranchExchangeInstruction{ARMInstruction: ARMInstruction{Cond: AL}, Rm: 3})

	if got := c.Registers.PC(); got != 0x1122 {
		t.Fatalf("PC = %#x, want 0x1122", got)
	}
	if !c.Registers.CPSR().T() {
		t.Fatalf("expected CPSR.T set after BX to an odd target")
	}
}

// Scenario 5 (carry-in semantics): SBC computes Rn - Op2 - NOT(C), so a set
// carry-in (C=1, i.e. "no borrow requested") behaves like a plain subtract.
func TestScenarioSBCCarryIn(t *testing.T) {
	c := newTestCPU()
	c.Registers.Set(2, 0x00000005)
	cpsr := c.Registers.CPSR()
	cpsr.SetC(true) // carry-in = 1: no extra borrow
	c.Registers.SetCPSR(cpsr)

	c.execArmDataProcessing(ARMDataProcessingInstruction{
		ARMInstruction: ARMInstruction{Cond: AL},
		Opcode:         SBC,
		S:              true,
		Rn:             2,
		Rd:             3,
		I:              true,
		Nn:             0x03,
	})
	if got := c.Registers.Get(3); got != 2 {
		t.Fatalf("R3 = %#x, want 2 (5-3 with C=1)", got)
	}
	if !c.Registers.CPSR().C() {
		t.Fatalf("expected carry set (no borrow) after 5-3")
	}

	// Now with carry-in clear (a pending borrow from a prior SBC in a
	// multi-word chain), the same subtraction loses one more.
	c.Registers.Set(2, 0x00000005)
	cpsr = c.Registers.CPSR()
	cpsr.SetC(false)
	c.Registers.SetCPSR(cpsr)
	c.execArmDataProcessing(ARMDataProcessingInstruction{
		ARMInstruction: ARMInstruction{Cond: AL},
		Opcode:         SBC,
		S:              true,
		Rn:             2,
		Rd:             3,
		I:              true,
		Nn:             0x03,
	})
	if got := c.Registers.Get(3); got != 1 {
		t.Fatalf("R3 = %#x, want 1 (5-3-1 with C=0)", got)
	}
}

// Scenario 4: branch with link stores the correct return address. The
// spec's "PC=64,000,000" is conventional ARM PC (instruction address+8);
// by the time execArmBranch runs, Step() has only applied the first +4 of
// that offset, so the register holds instruction address+4.
func TestScenarioBranchWithLink(t *testing.T) {
	c := newTestCPU()
	c.Registers.SetPC(64_000_000 - 4)
	offset := int32(-100)
	c.execArmBranch(ARMBranchInstruction{
		ARMInstruction: ARMInstruction{Cond: AL},
		Link:           true,
		TargetAddr:     uint32(offset),
	})
	if got := c.Registers.PC(); got != 63_999_900 {
		t.Fatalf("PC = %d, want 63999900", got)
	}
	if got := c.Registers.Get(14); got != 63_999_996 {
		t.Fatalf("LR = %d, want 63999996", got)
	}
}
