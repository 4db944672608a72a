package cpu

import (
	"goba/internal/bits"
	"goba/internal/psr"
)

// executeArm decodes and executes one ARM-mode instruction word. A failed
// condition check is a NOP per §4.3, with no pipeline or cycle effect
// beyond the fetch Step() already accounted for.
func (c *CPU) executeArm(instruction uint32) {
	cond := Condition((instruction >> 28) & 0xF)
	if !Eval(cond, c.Registers.CPSR()) {
		return
	}
	switch inst := DecodeInstructionArm(instruction).(type) {
	case ARMBranchExchangeInstruction:
		c.execArmBX(inst)
	case ARMPSRTransferInstruction:
		c.execArmPSRTransfer(inst)
	case ARMSingleDataSwapInstruction:
		c.execArmSWP(inst)
	case ARMMultiplyInstruction:
		c.execArmMultiply(inst)
	case ARMMultiplyLongInstruction:
		c.execArmMultiplyLong(inst)
	case ARMHalfwordTransferInstruction:
		c.execArmHalfwordTransfer(inst)
	case ARMDataProcessingInstruction:
		c.execArmDataProcessing(inst)
	case ARMLoadStoreInstruction:
		c.execArmLoadStore(inst)
	case ARMBranchInstruction:
		c.execArmBranch(inst)
	case ARMBlockDataTransferInstruction:
		c.execArmBlockDataTransfer(inst)
	case ARMSWIInstruction:
		c.TriggerSWI()
	default:
		// Undefined instruction: real hardware vectors to 0x04; modeled
		// here as entry into UND mode like any other exception.
		c.enterException(psr.UND, 0x04, 0)
	}
}

// #############################
// Operand2 / shifter glue
// #############################

// calcOp2 resolves a Data-Processing instruction's second operand and the
// shifter carry-out, covering the immediate-rotate, immediate-shift and
// register-shift encodings of §4.2.
func (c *CPU) calcOp2(inst ARMDataProcessingInstruction) (uint32, bool) {
	carryIn := c.Registers.CPSR().C()
	if inst.I {
		if inst.Is == 0 {
			// A zero rotate leaves the immediate and the carry flag as they
			// are; it is not the ROR #0 (RRX) shifter encoding.
			return uint32(inst.Nn), carryIn
		}
		return Shift(uint32(inst.Nn), ROR, uint32(inst.Is)*2, carryIn)
	}
	rm := c.Registers.Get(uint32(inst.Rm))
	if inst.R {
		amount := c.Registers.Get(uint32(inst.Rs)) & 0xFF
		if amount == 0 {
			return RegisterShiftZero(rm, carryIn)
		}
		return Shift(rm, inst.ShiftType, amount, carryIn)
	}
	if inst.Is == 0 && inst.ShiftType == LSL {
		// LSL #0 is a true no-op, not the #0-encodes-#32 special case.
		return rm, carryIn
	}
	return Shift(rm, inst.ShiftType, uint32(inst.Is), carryIn)
}

func addOverflow(a, b, result uint32) bool {
	return ((a ^ result) & (b ^ result) & 0x80000000) != 0
}

func subOverflow(a, b, result uint32) bool {
	return ((a ^ b) & (a ^ result) & 0x80000000) != 0
}

// #############################
// Data Processing
// #############################

func (c *CPU) execArmDataProcessing(inst ARMDataProcessingInstruction) {
	op2, shifterCarry := c.calcOp2(inst)
	rn := c.Registers.Get(uint32(inst.Rn))
	var result uint32
	var carry, overflow bool
	writesResult := true

	switch inst.Opcode {
	case AND:
		result, carry = rn&op2, shifterCarry
	case EOR:
		result, carry = rn^op2, shifterCarry
	case SUB:
		result = rn - op2
		carry, overflow = rn >= op2, subOverflow(rn, op2, result)
	case RSB:
		result = op2 - rn
		carry, overflow = op2 >= rn, subOverflow(op2, rn, result)
	case ADD:
		wide := uint64(rn) + uint64(op2)
		result = uint32(wide)
		carry, overflow = wide > 0xFFFFFFFF, addOverflow(rn, op2, result)
	case ADC:
		cy := c.carryIn()
		wide := uint64(rn) + uint64(op2) + uint64(cy)
		result = uint32(wide)
		carry, overflow = wide > 0xFFFFFFFF, addOverflow(rn, op2, result)
	case SBC:
		// Implemented the way the ALU actually does it: Rn + NOT(Op2) + C,
		// so carry/overflow fall out of the same adder used by ADC.
		cy := c.carryIn()
		notOp2 := ^op2
		wide := uint64(rn) + uint64(notOp2) + uint64(cy)
		result = uint32(wide)
		carry, overflow = wide > 0xFFFFFFFF, addOverflow(rn, notOp2, result)
	case RSC:
		cy := c.carryIn()
		notRn := ^rn
		wide := uint64(op2) + uint64(notRn) + uint64(cy)
		result = uint32(wide)
		carry, overflow = wide > 0xFFFFFFFF, addOverflow(op2, notRn, result)
	case TST:
		result, carry, writesResult = rn&op2, shifterCarry, false
	case TEQ:
		result, carry, writesResult = rn^op2, shifterCarry, false
	case CMP:
		result = rn - op2
		carry, overflow, writesResult = rn >= op2, subOverflow(rn, op2, result), false
	case CMN:
		wide := uint64(rn) + uint64(op2)
		result = uint32(wide)
		carry, overflow, writesResult = wide > 0xFFFFFFFF, addOverflow(rn, op2, result), false
	case ORR:
		result, carry = rn|op2, shifterCarry
	case MOV:
		result, carry = op2, shifterCarry
	case BIC:
		result, carry = rn &^ op2, shifterCarry
	case MVN:
		result, carry = ^op2, shifterCarry
	}

	if writesResult {
		c.Registers.Set(uint32(inst.Rd), result)
		if inst.Rd == 15 {
			c.Pipeline.Flush()
			if inst.S {
				c.Registers.RestoreCPSR()
			}
		}
	}
	// S with Rd=15 restores CPSR from SPSR wholesale (handled above) instead
	// of setting individual flags from the ALU result.
	if inst.S && inst.Rd != 15 {
		switch inst.Opcode {
		case AND, EOR, ORR, MOV, BIC, MVN, TST, TEQ:
			c.setFlags(result, carry, c.Registers.CPSR().V())
		default:
			c.setFlags(result, carry, overflow)
		}
	}
}

// #############################
// PSR Transfer (MRS/MSR)
// #############################

func (c *CPU) execArmPSRTransfer(inst ARMPSRTransferInstruction) {
	if !inst.IsMSR {
		var src psr.PSR
		if inst.ToSPSR {
			src = c.Registers.SPSR()
		} else {
			src = c.Registers.CPSR()
		}
		c.Registers.Set(uint32(inst.Rd), src.ToU32())
		return
	}

	var operand uint32
	if inst.I {
		operand = bits.RotateRight32(uint32(inst.Nn), uint(inst.Is)*2)
	} else {
		operand = c.Registers.Get(uint32(inst.Rm))
	}

	if inst.ToSPSR {
		spsr := c.Registers.SPSR()
		if inst.FlagsOnly {
			spsr.SetFlagBits(operand)
		} else {
			spsr = psr.FromU32(operand)
		}
		c.Registers.SetSPSR(spsr)
		return
	}
	cpsr := c.Registers.CPSR()
	if inst.FlagsOnly {
		cpsr.SetFlagBits(operand)
		c.Registers.SetCPSR(cpsr)
		return
	}
	// A full MSR to CPSR overwrites the live status register directly,
	// including the mode field — unlike exception entry, it never banks
	// the outgoing value into any mode's SPSR.
	c.Registers.SetCPSR(psr.FromU32(operand))
}

// #############################
// Multiply / Multiply-Long
// #############################

func (c *CPU) execArmMultiply(inst ARMMultiplyInstruction) {
	rm := c.Registers.Get(uint32(inst.Rm))
	rs := c.Registers.Get(uint32(inst.Rs))
	result := rm * rs
	if inst.A {
		result += c.Registers.Get(uint32(inst.Rn))
	}
	c.Registers.Set(uint32(inst.Rd), result)
	if inst.S {
		cpsr := c.Registers.CPSR()
		cpsr.SetNZ(result)
		c.Registers.SetCPSR(cpsr)
	}
}

func (c *CPU) execArmMultiplyLong(inst ARMMultiplyLongInstruction) {
	rm := c.Registers.Get(uint32(inst.Rm))
	rs := c.Registers.Get(uint32(inst.Rs))
	var result uint64
	if inst.Signed {
		result = uint64(int64(int32(rm)) * int64(int32(rs)))
	} else {
		result = uint64(rm) * uint64(rs)
	}
	if inst.Accumulate {
		hi := uint64(c.Registers.Get(uint32(inst.RdHi)))
		lo := uint64(c.Registers.Get(uint32(inst.RdLo)))
		result += (hi << 32) | lo
	}
	c.Registers.Set(uint32(inst.RdLo), uint32(result))
	c.Registers.Set(uint32(inst.RdHi), uint32(result>>32))
	if inst.S {
		cpsr := c.Registers.CPSR()
		cpsr.SetN(result&0x8000000000000000 != 0)
		cpsr.SetZ(result == 0)
		c.Registers.SetCPSR(cpsr)
	}
}

// #############################
// Single Data Swap
// #############################

func (c *CPU) execArmSWP(inst ARMSingleDataSwapInstruction) {
	addr := c.Registers.Get(uint32(inst.Rn))
	if inst.Byte {
		old := c.Bus.Read8(addr)
		c.Bus.Write8(addr, uint8(c.Registers.Get(uint32(inst.Rm))))
		c.Registers.Set(uint32(inst.Rd), uint32(old))
	} else {
		old := c.Bus.Read32(addr)
		c.Bus.Write32(addr, c.Registers.Get(uint32(inst.Rm)))
		c.Registers.Set(uint32(inst.Rd), old)
	}
}

// #############################
// Branch / Branch-Exchange
// #############################

func (c *CPU) execArmBranch(inst ARMBranchInstruction) {
	// PC already points one instruction past the branch word (the Step
	// loop advanced it by 4 before dispatch); the offset is defined
	// relative to (branch address + 8), i.e. the current PC value + 4.
	signed := int32(inst.TargetAddr)
	if inst.TargetAddr&0x02000000 != 0 {
		signed = int32(inst.TargetAddr | 0xFC000000)
	}
	current := c.Registers.PC()
	target := uint32(int32(current+4) + signed)
	if inst.Link {
		c.Registers.Set(14, current)
	}
	c.Registers.SetPC(target)
	c.Pipeline.Flush()
}

func (c *CPU) execArmBX(inst ARMBranchExchangeInstruction) {
	target := c.Registers.Get(uint32(inst.Rm))
	if inst.Link {
		c.Registers.Set(14, c.Registers.PC())
	}
	cpsr := c.Registers.CPSR()
	cpsr.SetT(target&1 != 0)
	c.Registers.SetCPSR(cpsr)
	if cpsr.T() {
		c.Registers.SetPC(target &^ 1)
	} else {
		c.Registers.SetPC(target &^ 3)
	}
	c.Pipeline.Flush()
}

// #############################
// Single Data Transfer (LDR/STR/LDRB/STRB)
// #############################

func (c *CPU) execArmLoadStore(inst ARMLoadStoreInstruction) {
	base := c.Registers.Get(uint32(inst.Rn))
	var offset uint32
	if inst.I {
		rm := c.Registers.Get(uint32(inst.Rm))
		offset, _ = Shift(rm, inst.ShiftType, uint32(inst.ShiftAmt), c.Registers.CPSR().C())
	} else {
		offset = inst.Offset12
	}
	signedOffset := offset
	if !inst.U {
		signedOffset = ^offset + 1
	}

	addr := base
	if inst.P {
		addr = base + signedOffset
	}

	if inst.L {
		var val uint32
		if inst.B {
			val = uint32(c.Bus.Read8(addr))
		} else {
			val = c.Bus.Read32(addr)
		}
		c.Registers.Set(uint32(inst.Rd), val)
		if inst.Rd == 15 {
			// §4.3.5 interworking: bit 0 of a value loaded into R15 selects
			// THUMB (set) or ARM (clear) state and is masked off the
			// branch target.
			cpsr := c.Registers.CPSR()
			cpsr.SetT(val&1 != 0)
			c.Registers.SetCPSR(cpsr)
			if cpsr.T() {
				c.Registers.SetPC(val &^ 1)
			} else {
				c.Registers.SetPC(val &^ 3)
			}
			c.Pipeline.Flush()
		}
	} else {
		val := c.Registers.Get(uint32(inst.Rd))
		if inst.Rd == 15 {
			val += 8 // STR PC reads as current instruction address + 12
		}
		if inst.B {
			c.Bus.Write8(addr, uint8(val))
		} else {
			c.Bus.Write32(addr, val)
		}
	}

	if inst.W || !inst.P {
		finalAddr := base + signedOffset
		if inst.P {
			finalAddr = addr
		}
		c.Registers.Set(uint32(inst.Rn), finalAddr)
	}
}

// #############################
// Halfword and signed transfers (LDRH/STRH/LDRSB/LDRSH)
// #############################

func (c *CPU) execArmHalfwordTransfer(inst ARMHalfwordTransferInstruction) {
	base := c.Registers.Get(uint32(inst.Rn))
	var offset uint32
	if inst.ImmOffset {
		offset = uint32(inst.Immediate)
	} else {
		offset = c.Registers.Get(uint32(inst.Rm))
	}
	if !inst.U {
		offset = ^offset + 1
	}

	addr := base
	if inst.P {
		addr = base + offset
	}

	if inst.L {
		var val uint32
		switch {
		case inst.Signed && !inst.Half: // LDRSB
			val = uint32(bits.SignExtend(uint32(c.Bus.Read8(addr)), 8))
		case inst.Signed && inst.Half: // LDRSH
			val = uint32(bits.SignExtend(uint32(c.Bus.Read16(addr)), 16))
		default: // LDRH
			val = uint32(c.Bus.Read16(addr))
		}
		c.Registers.Set(uint32(inst.Rd), val)
	} else {
		// STRH only; S=1 encodings are undefined for stores.
		c.Bus.Write16(addr, uint16(c.Registers.Get(uint32(inst.Rd))))
	}

	if inst.W || !inst.P {
		finalAddr := base + offset
		if inst.P {
			finalAddr = addr
		}
		c.Registers.Set(uint32(inst.Rn), finalAddr)
	}
}

// #############################
// Block Data Transfer (LDM/STM)
// #############################

func (c *CPU) execArmBlockDataTransfer(inst ARMBlockDataTransferInstruction) {
	base := c.Registers.Get(uint32(inst.Rn))
	numRegisters := 0
	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 != 0 {
			numRegisters++
		}
	}
	if numRegisters == 0 {
		return // degenerate empty-list encoding; nothing to transfer
	}

	// forceUserBank: the S-bit on a non-PC LDM/STM operates the banked USR
	// registers regardless of current mode (§4.3.5's "force USR bank" rule).
	forceUserBank := inst.S && !(inst.L && (inst.RegisterList&(1<<15)) != 0)
	exceptionReturn := inst.L && inst.S && (inst.RegisterList&(1<<15)) != 0

	start := base
	if !inst.U {
		start = base - uint32(numRegisters)*4
	}
	if inst.U == inst.P {
		start += 4
	}

	addr := start
	isFirst := true
	for i := 0; i < 16; i++ {
		if (inst.RegisterList>>i)&1 == 0 {
			continue
		}
		if inst.L {
			val := c.Bus.Read32(addr)
			if i == 15 {
				if exceptionReturn {
					// CPSR (and its T bit) comes back from SPSR below, not
					// from the loaded value's bit 0.
					c.Registers.SetPC(val &^ 3)
				} else {
					// §4.3.5 interworking: bit 0 of a value loaded into
					// R15 selects THUMB (set) or ARM (clear) state and is
					// masked off the branch target.
					cpsr := c.Registers.CPSR()
					cpsr.SetT(val&1 != 0)
					c.Registers.SetCPSR(cpsr)
					if cpsr.T() {
						c.Registers.SetPC(val &^ 1)
					} else {
						c.Registers.SetPC(val &^ 3)
					}
				}
				c.Pipeline.Flush()
			} else if forceUserBank {
				c.Registers.UserBankSet(uint32(i), val)
			} else {
				c.Registers.Set(uint32(i), val)
			}
		} else {
			var val uint32
			if forceUserBank {
				val = c.Registers.UserBankGet(uint32(i))
			} else {
				val = c.Registers.Get(uint32(i))
			}
			if i == int(inst.Rn) && !isFirst {
				// STM with the base register not first in the list stores
				// the already-written-back value (§9 resolved semantics).
				if inst.U {
					val = base + uint32(numRegisters)*4
				} else {
					val = base - uint32(numRegisters)*4
				}
			}
			if i == 15 {
				val = c.Registers.PC() + 4
			}
			c.Bus.Write32(addr, val)
		}
		addr += 4
		isFirst = false
	}

	// Write-back is suppressed on LDM when the base register was itself in
	// the load list: the loaded value already overwrote it above, and that
	// loaded value — not the incremented address — is what the register
	// keeps (§9 resolved semantics, concrete scenario 2).
	baseWasLoaded := inst.L && (inst.RegisterList>>inst.Rn)&1 != 0
	if inst.W && !baseWasLoaded {
		if inst.U {
			c.Registers.Set(uint32(inst.Rn), base+uint32(numRegisters)*4)
		} else {
			c.Registers.Set(uint32(inst.Rn), base-uint32(numRegisters)*4)
		}
	}
	if exceptionReturn {
		c.Registers.RestoreCPSR()
	}
}
