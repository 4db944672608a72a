package cpu

import "goba/internal/bits"

// DecodeInstructionArm parses a 32-bit ARM instruction word into one of the
// typed instruction structs, resolving decode-table precedence per §4.3:
// Branch&Exchange and Multiply/MultiplyLong/SingleDataSwap/HalfwordTransfer
// are carved out of the generic 00-prefixed Data-Processing space before
// falling back to DataProcessing/PSRTransfer; 10-prefixed words are split
// between Block Data Transfer and Branch; 11-prefixed words are split
// between Software Interrupt and coprocessor/undefined.
func DecodeInstructionArm(instruction uint32) interface{} {
	cond := Condition((instruction >> 28) & 0x0F)

	switch (instruction >> 26) & 0x03 {
	case 0: // 00: Data Processing, Multiply, PSR transfer, BX, swap, halfword
		if (instruction&0x0FFFFFF0) == 0x012FFF10 || (instruction&0x0FFFFFF0) == 0x012FFF30 {
			// BX: Cond 0001 0010 1111 1111 1111 0001 Rm
			// BLX(register) shares the same family with bit 5 set.
			return ARMBranchExchangeInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				Link:           (instruction>>5)&1 != 0,
				Rm:             uint8(instruction & 0x0F),
			}
		}
		if (instruction>>23)&0x1F == 0x02 && (instruction>>20)&0x3 == 0x0 && (instruction>>4)&0xFF == 0x09 {
			// SWP/SWPB: Cond 0001 0B00 Rn Rd 0000 1001 Rm
			return ARMSingleDataSwapInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				Byte:           bits.BitSet(instruction, 22),
				Rn:             uint8((instruction >> 16) & 0x0F),
				Rd:             uint8((instruction >> 12) & 0x0F),
				Rm:             uint8(instruction & 0x0F),
			}
		}
		if (instruction>>22)&0x3F == 0x00 && (instruction>>4)&0xF == 0x9 {
			// Multiply: Cond 0000 00A S Rd Rn Rs 1001 Rm
			return ARMMultiplyInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				A:              bits.BitSet(instruction, 21),
				S:              bits.BitSet(instruction, 20),
				Rd:             uint8((instruction >> 16) & 0x0F),
				Rn:             uint8((instruction >> 12) & 0x0F),
				Rs:             uint8((instruction >> 8) & 0x0F),
				Rm:             uint8(instruction & 0x0F),
			}
		}
		if (instruction>>23)&0x1F == 0x01 && (instruction>>4)&0xF == 0x9 {
			// Multiply Long: Cond 0000 1UAS RdHi RdLo Rs 1001 Rm
			return ARMMultiplyLongInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				Signed:         bits.BitSet(instruction, 22),
				Accumulate:     bits.BitSet(instruction, 21),
				S:              bits.BitSet(instruction, 20),
				RdHi:           uint8((instruction >> 16) & 0x0F),
				RdLo:           uint8((instruction >> 12) & 0x0F),
				Rs:             uint8((instruction >> 8) & 0x0F),
				Rm:             uint8(instruction & 0x0F),
			}
		}
		if (instruction>>25)&0x1 == 0 && (instruction>>7)&0x1 == 1 && (instruction>>4)&0x1 == 1 {
			// Halfword/signed transfer: Cond 000P U1WL Rn Rd Imm/0000 1SH1 Imm/Rm
			immOffset := bits.BitSet(instruction, 22)
			h := ARMHalfwordTransferInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				P:              bits.BitSet(instruction, 24),
				U:              bits.BitSet(instruction, 23),
				W:              bits.BitSet(instruction, 21),
				L:              bits.BitSet(instruction, 20),
				Rn:             uint8((instruction >> 16) & 0x0F),
				Rd:             uint8((instruction >> 12) & 0x0F),
				ImmOffset:      immOffset,
				Signed:         bits.BitSet(instruction, 6),
				Half:           bits.BitSet(instruction, 5),
			}
			if immOffset {
				h.Immediate = uint8(((instruction>>8)&0x0F)<<4 | (instruction & 0x0F))
			} else {
				h.Rm = uint8(instruction & 0x0F)
			}
			return h
		}
		if (instruction>>23)&0x3 == 0x2 && (instruction>>20)&0x1 == 0 && (instruction>>4)&0xFF == 0 {
			// MRS: Cond 0001 0P00 1111 Rd 0000 0000 0000
			return ARMPSRTransferInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				ToSPSR:         bits.BitSet(instruction, 22),
				IsMSR:          false,
				Rd:             uint8((instruction >> 12) & 0x0F),
			}
		}
		if (instruction>>23)&0x3 == 0x2 && (instruction>>20)&0x1 == 1 && (instruction>>12)&0x3FF == 0x28F {
			// MSR: Cond 00I1 0P10 1001 1111 Operand2
			i := bits.BitSet(instruction, 25)
			m := ARMPSRTransferInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				ToSPSR:         bits.BitSet(instruction, 22),
				IsMSR:          true,
				FlagsOnly:      !bits.BitSet(instruction, 16),
				I:              i,
			}
			if i {
				m.Nn = uint8(instruction & 0xFF)
				m.Is = uint8((instruction >> 8) & 0x0F)
			} else {
				m.Rm = uint8(instruction & 0x0F)
			}
			return m
		}

		// Otherwise, it's a Data Processing instruction
		I := bits.BitSet(instruction, 25)
		S := bits.BitSet(instruction, 20)
		Rn := uint8((instruction >> 16) & 0x0F)
		Rd := uint8((instruction >> 12) & 0x0F)
		shiftTypeField := uint8((instruction >> 5) & 0x03)
		R := bits.BitSet(instruction, 4)
		Rm := uint8(instruction & 0x0F)

		var Is uint8
		var Rs uint8
		var Nn uint8

		if !I && !R {
			Is = uint8((instruction >> 7) & 0x1F)
		} else if I {
			Is = uint8((instruction >> 8) & 0x0F)
			Nn = uint8(instruction & 0xFF)
		} else if !I && R {
			Rs = uint8((instruction >> 8) & 0x0F)
		}

		return ARMDataProcessingInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			I:              I,
			Opcode:         ARMDataProcessingOperation((instruction >> 21) & 0x0F),
			S:              S,
			Rn:             Rn,
			Rd:             Rd,
			ShiftType:      ShiftType(shiftTypeField),
			R:              R,
			Is:             Is,
			Rs:             Rs,
			Nn:             Nn,
			Rm:             Rm,
		}
	case 1: // 01: Single Data Transfer
		i := ARMLoadStoreInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			P:              bits.BitSet(instruction, 24),
			U:              bits.BitSet(instruction, 23),
			B:              bits.BitSet(instruction, 22),
			W:              bits.BitSet(instruction, 21),
			L:              bits.BitSet(instruction, 20),
			I:              bits.BitSet(instruction, 25),
			Rn:             uint8((instruction >> 16) & 0x0F),
			Rd:             uint8((instruction >> 12) & 0x0F),
		}
		if i.I {
			i.ShiftType = ShiftType((instruction >> 5) & 0x03)
			i.ShiftAmt = uint8((instruction >> 7) & 0x1F)
			i.Rm = uint8(instruction & 0x0F)
		} else {
			i.Offset12 = instruction & 0x0FFF
		}
		return i
	case 2: // 10: Block Data Transfer (bit25=0, cond 100PUSWL...) or Branch (bit25=1, cond 101L...)
		if bits.BitSet(instruction, 25) {
			offset := instruction & 0x00FFFFFF
			if offset&0x00800000 != 0 {
				offset |= 0xFF000000
			}
			return ARMBranchInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				Link:           bits.BitSet(instruction, 24),
				TargetAddr:     offset << 2,
			}
		}
		return ARMBlockDataTransferInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			P:              bits.BitSet(instruction, 24),
			U:              bits.BitSet(instruction, 23),
			S:              bits.BitSet(instruction, 22),
			W:              bits.BitSet(instruction, 21),
			L:              bits.BitSet(instruction, 20),
			Rn:             uint8((instruction >> 16) & 0x0F),
			RegisterList:   uint16(instruction & 0xFFFF),
		}
	case 3: // 11: Software Interrupt or coprocessor/undefined
		if (instruction>>24)&0x0F == 0x0F {
			return ARMSWIInstruction{
				ARMInstruction: ARMInstruction{Cond: cond},
				Immediate:      instruction & 0x00FFFFFF,
			}
		}
		return ARMControlInstruction{
			ARMInstruction: ARMInstruction{Cond: cond},
			Opcode:         instruction & 0x0FFFFFFF,
		}
	default:
		return ARMControlInstruction{ARMInstruction: ARMInstruction{Cond: cond}, Opcode: instruction}
	}
}
