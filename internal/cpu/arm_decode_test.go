package cpu

import "testing"

func TestDecodeBranchVsBlockDataTransferPrecedence(t *testing.T) {
	// B #0: cond=AL, 101, L=0, offset=0 -> 0xEA000000
	switch DecodeInstructionArm(0xEA000000).(type) {
	case ARMBranchInstruction:
	default:
		t.Fatalf("expected 0xEA000000 to decode as Branch")
	}

	// STMIA R0!, {R1}: cond=AL, 100, P=0 U=1 S=0 W=1 L=0 -> 0xE8A00002
	switch DecodeInstructionArm(0xE8A00002).(type) {
	case ARMBlockDataTransferInstruction:
	default:
		t.Fatalf("expected 0xE8A00002 to decode as Block Data Transfer")
	}
}

func TestDecodeBXPrecedesDataProcessing(t *testing.T) {
	// BX R0: cond=AL, 0001 0010 1111 1111 1111 0001 0000
	inst := DecodeInstructionArm(0xE12FFF10)
	bx, ok := inst.(ARMBranchExchangeInstruction)
	if !ok {
		t.Fatalf("expected BX to decode as ARMBranchExchangeInstruction, got %T", inst)
	}
	if bx.Rm != 0 || bx.Link {
		t.Fatalf("unexpected BX fields: %+v", bx)
	}
}

func TestDecodeSWI(t *testing.T) {
	inst := DecodeInstructionArm(0xEF000001)
	swi, ok := inst.(ARMSWIInstruction)
	if !ok {
		t.Fatalf("expected SWI to decode as ARMSWIInstruction, got %T", inst)
	}
	if swi.Immediate != 1 {
		t.Fatalf("SWI immediate = %#x, want 1", swi.Immediate)
	}
}

func TestDecodeDataProcessingImmediate(t *testing.T) {
	// MOV R0, #1: cond=AL, I=1, opcode=MOV(0xD), S=0, Rn=0, Rd=0, rot=0, imm=1
	word := uint32(0xE3A00001)
	inst, ok := DecodeInstructionArm(word).(ARMDataProcessingInstruction)
	if !ok {
		t.Fatalf("expected MOV to decode as ARMDataProcessingInstruction, got %T", DecodeInstructionArm(word))
	}
	if inst.Opcode != MOV || inst.Nn != 1 || !inst.I {
		t.Fatalf("unexpected decode: %+v", inst)
	}
}
