package cpu

import (
	"testing"

	"goba/internal/psr"
)

func TestShiftLSL(t *testing.T) {
	cases := []struct {
		value, amount uint32
		carryIn       bool
		result        uint32
		carryOut      bool
	}{
		{0x1, 0, true, 0x1, true},
		{0x80000001, 1, false, 0x2, true},
		{0x1, 32, false, 0, true},
		{0x2, 32, false, 0, false},
		{0x1, 33, true, 0, false},
	}
	for _, c := range cases {
		result, carryOut := Shift(c.value, LSL, c.amount, c.carryIn)
		if result != c.result || carryOut != c.carryOut {
			t.Errorf("LSL(%#x, %d, %t) = (%#x, %t), want (%#x, %t)",
				c.value, c.amount, c.carryIn, result, carryOut, c.result, c.carryOut)
		}
	}
}

func TestShiftLSR(t *testing.T) {
	cases := []struct {
		value, amount uint32
		result        uint32
		carryOut      bool
	}{
		{0x80000000, 0, 0, true}, // LSR #0 encodes LSR #32
		{0xFF, 4, 0xF, true},
		{0x80000000, 32, 0, true},
		{0x1, 33, 0, false},
	}
	for _, c := range cases {
		result, carryOut := Shift(c.value, LSR, c.amount, false)
		if result != c.result || carryOut != c.carryOut {
			t.Errorf("LSR(%#x, %d) = (%#x, %t), want (%#x, %t)",
				c.value, c.amount, result, carryOut, c.result, c.carryOut)
		}
	}
}

func TestShiftASR(t *testing.T) {
	result, carryOut := Shift(0x80000000, ASR, 0, false) // ASR #0 encodes ASR #32
	if result != 0xFFFFFFFF || !carryOut {
		t.Errorf("ASR #0 on negative = (%#x, %t), want (0xFFFFFFFF, true)", result, carryOut)
	}
	result, carryOut = Shift(0x7FFFFFFF, ASR, 0, false)
	if result != 0 || carryOut {
		t.Errorf("ASR #0 on positive = (%#x, %t), want (0, false)", result, carryOut)
	}
	result, _ = Shift(0xFFFFFFF0, ASR, 4, false)
	if result != 0xFFFFFFFF {
		t.Errorf("ASR 4 sign fill = %#x, want 0xFFFFFFFF", result)
	}
}

func TestShiftRORRRX(t *testing.T) {
	result, carryOut := Shift(0x2, ROR, 0, true) // RRX
	if result != 0x80000001 || carryOut {
		t.Errorf("RRX(0x2, C=1) = (%#x, %t), want (0x80000001, false)", result, carryOut)
	}
	result, carryOut = Shift(0x1, ROR, 1, false)
	if result != 0x80000000 || !carryOut {
		t.Errorf("ROR(0x1, #1) = (%#x, %t), want (0x80000000, true)", result, carryOut)
	}
}

func TestConditionCodes(t *testing.T) {
	p := psr.FromU32(0)
	p.SetZ(true)
	if !Eval(EQ, p) || Eval(NE, p) {
		t.Fatal("EQ/NE mismatch with Z=1")
	}
	p = psr.FromU32(0)
	p.SetN(true)
	p.SetV(true)
	if !Eval(GE, p) {
		t.Fatal("GE should hold when N==V")
	}
	if Eval(LT, p) {
		t.Fatal("LT should not hold when N==V")
	}
}

func TestRegisterBanking(t *testing.T) {
	var r Registers
	r.Reset()
	r.Set(13, 0x1000) // SVC mode SP after reset
	r.ChangeMode(psr.IRQ)
	r.Set(13, 0x2000)
	r.ChangeMode(psr.SVC)
	if got := r.Get(13); got != 0x1000 {
		t.Fatalf("SVC R13 = %#x after IRQ round-trip, want 0x1000", got)
	}
	r.ChangeMode(psr.IRQ)
	if got := r.Get(13); got != 0x2000 {
		t.Fatalf("IRQ R13 = %#x, want 0x2000 (isolated from SVC)", got)
	}
}

func TestSPSRRoundTrip(t *testing.T) {
	var r Registers
	r.Reset()
	before := r.CPSR()
	r.ChangeMode(psr.IRQ)
	r.RestoreCPSR()
	if r.CPSR().ToU32() != before.ToU32() {
		t.Fatalf("CPSR after ChangeMode+RestoreCPSR = %#x, want %#x", r.CPSR().ToU32(), before.ToU32())
	}
}
