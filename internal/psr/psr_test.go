package psr

import "testing"

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 0xFFFFFFFF, 0x600000D3, 0x00000010} {
		p := FromU32(v)
		if p.ToU32() != v {
			t.Errorf("FromU32(%#x).ToU32() = %#x, want %#x", v, p.ToU32(), v)
		}
	}
}

func TestModeValid(t *testing.T) {
	valid := []Mode{USR, FIQ, IRQ, SVC, ABT, UND, SYS}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("mode %#x should be valid", uint32(m))
		}
	}
	if Mode(0).Valid() {
		t.Error("mode 0 should be invalid")
	}
}

func TestSetFlagBitsPreservesLowBits(t *testing.T) {
	p := FromU32(0x000000D3)
	p.SetFlagBits(0xA0000000)
	if p.ToU32() != 0xA00000D3 {
		t.Errorf("SetFlagBits result = %#x, want 0xA00000D3", p.ToU32())
	}
}

func TestBankIsolation(t *testing.T) {
	var b Bank
	b.Set(IRQ, FromU32(0x11))
	b.Set(SVC, FromU32(0x13))
	if b.Get(IRQ).ToU32() != 0x11 || b.Get(SVC).ToU32() != 0x13 {
		t.Fatal("SPSR banks are not isolated")
	}
	if HasSPSR(USR) || HasSPSR(SYS) {
		t.Fatal("USR/SYS must not report an SPSR")
	}
}
