package pipeline

import "testing"

func TestFlushEmptiesAllStages(t *testing.T) {
	p := New()
	p.Advance(0x11111111, 0, false)
	p.Advance(0x22222222, 4, false)
	p.Advance(0x33333333, 8, false)
	if !p.Full() {
		t.Fatalf("expected pipeline full after three advances")
	}
	p.Flush()
	for i, s := range p.Stages() {
		if s.State != Empty {
			t.Fatalf("stage %d not empty after flush: %+v", i, s)
		}
	}
	if p.Full() {
		t.Fatalf("pipeline reports full right after flush")
	}
}

func TestAdvanceRotatesExecuteOrder(t *testing.T) {
	p := New()
	p.Advance(0xAAAA, 0, false)
	p.Advance(0xBBBB, 4, false)
	exec := p.Advance(0xCCCC, 8, false)
	if exec.Raw != 0xAAAA {
		t.Fatalf("expected first-fetched word to reach Execute, got %#x", exec.Raw)
	}
}

func TestThumbTaggingPreserved(t *testing.T) {
	p := New()
	p.Advance(0x4600, 0, true)
	if p.Stages()[0].State != RawTHUMB {
		t.Fatalf("expected RawTHUMB tag on freshly fetched THUMB word")
	}
}
