// Package pipeline implements C10: the 3-stage Fetch/Decode/Execute ring
// buffer described in §4.9. It tracks pipeline occupancy independently of
// instruction execution so a branch's flush-and-refill behavior (Testable
// Property 7) can be modeled and tested without coupling to the full CPU.
package pipeline

// SlotState is what a pipeline slot currently holds.
type SlotState int

const (
	Empty SlotState = iota
	RawARM
	RawTHUMB
	Decoded
)

// Slot is one pipeline stage's occupant.
type Slot struct {
	State   SlotState
	Raw     uint32
	Address uint32
}

// Pipeline is a 3-slot ring: index 0 is the most recently fetched
// instruction (Fetch stage), index 2 is the one about to execute.
type Pipeline struct {
	slots    [3]Slot
	flushGen int
}

// New returns an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Flush empties every stage — taken on any branch, mode switch, or
// exception entry/return (§4.9). flushGen lets a caller detect, from
// outside, whether a Flush happened during some span of calls (Testable
// Property 7: two NOP cycles must follow any R15-targeting instruction)
// without the pipeline itself needing to know why it was flushed.
func (p *Pipeline) Flush() {
	p.slots = [3]Slot{}
	p.flushGen++
}

// FlushGen returns a counter that increments on every Flush call.
func (p *Pipeline) FlushGen() int {
	return p.flushGen
}

// Advance rotates the pipeline one step: Decode moves to Execute, Fetch
// moves to Decode, a freshly fetched raw word (with its state tagged ARM or
// THUMB) enters Fetch, and the new occupant of the Execute slot is returned.
func (p *Pipeline) Advance(raw uint32, addr uint32, thumb bool) Slot {
	p.slots[2] = p.slots[1]
	p.slots[1] = p.slots[0]
	state := RawARM
	if thumb {
		state = RawTHUMB
	}
	p.slots[0] = Slot{State: state, Raw: raw, Address: addr}
	return p.slots[2]
}

// Full reports whether all three stages hold a fetched instruction —  the
// steady-state condition required before Execute's result is meaningful.
func (p *Pipeline) Full() bool {
	for _, s := range p.slots {
		if s.State == Empty {
			return false
		}
	}
	return true
}

// Stages exposes the current occupancy for inspection/tests.
func (p *Pipeline) Stages() [3]Slot {
	return p.slots
}
