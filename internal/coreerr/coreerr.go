// Package coreerr defines the fatal conditions of §7, raised via panic, and
// cmd/goba recovers at the top of its run/step loops, matching the teacher's
// existing panic-for-fatal style (internal/memory/bios.go,
// internal/memory/memory.go). The only raise site is cpu.CPU.Step's
// InvalidMode check; the other kinds are defined but not raised by decode or
// execution.
package coreerr

import "fmt"

// Kind enumerates §7's error taxonomy.
type Kind int

const (
	InvalidInstruction Kind = iota
	InvalidMode
	IllegalRegisterUse
	UnalignedFetch
	SegmentFault
)

func (k Kind) String() string {
	switch k {
	case InvalidInstruction:
		return "InvalidInstruction"
	case InvalidMode:
		return "InvalidMode"
	case IllegalRegisterUse:
		return "IllegalRegisterUse"
	case UnalignedFetch:
		return "UnalignedFetch"
	case SegmentFault:
		return "SegmentFault"
	default:
		return "Unknown"
	}
}

// CoreError carries the last decoded instruction word and a register
// snapshot alongside the fatal condition, so cmd/goba can print a useful
// crash report instead of a bare panic trace.
type CoreError struct {
	Kind        Kind
	Message     string
	Instruction uint32
	PC          uint32
	Registers   [16]uint32
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("%s at pc=%#08x (instr=%#08x): %s", e.Kind, e.PC, e.Instruction, e.Message)
}

// Raise panics with a *CoreError built from the given snapshot.
func Raise(kind Kind, message string, pc, instruction uint32, regs [16]uint32) {
	panic(&CoreError{Kind: kind, Message: message, Instruction: instruction, PC: pc, Registers: regs})
}
