// Package interrupt implements C12: the IRQ dispatch seam between the
// shared IME/IE/IF register state in internal/ioregs and the CPU's fetch
// loop. The controller itself holds no state of its own — it is a thin
// Pending() query over ioregs.Regs — since IME/IE/IF already live in the
// single source of truth the rest of the core reads and writes (§9 "Two
// views of I/O memory").
package interrupt

import "goba/internal/ioregs"

// Controller satisfies cpu.IRQLine: Pending reports whether any enabled,
// requested interrupt source should preempt the next instruction fetch
// (§4.8's IME && (IE & IF) != 0 rule).
type Controller struct {
	Regs *ioregs.Regs
}

// New wires a controller to the shared register state.
func New(regs *ioregs.Regs) *Controller {
	return &Controller{Regs: regs}
}

// Pending reports whether the CPU should take an IRQ exception before its
// next fetch.
func (c *Controller) Pending() bool {
	irq := c.Regs.IRQ
	return irq.IME && irq.IE&irq.IF != 0
}

// Request posts a peripheral-sourced interrupt (VBlank, HBlank, VCount,
// timer overflow, DMA finish, keypad, serial, game pak) by bit index.
func (c *Controller) Request(bit uint) {
	c.Regs.RequestIRQ(bit)
}
