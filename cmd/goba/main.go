// Command goba drives a GoBA core from the command line: run boots a ROM
// (with an optional BIOS image) and free-runs it frame by frame, step
// single-steps it and prints a register trace. Grounded on
// oisee-z80-optimizer's cmd/z80opt/main.go cobra wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"goba/internal/config"
	"goba/internal/coreerr"
	"goba/internal/core"
	"goba/internal/ppu"
	"goba/rom"
)

func main() {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:   "goba",
		Short: "GoBA - a GBA ARM7TDMI core",
	}
	rootCmd.PersistentFlags().StringVar(&cfg.BIOSPath, "bios", "", "path to a GBA BIOS image (optional)")
	rootCmd.PersistentFlags().StringVar(&cfg.ROMPath, "rom", "", "path to a GBA ROM image (required)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", false, "debug flag (dbg.Printf tracing is set by the debug build tag alone; this flag does not change it)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Free-run the core frame by frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrames(cfg)
		},
	}
	runCmd.Flags().IntVar(&cfg.Frames, "frames", 0, "stop after N frames (0 = run until interrupted)")

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "Single-step the core and print a register trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return stepInstructions(cfg)
		},
	}
	stepCmd.Flags().IntVar(&cfg.Steps, "n", 1, "number of instructions to step")

	rootCmd.AddCommand(runCmd, stepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCore(cfg config.Config) (*core.Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	image, err := rom.Load(cfg.ROMPath)
	if err != nil {
		return nil, err
	}
	c := core.New(image.Data)
	if cfg.BIOSPath != "" {
		bios, err := rom.Load(cfg.BIOSPath)
		if err != nil {
			return nil, err
		}
		c.LoadBIOS(bios.Data)
	}
	fb := ppu.New(c.Bus)
	c.Hooks.UpdatePixel = fb.UpdatePixel
	return c, nil
}

// runFrames free-runs the core for cfg.Frames frames (or forever, if 0),
// recovering a *coreerr.CoreError into a plain exit rather than a stack
// dump, per SPEC_FULL.md's panic/recover boundary.
func runFrames(cfg config.Config) (err error) {
	c, err := newCore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*coreerr.CoreError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	vblanks := 0
	c.Hooks.OnVBlank = func() { vblanks++ }

	if cfg.Frames == 0 {
		for {
			c.Frame()
		}
	}
	for i := 0; i < cfg.Frames; i++ {
		c.Frame()
	}
	fmt.Printf("ran %d frame(s), %d vblank(s) observed\n", cfg.Frames, vblanks)
	return nil
}

func stepInstructions(cfg config.Config) (err error) {
	c, err := newCore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*coreerr.CoreError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	n := cfg.Steps
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		c.Step()
		cpsr := c.CPU.Registers.CPSR()
		fmt.Printf("pc=%#08x cpsr=%#08x mode=%s\n", c.CPU.Registers.PC(), cpsr.ToU32(), cpsr.Mode())
	}
	return nil
}
