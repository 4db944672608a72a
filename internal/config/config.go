// Package config holds the run/step subcommands' flag-populated settings.
// There is no file format: every field is set directly from spf13/pflag
// flags registered on the owning cobra.Command (see cmd/goba).
package config

// Config is the flag-populated settings a cmd/goba subcommand runs with.
type Config struct {
	BIOSPath string
	ROMPath  string
	Frames   int
	Steps    int
	Debug    bool
}

// Validate checks the combination cmd/goba actually needs before wiring a
// core.Core: a ROM is always required, BIOS is optional (without an image
// the BIOS region reads as zeros; execution still starts at the reset
// vector 0x00000000, with no direct jump into ROM).
func (c Config) Validate() error {
	if c.ROMPath == "" {
		return errMissingROM
	}
	return nil
}

var errMissingROM = configError("rom path is required")

type configError string

func (e configError) Error() string { return string(e) }
