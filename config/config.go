// Package config loads esovm run configuration from TOML.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/esovm/asm"
	"github.com/ezrec/esovm/machine"
)

// Config is the complete run configuration.
type Config struct {
	Verbose   bool      `toml:"verbose"`
	Machine   Machine   `toml:"machine"`
	Assembler Assembler `toml:"assembler"`
	Terminal  Terminal  `toml:"terminal"`
}

// Machine configures the virtual machine.
type Machine struct {
	StackCapacity int    `toml:"stack_capacity"`
	TextCapacity  int    `toml:"text_capacity"`
	DebugMode     bool   `toml:"debug_mode"`
	DotPointer    uint16 `toml:"dot_pointer,omitempty"` // Preset dot pointer, 0 for none.
}

// Assembler configures the assembler.
type Assembler struct {
	Origin uint16            `toml:"origin"`
	Equate map[string]string `toml:"equate,omitempty"` // Predefined equates.
}

// Terminal configures the host console.
type Terminal struct {
	Raw     bool   `toml:"raw"`               // Single key input in raw mode.
	History string `toml:"history,omitempty"` // Line input history file.
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Machine: Machine{
			StackCapacity: machine.STACK_CAPACITY,
			TextCapacity:  machine.TEXT_CAPACITY,
		},
		Terminal: Terminal{
			Raw: true,
		},
	}
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (cfg *Config, err error) {
	cfg = Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		cfg = nil
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		cfg = nil
		err = ErrUndecoded(keys)
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
	}
	return
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration limits.
func (cfg *Config) Validate() (err error) {
	if cfg.Machine.StackCapacity <= 0 {
		return ErrStackCapacity
	}
	if cfg.Machine.TextCapacity <= 0 {
		return ErrTextCapacity
	}
	if cfg.Machine.DotPointer != 0 && !machine.DotPointerAllowed(cfg.Machine.DotPointer) {
		return fmt.Errorf("%w: %d", ErrDotPointer, cfg.Machine.DotPointer)
	}
	return nil
}

// Write encodes the configuration as TOML.
func (cfg *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// MachineOptions returns the machine options for the configuration.
func (cfg *Config) MachineOptions() []machine.Option {
	return []machine.Option{
		machine.WithStackCapacity(cfg.Machine.StackCapacity),
		machine.WithTextCapacity(cfg.Machine.TextCapacity),
		machine.WithDebugMode(cfg.Machine.DebugMode),
	}
}

// NewAssembler returns an assembler for the configuration.
func (cfg *Config) NewAssembler() *asm.Assembler {
	a := &asm.Assembler{
		Verbose: cfg.Verbose,
		Origin:  cfg.Assembler.Origin,
	}
	for equ, value := range cfg.Assembler.Equate {
		a.Predefine(equ, value)
	}
	return a
}
