package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ezrec/esovm/asm"
	"github.com/ezrec/esovm/config"
	"github.com/ezrec/esovm/emulator"
	"github.com/ezrec/esovm/image"
)

// loadConfig loads the configuration file, or the defaults.
func loadConfig(path string) (*config.Config, error) {
	if len(path) == 0 {
		return config.Default(), nil
	}
	return config.Load(path)
}

// readSource reads a byte-code image, or assembles source text.
func readSource(emu *emulator.Emulator, cfg *config.Config, name string, input io.Reader) (src emulator.Source, prog *asm.Program, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	if img, ierr := image.Unmarshal(data); ierr == nil {
		src = img
		return
	}

	prog, err = emu.Assemble(cfg.NewAssembler(), bytes.NewReader(data))
	if err != nil {
		err = fmt.Errorf("%v: %w", name, err)
		return
	}

	src = prog
	return
}

// openSource opens a named source file, or standard input for "-".
func openSource(emu *emulator.Emulator, cfg *config.Config, name string) (src emulator.Source, prog *asm.Program, err error) {
	if name == "-" {
		return readSource(emu, cfg, "<stdin>", os.Stdin)
	}

	inf, err := os.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	return readSource(emu, cfg, name, inf)
}
