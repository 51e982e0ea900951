// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"go.uber.org/zap"

	"github.com/ezrec/esovm/asm"
	"github.com/ezrec/esovm/config"
	"github.com/ezrec/esovm/internal"
	"github.com/ezrec/esovm/machine"
)

// Source is a loadable program, with a map back to its source lines.
type Source interface {
	Load(m *machine.Machine) error
	LineNo(addr uint16) int
}

var _emulator_defines = map[string]int{
	"MEMORY_SIZE": machine.MEMORY_SIZE,
	"OP_COUNT":    machine.OP_COUNT,
}

// Emulator state. Machine + program + host console.
type Emulator struct {
	Verbose          bool   // If set, enables verbose logging.
	*machine.Machine        // Reference to the machine simulation.
	Source           Source // Reference to the currently loaded program.
	Limit            int    // Maximum ticks for Run, 0 for no limit.
	DotPointer       uint16 // Dot pointer preset after loading, 0 for none.

	logger *zap.Logger
	opts   []machine.Option
}

// Option configures an Emulator.
type Option func(*Emulator) *Emulator

// WithLogger sets the emulator and machine logger.
func WithLogger(l *zap.Logger) Option {
	return func(emu *Emulator) *Emulator {
		emu.logger = l
		return emu
	}
}

// WithConsole attaches the host console.
func WithConsole(c machine.Console) Option {
	return func(emu *Emulator) *Emulator {
		emu.opts = append(emu.opts, machine.WithConsole(c))
		return emu
	}
}

// WithSink sets the destination of machine debug dumps.
func WithSink(w io.Writer) Option {
	return func(emu *Emulator) *Emulator {
		emu.opts = append(emu.opts, machine.WithSink(w))
		return emu
	}
}

// WithConfig applies a run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(emu *Emulator) *Emulator {
		emu.Verbose = cfg.Verbose
		emu.DotPointer = cfg.Machine.DotPointer
		emu.opts = append(emu.opts, cfg.MachineOptions()...)
		return emu
	}
}

// WithLimit bounds the number of ticks in a Run.
func WithLimit(ticks int) Option {
	return func(emu *Emulator) *Emulator {
		emu.Limit = ticks
		return emu
	}
}

// New creates a new emulator.
func New(opts ...Option) (emu *Emulator) {
	emu = &Emulator{
		logger: zap.L(),
	}

	for _, opt := range opts {
		emu = opt(emu)
	}

	emu.Machine = machine.New(append(emu.opts, machine.WithLogger(emu.logger))...)
	emu.logger = emu.logger.Named("emulator")

	return
}

// Defines returns an iterator over all of the assembler predefines that
// depend on the emulated machine.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	configured := map[string]int{
		"STACK_CAPACITY": emu.Machine.Stack.Capacity(),
		"TEXT_CAPACITY":  emu.Machine.Text.Capacity(),
	}
	if emu.DotPointer != 0 {
		configured["DOT_POINTER"] = int(emu.DotPointer)
	}

	itoa := func(v int) string { return fmt.Sprintf("%d", v) }

	return internal.IterSeq2Concat(
		internal.IterSeq2Map(maps.All(_emulator_defines), itoa),
		internal.IterSeq2Map(maps.All(configured), itoa),
	)
}

// Assemble parses assembly source with the emulator predefines.
func (emu *Emulator) Assemble(assembler *asm.Assembler, input io.Reader) (prog *asm.Program, err error) {
	for equ, value := range emu.Defines() {
		assembler.Predefine(equ, value)
	}

	return assembler.Parse(input)
}

// Load resets the machine, and loads a program.
func (emu *Emulator) Load(src Source) (err error) {
	emu.Machine.Reset()

	err = src.Load(emu.Machine)
	if err != nil {
		return
	}

	if emu.DotPointer != 0 {
		emu.Machine.Dp = emu.DotPointer
	}

	emu.Source = src

	if emu.Verbose {
		emu.logger.Debug("load", zap.Uint16("entry", emu.Machine.Ep))
	}

	return
}

// Ticks returns the total ticks since a load.
func (emu *Emulator) Ticks() int {
	return emu.Machine.Ticks
}

// LineNo returns the source line number of the next instruction.
func (emu *Emulator) LineNo() int {
	if emu.Source == nil {
		return 0
	}
	return emu.Source.LineNo(emu.Machine.Ep)
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Source == nil {
		err = ErrNoProgram
		return
	}

	if emu.Machine.Halted {
		done = true
		return
	}

	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	lineno := emu.LineNo()
	ep := emu.Machine.Ep
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Ep: ep, Err: err}
		}
	}()

	err = emu.Machine.Step()
	if err != nil {
		return
	}

	done = emu.Machine.Halted
	return
}

// Run ticks until the machine halts, and returns register A as the exit code.
func (emu *Emulator) Run() (exit uint8, err error) {
	for done := false; !done; {
		if emu.Limit > 0 && emu.Machine.Ticks >= emu.Limit {
			err = &ErrRuntime{LineNo: emu.LineNo(), Ep: emu.Machine.Ep, Err: ErrTickLimit}
			return
		}

		done, err = emu.Tick()
		if err != nil {
			emu.logger.Error("fault", zap.Error(err))
			return
		}
	}

	exit = emu.Machine.A

	if emu.Verbose {
		emu.logger.Debug("halted", zap.Uint8("exit", exit), zap.Int("ticks", emu.Machine.Ticks))
	}

	return
}
