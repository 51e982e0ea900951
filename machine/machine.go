package machine

import (
	"io"

	"go.uber.org/zap"
)

// Machine is the complete state of a single virtual machine.
type Machine struct {
	Verbose bool // Set to trace every executed instruction.

	A     uint8           // Integer register, and the exit code.
	B     int16           // Signed register.
	L     uint16          // Unsigned register.
	F     float64         // Floating point register.
	Ch    rune            // Character register.
	Array [ARRAY_LEN]int8 // Array register.
	Text  Text            // Bounded text register.
	Omega Omega           // Omega register.
	Num   int32           // Num register, printed before paperclip output.

	Ep uint16 // Execution pointer.
	Dp uint16 // Dot pointer.

	Flag   bool // Sticky error flag.
	Debug  bool // Debug mode, tested by dpopep.
	Halted bool

	Memory Memory
	Stack  Stack

	Ticks int // Instructions executed since reset.

	console Console
	sink    io.Writer
	logger  *zap.Logger
}

// Option configures a Machine.
type Option func(*Machine) *Machine

// WithLogger sets the logger used for tracing and diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) *Machine {
		m.logger = l
		return m
	}
}

// WithConsole attaches the host terminal.
func WithConsole(c Console) Option {
	return func(m *Machine) *Machine {
		m.console = c
		return m
	}
}

// WithSink sets the destination of debug dumps. Without a sink, dumps go
// to the console.
func WithSink(w io.Writer) Option {
	return func(m *Machine) *Machine {
		m.sink = w
		return m
	}
}

// WithStackCapacity sets the stack capacity, in bytes.
func WithStackCapacity(n int) Option {
	return func(m *Machine) *Machine {
		m.Stack = *NewStack(n)
		return m
	}
}

// WithTextCapacity sets the text register capacity, in bytes.
func WithTextCapacity(n int) Option {
	return func(m *Machine) *Machine {
		m.Text = *NewText(n)
		return m
	}
}

// WithDebugMode sets the initial debug mode.
func WithDebugMode(on bool) Option {
	return func(m *Machine) *Machine {
		m.Debug = on
		return m
	}
}

// New creates a zeroed machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		logger: zap.L(),
	}

	for _, opt := range opts {
		m = opt(m)
	}

	m.logger = m.logger.Named("machine")

	return m
}

// Logger returns the machine's logger.
func (m *Machine) Logger() *zap.Logger {
	return m.logger
}

// SetConsole replaces the host terminal.
func (m *Machine) SetConsole(c Console) {
	m.console = c
}

// Reset zeroes registers, memory, and the stack. Capacities, debug mode and
// collaborators are kept.
func (m *Machine) Reset() {
	if m.Verbose {
		m.logger.Debug("reset")
	}

	m.A, m.B, m.L, m.F, m.Ch, m.Num = 0, 0, 0, 0, 0, 0
	clear(m.Array[:])
	m.Text.Clear()
	m.Omega = Omega{}
	m.Ep, m.Dp = 0, 0
	m.Flag = false
	m.Halted = false
	clear(m.Memory[:])
	m.Stack.Reset()
	m.Ticks = 0
}

// Load writes items into memory starting at offset, and returns the offset
// following the last item.
func (m *Machine) Load(items []Item, offset uint16) (next uint16, err error) {
	next, err = m.Memory.Load(items, offset)
	if m.Verbose {
		m.logger.Debug("load",
			zap.Int("items", len(items)),
			zap.Uint16("from", offset),
			zap.Uint16("to", next),
			zap.Error(err))
	}
	return
}

// Fetch decodes the instruction at the execution pointer and advances past
// it. A halted machine fetches nothing.
func (m *Machine) Fetch() (inst Instruction, err error) {
	if m.Halted {
		err = ErrHalted
		return
	}

	inst, err = Decode(&m.Memory, &m.Ep)
	if err != nil {
		if de, ok := err.(*ErrDecode); ok {
			err = ErrInvalidOpcode{ErrDecode: de}
		}
	}

	return
}

// Step fetches and executes a single instruction.
func (m *Machine) Step() (err error) {
	ep := m.Ep

	inst, err := m.Fetch()
	if err != nil {
		return
	}

	if m.Verbose {
		m.logger.Debug("execute",
			zap.Uint16("ep", ep),
			zap.Stringer("inst", inst),
			zap.Bool("flag", m.Flag))
	}

	m.Ticks++

	return m.Execute(inst)
}

// Run executes until the machine halts, returning register A as the exit
// code. An invalid opcode stops the run with ErrInvalidOpcode.
func (m *Machine) Run() (exit uint8, err error) {
	for !m.Halted {
		err = m.Step()
		if err != nil {
			m.logger.Error("fault", zap.Uint16("ep", m.Ep), zap.Error(err))
			return
		}
	}

	exit = m.A

	if m.Verbose {
		m.logger.Debug("halted", zap.Uint8("exit", exit), zap.Int("ticks", m.Ticks))
	}

	return
}

// SetDotPointer moves the dot pointer to an allow-listed address. Any other
// address leaves the dot pointer unchanged and raises the flag.
func (m *Machine) SetDotPointer(addr uint16) (ok bool) {
	if !DotPointerAllowed(addr) {
		m.Flag = true
		return false
	}
	m.Dp = addr
	return true
}

// DotReady reports if the dot pointer addresses the DOT sentinel.
func (m *Machine) DotReady() bool {
	return m.Memory[m.Dp] == DOT
}
