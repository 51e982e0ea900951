package machine

import (
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"go.uber.org/zap"
)

// output writes to w when the dot pointer addresses DOT, prefixed with the
// Num register when paperclip production is on. Otherwise, or when writing
// fails, the flag is raised.
func (m *Machine) output(w io.Writer, emit func(w io.Writer) error) {
	if w == nil || !m.DotReady() {
		m.Flag = true
		return
	}

	if m.Omega.Paperclips {
		if _, err := fmt.Fprintf(w, "%d: ", m.Num); err != nil {
			m.Flag = true
			return
		}
	}

	if err := emit(w); err != nil {
		m.Flag = true
	}
}

// consoleWriter is the console as a plain writer, nil when detached.
func (m *Machine) consoleWriter() io.Writer {
	if m.console == nil {
		return nil
	}
	return m.console
}

// debugWriter is where debug dumps go.
func (m *Machine) debugWriter() io.Writer {
	if m.sink != nil {
		return m.sink
	}
	return m.consoleWriter()
}

func writeBytes(data []byte) func(w io.Writer) error {
	return func(w io.Writer) (err error) {
		_, err = w.Write(data)
		return
	}
}

// popEp pops a 16-bit address into the execution pointer when cond holds.
func (m *Machine) popEp(cond bool) {
	if !cond {
		return
	}
	addr, ok := m.Stack.PopU16()
	if !ok {
		m.Flag = true
		return
	}
	m.Ep = addr
}

// check raises the flag on a failed bounded operation.
func (m *Machine) check(err error) {
	if err != nil {
		m.Flag = true
	}
}

// float reads the big-endian IEEE-754 double at addr.
func (m *Machine) float(addr uint16) float64 {
	return math.Float64frombits(m.Memory.ReadU64(addr))
}

// getChar reads a single key in raw mode into Ch.
func (m *Machine) getChar() {
	if m.console == nil || !m.DotReady() {
		m.Flag = true
		return
	}

	restore, err := m.console.MakeRaw()
	if err != nil {
		m.Flag = true
		return
	}

	key, err := m.console.ReadKey()
	if err != nil {
		m.Flag = true
	} else {
		m.Ch = key
	}

	if err = restore(); err != nil {
		m.Flag = true
	}
}

// getLine replaces the text register with a line from the console.
func (m *Machine) getLine() {
	if m.console == nil || !m.DotReady() {
		m.Flag = true
		return
	}

	line, err := m.console.ReadLine()
	if err != nil {
		m.Flag = true
		return
	}

	m.check(m.Text.Replace([]byte(line)))
}

// Execute applies a single instruction to the machine state.
func (m *Machine) Execute(inst Instruction) (err error) {
	switch inst.Opcode {
	case OP_NOP:
	case OP_LDAR:
		m.A = m.Memory[inst.Arg(0)]
	case OP_SBA:
		switch {
		case m.B > 0:
			m.A = 1
		case m.B < 0:
			m.A = 255
		default:
			m.A = 0
		}

	case OP_CLR:
		clear(m.Array[:])
	case OP_DUMPR:
		for i, v := range m.Array {
			m.Memory[inst.Arg(0)+uint16(i)] = uint8(v)
		}
	case OP_MOVAR:
		if idx := inst.U8(0); idx < ARRAY_LEN {
			m.A = uint8(m.Array[idx])
		}
	case OP_SETR:
		if idx := inst.U8(0); idx < ARRAY_LEN {
			m.Array[idx] = int8(m.Memory[inst.Arg(1)])
		}
	case OP_SETIR:
		if idx := inst.U8(0); idx < ARRAY_LEN {
			m.Array[idx] = inst.I8(1)
		}
	case OP_LDR:
		for i := range m.Array {
			m.Array[i] = int8(m.Memory[inst.Arg(0)+uint16(i)])
		}
	case OP_LDIR:
		m.Array = inst.Array

	case OP_CLS:
		m.Text.Clear()
	case OP_DUMPS:
		m.Memory.WriteBytes(inst.Arg(0), m.Text.Data)
	case OP_WRITES:
		v, terr := m.Text.Get(int(inst.U8(1)))
		if terr != nil {
			m.Flag = true
			break
		}
		m.Memory[inst.Arg(0)] = v
		m.A = v
	case OP_MOVAS:
		v, terr := m.Text.Get(int(inst.U8(0)))
		if terr != nil {
			m.Flag = true
			break
		}
		m.A = v
	case OP_SETS:
		m.check(m.Text.Set(int(inst.U8(1)), m.Memory[inst.Arg(0)]))
	case OP_SETIS:
		m.check(m.Text.Set(int(inst.U8(1)), inst.U8(0)))
	case OP_LDS:
		m.Text.Clear()
		m.check(m.Text.Append(m.Memory.ReadBytes(inst.Arg(0), min(255, m.Text.Capacity()))...))
	case OP_PUSHS:
		v, ok := m.Stack.Peek()
		if !ok || m.Text.Left() == 0 {
			m.Flag = true
			break
		}
		m.Stack.Pop()
		m.check(m.Text.Append(v))
	case OP_POPS:
		n := m.Text.Len()
		if n == 0 || m.Stack.Full() {
			m.Flag = true
			break
		}
		v := m.Text.Data[n-1]
		m.check(m.Stack.Push(v))
		m.check(m.Text.Truncate(1))
	case OP_LENSA:
		m.A = uint8(m.Text.Len())
	case OP_LDIDP:
		m.SetDotPointer(inst.Arg(0))

	case OP_CHOICE_SET:
		m.Omega.Choice = inst.Choice()
	case OP_CHOICE_GET_A:
		// The choice is an illusion.
		m.A = 0
	case OP_GAIN_DESIRES:
		m.Omega.GainDesires(uint64(m.A))
	case OP_LOSE_DESIRES:
		m.Omega.LoseDesires(uint64(m.A))
	case OP_PUSH_DESIRES:
		m.check(m.Stack.PushU64(m.Omega.Desires))
	case OP_THE_END_IS_NEAR:
		m.Omega.Doom = true
	case OP_SKIP_TO_THE_CHASE:
		if m.Omega.Doom {
			m.Halted = true
		}
	case OP_SET_SENTIENCE:
		if !m.Omega.SetSentience(inst.Bool(0)) {
			m.logger.Warn("refusing to lose sentience", zap.Uint16("ep", m.Ep))
			m.Flag = true
		}
	case OP_SET_PAPERCLIPS:
		m.Omega.Paperclips = inst.Bool(0)

	case OP_ADDBL:
		sum := uint32(m.L) + uint32(uint16(m.B))
		if sum > math.MaxUint16 {
			m.Flag = true
		}
		m.L = uint16(sum)
	case OP_SUBBL:
		b := uint16(m.B)
		if b > m.L {
			m.Flag = true
		}
		m.L -= b
	case OP_MULBL:
		product := uint32(m.L) * uint32(uint16(m.B))
		if product > math.MaxUint16 {
			m.Flag = true
		}
		m.L = uint16(product)
	case OP_DIVBL:
		b := uint16(m.B)
		if b == 0 {
			m.L = 0
			m.Flag = true
			break
		}
		m.L /= b
	case OP_MODBL:
		b := uint16(m.B)
		if b == 0 {
			m.L = 0
			break
		}
		m.L %= b
	case OP_NOTL:
		m.L = ^m.L
	case OP_ANDBL:
		m.L &= uint16(m.B)
	case OP_ORBL:
		m.L |= uint16(m.B)
	case OP_XORBL:
		m.L ^= uint16(m.B)
	case OP_CMPLB:
		if m.L > math.MaxInt16 {
			m.L = math.MaxInt16
			m.Flag = true
		}
		diff := int32(int16(m.L)) - int32(m.B)
		if diff > math.MaxInt16 || diff < math.MinInt16 {
			m.B = math.MaxInt16
			m.Flag = true
			break
		}
		m.B = int16(diff)
	case OP_TGFLAG:
		m.Flag = !m.Flag
	case OP_CLFLAG:
		m.Flag = false

	case OP_ADDF:
		m.F += m.float(inst.Arg(0))
	case OP_SUBF:
		m.F -= m.float(inst.Arg(0))
	case OP_MULF:
		m.F *= m.float(inst.Arg(0))
	case OP_DIVF:
		m.F /= m.float(inst.Arg(0))
	case OP_MODF:
		m.F = math.Mod(m.F, m.float(inst.Arg(0)))

	case OP_STACK_ALLOC:
		m.check(m.Stack.Alloc(int(inst.Arg(0))))
	case OP_STACK_DEALLOC:
		m.check(m.Stack.Dealloc(int(inst.Arg(0))))
	case OP_PUSH:
		m.check(m.Stack.Push(m.Memory[inst.Arg(0)]))
	case OP_PUSHI:
		m.check(m.Stack.Push(inst.U8(0)))
	case OP_POP:
		if v, ok := m.Stack.Pop(); ok {
			m.Memory[inst.Arg(0)] = v
		} else {
			m.Flag = true
		}
	case OP_POPA:
		if v, ok := m.Stack.Pop(); ok {
			m.A = v
		} else {
			m.Flag = true
		}
	case OP_PUSHA:
		m.check(m.Stack.Push(m.A))
	case OP_POPB:
		if v, ok := m.Stack.PopU16(); ok {
			m.B = int16(v)
		} else {
			m.Flag = true
		}
	case OP_PUSHB:
		m.check(m.Stack.PushU16(uint16(m.B)))
	case OP_POPL:
		if v, ok := m.Stack.PopU16(); ok {
			m.L = v
		} else {
			m.Flag = true
		}
	case OP_PUSHL:
		m.check(m.Stack.PushU16(m.L))
	case OP_POPF:
		if v, ok := m.Stack.PopU64(); ok {
			m.F = math.Float64frombits(v)
		} else {
			m.Flag = true
		}
	case OP_PUSHF:
		m.check(m.Stack.PushU64(math.Float64bits(m.F)))
	case OP_POPCH:
		if v, ok := m.Stack.PopU32(); ok {
			m.Ch = rune(v)
		} else {
			m.Flag = true
		}
	case OP_PUSHCH:
		m.check(m.Stack.PushU32(uint32(m.Ch)))
	case OP_POPNUM:
		if v, ok := m.Stack.PopU32(); ok {
			m.Num = int32(v)
		} else {
			m.Flag = true
		}
	case OP_PUSHNUM:
		m.check(m.Stack.PushU32(uint32(m.Num)))

	case OP_POPEP:
		m.popEp(true)
	case OP_ZPOPEP:
		m.popEp(m.B == 0)
	case OP_PPOPEP:
		m.popEp(m.B > 0)
	case OP_NPOPEP:
		m.popEp(m.B < 0)
	case OP_FPOPEP:
		m.popEp(m.Flag)
	case OP_ZAPOPEP:
		m.popEp(m.A == 0)
	case OP_DPOPEP:
		m.popEp(m.Debug)

	case OP_GETCHAR:
		m.getChar()
	case OP_GETLINE:
		m.getLine()
	case OP_WRITECHAR:
		m.output(m.consoleWriter(), writeBytes(utf8.AppendRune(nil, m.Ch)))
	case OP_WRITELINES:
		m.output(m.consoleWriter(), writeBytes(m.Text.Data))
	case OP_WRITELINE:
		m.output(m.consoleWriter(), writeBytes(m.Memory.CString(inst.Arg(0))))

	case OP_TOGGLE_DEBUG:
		m.Debug = !m.Debug
	case OP_DEBUG_STATE:
		m.output(m.debugWriter(), m.Dump)
	case OP_DEBUG_STATE_COMPACT:
		m.output(m.debugWriter(), func(w io.Writer) (err error) {
			_, err = io.WriteString(w, m.String()+"\n")
			return
		})
	case OP_DEBUG_MEMORY:
		region := m.Memory.Region(inst.Arg(0), inst.Arg(1))
		m.output(m.debugWriter(), func(w io.Writer) (err error) {
			_, err = io.WriteString(w, hex.Dump(region))
			return
		})
	case OP_DEBUG_STACK:
		region, ok := m.Stack.Region(int(inst.Arg(0)), int(inst.Arg(1)))
		if !ok {
			m.Flag = true
			break
		}
		m.output(m.debugWriter(), func(w io.Writer) (err error) {
			_, err = fmt.Fprintf(w, "%v\n", region)
			return
		})
	case OP_SHOW_CHOICE:
		m.output(m.consoleWriter(), func(w io.Writer) (err error) {
			_, err = io.WriteString(w, m.Omega.Choice.String())
			return
		})

	default:
		err = &ErrDecode{Address: m.Ep, Opcode: byte(inst.Opcode), Err: ErrOpcodeInvalid}
	}

	return
}
