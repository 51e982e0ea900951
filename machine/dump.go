package machine

import (
	"fmt"
	"io"
	"iter"
	"strconv"
)

// String returns a compact single line machine state.
func (m *Machine) String() string {
	return fmt.Sprintf("Machine{a=%d b=%d l=%d f=%v ch=%q num=%d ep=0x%04x dp=0x%04x flag=%v debug=%v halted=%v array=%v text=%q stack=%d/%d omega=%+v}",
		m.A, m.B, m.L, m.F, m.Ch, m.Num,
		m.Ep, m.Dp,
		m.Flag, m.Debug, m.Halted,
		m.Array, m.Text.String(),
		m.Stack.Used(), m.Stack.Capacity(),
		m.Omega)
}

// Dump writes the full machine state, one register per line.
func (m *Machine) Dump(w io.Writer) (err error) {
	regs := []string{
		"a", "b", "l", "f", "ch", "num",
		"ep", "dp",
		"flag", "debug", "halted",
		"array", "text", "stack",
		"choice", "desires", "doom", "sentient", "paperclips",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "a":
			strval = fmt.Sprintf("0x%02X (%d)", m.A, m.A)
		case "b":
			strval = fmt.Sprintf("0x%04X (%d)", uint16(m.B), m.B)
		case "l":
			strval = fmt.Sprintf("0x%04X (%d)", m.L, m.L)
		case "f":
			strval = strconv.FormatFloat(m.F, 'g', -1, 64)
		case "ch":
			strval = fmt.Sprintf("%q", m.Ch)
		case "num":
			strval = fmt.Sprintf("%d", m.Num)
		case "ep":
			strval = fmt.Sprintf("0x%04X", m.Ep)
		case "dp":
			strval = fmt.Sprintf("0x%04X [%q]", m.Dp, m.Memory[m.Dp])
		case "flag":
			strval = fmt.Sprintf("%v", m.Flag)
		case "debug":
			strval = fmt.Sprintf("%v", m.Debug)
		case "halted":
			strval = fmt.Sprintf("%v", m.Halted)
		case "array":
			strval = fmt.Sprintf("%v", m.Array)
		case "text":
			strval = fmt.Sprintf("%q (%d/%d)", m.Text.String(), m.Text.Len(), m.Text.Capacity())
		case "stack":
			strval = fmt.Sprintf("%d/%d", m.Stack.Used(), m.Stack.Capacity())
			if top, ok := m.Stack.Peek(); ok {
				strval += fmt.Sprintf(" top 0x%02X", top)
			}
		case "choice":
			strval = m.Omega.Choice.String()
		case "desires":
			strval = fmt.Sprintf("%d", m.Omega.Desires)
		case "doom":
			strval = fmt.Sprintf("%v", m.Omega.Doom)
		case "sentient":
			strval = fmt.Sprintf("%v", m.Omega.Sentient)
		case "paperclips":
			strval = fmt.Sprintf("%v", m.Omega.Paperclips)
		}
		_, err = fmt.Fprintf(w, "%10s: %v\n", reg, strval)
		if err != nil {
			return
		}
	}

	return
}

// Disassemble walks memory in [from, to), yielding the address of each
// item. Bytes that do not decode are yielded as a Byte.
func Disassemble(mem *Memory, from, to uint16) iter.Seq2[uint16, Item] {
	return func(yield func(uint16, Item) bool) {
		total := int(to - from)
		cursor := from
		for consumed := 0; consumed < total; {
			addr := cursor
			var item Item
			inst, err := Decode(mem, &cursor)
			if err != nil {
				item = Byte(mem[addr])
				cursor = addr + 1
			} else {
				item = inst
			}
			consumed += item.Size()
			if !yield(addr, item) {
				return
			}
		}
	}
}
