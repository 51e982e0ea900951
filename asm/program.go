package asm

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/esovm/machine"
)

// Statement is a single assembled source statement.
type Statement struct {
	LineNo int            // Source line number.
	Offset uint16         // Load address of the first item.
	Words  []string       // Source words, after expansion.
	Items  []machine.Item // Assembled items.
}

// Size of the statement in memory.
func (st *Statement) Size() (size int) {
	for _, item := range st.Items {
		size += item.Size()
	}
	return
}

// Bytes returns the encoded statement.
func (st *Statement) Bytes() (data []byte, err error) {
	for _, item := range st.Items {
		var chunk []byte
		chunk, err = item.Bytes()
		if err != nil {
			return
		}
		data = append(data, chunk...)
	}
	return
}

// Segment is a contiguous run of bytes at a load address.
type Segment struct {
	Offset uint16
	Data   []byte
}

// Program is an assembled program.
type Program struct {
	Entry      uint16            // Initial execution pointer.
	Statements []Statement       // Assembled statements, in source order.
	Labels     map[string]uint16 // Resolved labels.
}

// Debug locates an address within a statement.
type Debug struct {
	*Statement
	Index int // Byte offset into the statement.
}

// Debug finds the statement covering addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n := range prog.Statements {
		st := &prog.Statements[n]
		index := int(addr - st.Offset)
		if index < st.Size() {
			dbg = Debug{
				Statement: st,
				Index:     index,
			}
			break
		}
	}

	return
}

// LineNo returns the source line of the statement covering addr, or 0.
func (prog *Program) LineNo(addr uint16) int {
	dbg := prog.Debug(addr)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Items iterates over every item with its load address.
func (prog *Program) Items() iter.Seq2[uint16, machine.Item] {
	return func(yield func(addr uint16, item machine.Item) bool) {
		for _, st := range prog.Statements {
			addr := st.Offset
			for _, item := range st.Items {
				if !yield(addr, item) {
					return
				}
				addr += uint16(item.Size())
			}
		}
	}
}

// Segments merges adjacent statements into contiguous segments.
func (prog *Program) Segments() (segs []Segment, err error) {
	for _, st := range prog.Statements {
		var data []byte
		data, err = st.Bytes()
		if err != nil {
			return
		}
		if len(data) == 0 {
			continue
		}
		if n := len(segs); n > 0 {
			last := &segs[n-1]
			if last.Offset+uint16(len(last.Data)) == st.Offset && len(last.Data)+len(data) <= machine.MEMORY_SIZE {
				last.Data = append(last.Data, data...)
				continue
			}
		}
		segs = append(segs, Segment{Offset: st.Offset, Data: data})
	}
	return
}

// Load writes the program into the machine memory, and sets the execution
// pointer to the program entry.
func (prog *Program) Load(m *machine.Machine) (err error) {
	for _, st := range prog.Statements {
		_, err = m.Load(st.Items, st.Offset)
		if err != nil {
			return
		}
	}
	m.Ep = prog.Entry
	return
}

// Listing writes an address annotated listing of the program.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, st := range prog.Statements {
		addr := st.Offset
		for n, item := range st.Items {
			source := ""
			if n == 0 {
				source = fmt.Sprintf("; %d: %s", st.LineNo, strings.Join(st.Words, " "))
			}
			line := fmt.Sprintf("0x%04x  %-32s %s", addr, item, source)
			_, err = fmt.Fprintln(w, strings.TrimRight(line, " "))
			if err != nil {
				return
			}
			addr += uint16(item.Size())
		}
	}
	return
}
