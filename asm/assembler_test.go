package asm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/esovm/console"
	"github.com/ezrec/esovm/machine"
)

func parse(t *testing.T, lines ...string) *Program {
	t.Helper()

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return prog
}

func parseFile(t *testing.T, path string) *Program {
	t.Helper()

	inf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer inf.Close()

	asm := &Assembler{}
	prog, err := asm.Parse(inf)
	if err != nil {
		t.Fatal(err)
	}

	return prog
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))
	assert.Equal(uint16(0), prog.Entry)

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("46", asm.Equate["DOT"])
	assert.Equal("28657", asm.Equate["DOT_POINTER"])
	assert.Equal(fmt.Sprintf("%d", machine.STACK_CAPACITY), asm.Equate["STACK_CAPACITY"])
	assert.Equal(fmt.Sprintf("%d", machine.TEXT_CAPACITY), asm.Equate["TEXT_CAPACITY"])
	assert.Equal(fmt.Sprintf("%d", machine.ARRAY_LEN), asm.Equate["ARRAY_LEN"])
	for n, addr := range machine.DotPointerAllowList() {
		assert.Equal(fmt.Sprintf("%d", addr), asm.Equate[fmt.Sprintf("DOT_POINTER_%d", n)])
	}
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		"nop",
		"pushi 0x2e",
		"pushi -1",
		"pop 28657",
		"setr 2 0x1234",
		"setir 3 -5",
		"choiceset some-nothing",
		"choiceset 4",
		"setsentience true",
		"setpaperclips 0",
		"writes 0x100 12",
	)

	expected := []machine.Instruction{
		machine.Make(machine.OP_NOP),
		machine.Make(machine.OP_PUSHI, 0x2e),
		machine.Make(machine.OP_PUSHI, 0xff),
		machine.Make(machine.OP_POP, 28657),
		machine.Make(machine.OP_SETR, 2, 0x1234),
		machine.MakeSetir(3, -5),
		machine.MakeChoiceSet(machine.CHOICE_SOME_NOTHING),
		machine.MakeChoiceSet(machine.CHOICE_SOME_SOMETHING_VALUELESS),
		machine.MakeBool(machine.OP_SET_SENTIENCE, true),
		machine.MakeBool(machine.OP_SET_PAPERCLIPS, false),
		machine.Make(machine.OP_WRITES, 0x100, 12),
	}

	assert.Equal(len(expected), len(prog.Statements))
	offset := uint16(0)
	for n, st := range prog.Statements {
		if n >= len(expected) {
			break
		}
		assert.Equal(n+1, st.LineNo)
		assert.Equal(offset, st.Offset)
		assert.Equal([]machine.Item{expected[n]}, st.Items)
		offset += uint16(st.Size())
	}
}

func TestAssemblerArray(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		"ldir 1 2 3",
		"array -1 -2",
	)

	var a1, a2 [machine.ARRAY_LEN]int8
	a1[0], a1[1], a1[2] = 1, 2, 3
	a2[0], a2[1] = -1, -2

	assert.Equal(2, len(prog.Statements))
	assert.Equal([]machine.Item{machine.MakeLdir(a1)}, prog.Statements[0].Items)
	assert.Equal([]machine.Item{machine.MakeLdir(a2)}, prog.Statements[1].Items)
	assert.Equal(uint16(1+machine.ARRAY_LEN), prog.Statements[1].Offset)

	_, err := (&Assembler{}).Parse(strings.NewReader("ldir" + strings.Repeat(" 1", machine.ARRAY_LEN+1)))
	assert.ErrorIs(err, ErrOpcodeExtraArgs)
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		`data "a;b" 'c' '\n' 0 ; comment`,
		"byte 0xff",
		"byte 1 2",
	)

	assert.Equal(3, len(prog.Statements))
	assert.Equal([]machine.Item{machine.Data("a;bc\n\x00")}, prog.Statements[0].Items)
	assert.Equal([]machine.Item{machine.Byte(0xff)}, prog.Statements[1].Items)
	assert.Equal([]machine.Item{machine.Data{1, 2}}, prog.Statements[2].Items)
	assert.Equal(uint16(6), prog.Statements[1].Offset)
	assert.Equal(uint16(7), prog.Statements[2].Offset)
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		".org 0x1234",
		"start: jump end",
		"nop",
		"end:",
		"back: halt",
		"writeline start",
	)

	assert.Equal(uint16(0x1234), prog.Labels["start"])
	assert.Equal(uint16(0x123a), prog.Labels["end"])
	assert.Equal(uint16(0x123a), prog.Labels["back"])

	assert.Equal([]machine.Item{
		machine.Make(machine.OP_PUSHI, 0x12),
		machine.Make(machine.OP_PUSHI, 0x3a),
		machine.Make(machine.OP_POPEP),
	}, prog.Statements[0].Items)
	assert.Equal([]machine.Item{
		machine.Make(machine.OP_WRITELINE, 0x1234),
	}, prog.Statements[3].Items)

	// Entry defaults to the origin.
	assert.Equal(uint16(0), prog.Entry)
}

func TestAssemblerEntry(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		".entry main",
		"data \"x\" 0",
		"main: halt",
	)
	assert.Equal(uint16(2), prog.Entry)

	asm := &Assembler{Origin: 0x100}
	prog, err := asm.Parse(strings.NewReader("nop\n"))
	assert.NoError(err)
	assert.Equal(uint16(0x100), prog.Entry)
	assert.Equal(uint16(0x100), prog.Statements[0].Offset)
}

func TestAssemblerJumps(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		"top: jz top",
		"call sub",
		"jza top",
		"sub: return",
	)

	assert.Equal([]machine.Item{
		machine.Make(machine.OP_PUSHI, 0),
		machine.Make(machine.OP_PUSHI, 0),
		machine.Make(machine.OP_ZPOPEP),
		machine.Make(machine.OP_STACK_DEALLOC, 2),
	}, prog.Statements[0].Items)

	// call pushes the return address, then the target.
	assert.Equal(uint16(8), prog.Statements[1].Offset)
	assert.Equal(uint16(8+9+8), prog.Labels["sub"])
	assert.Equal([]machine.Item{
		machine.Make(machine.OP_PUSHI, 0),
		machine.Make(machine.OP_PUSHI, 8+9),
		machine.Make(machine.OP_PUSHI, 0),
		machine.Make(machine.OP_PUSHI, 8+9+8),
		machine.Make(machine.OP_POPEP),
	}, prog.Statements[1].Items)
	assert.Equal(machine.Make(machine.OP_ZAPOPEP), prog.Statements[2].Items[2])
	assert.Equal([]machine.Item{machine.Make(machine.OP_POPEP)}, prog.Statements[3].Items)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		".equ TEN 10",
		"pushi TEN",
		"pushi $(TEN * 2)",
		".equ THIRTY $(3 * TEN)",
		"pushi THIRTY",
		"pushi $(LINENO)",
		"label:",
		"pop $(label + 0x100)",
	)

	assert.Equal(5, len(prog.Statements))
	assert.Equal(machine.Make(machine.OP_PUSHI, 10), prog.Statements[0].Items[0])
	assert.Equal(machine.Make(machine.OP_PUSHI, 20), prog.Statements[1].Items[0])
	assert.Equal(machine.Make(machine.OP_PUSHI, 30), prog.Statements[2].Items[0])
	assert.Equal(machine.Make(machine.OP_PUSHI, 6), prog.Statements[3].Items[0])
	assert.Equal(machine.Make(machine.OP_POP, 0x108), prog.Statements[4].Items[0])
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		".macro SETL value",
		"pushi $(value >> 8)",
		"pushi $(value & 0xff)",
		"popl",
		".endm",
		".macro SPIN count",
		"SETL count",
		"@top: subbl",
		"jp @top",
		".endm",
		"SPIN 0x1234",
		"SPIN 2",
	)

	assert.Equal(uint16(5), prog.Labels["SPIN_1_top"])
	assert.Equal(uint16(5+1+8+5), prog.Labels["SPIN_3_top"])

	assert.Equal(2, prog.Statements[0].LineNo)
	assert.Equal([]machine.Item{machine.Make(machine.OP_PUSHI, 0x12)}, prog.Statements[0].Items)
	assert.Equal([]machine.Item{machine.Make(machine.OP_PUSHI, 0x34)}, prog.Statements[1].Items)
	assert.Equal([]machine.Item{
		machine.Make(machine.OP_PUSHI, 0),
		machine.Make(machine.OP_PUSHI, 5),
		machine.Make(machine.OP_PPOPEP),
		machine.Make(machine.OP_STACK_DEALLOC, 2),
	}, prog.Statements[4].Items)
}

func TestAssemblerErrors(t *testing.T) {
	table := [](struct {
		name   string
		lineno int
		source string
		err    error
	}){
		{"invalid", 1, "bogus", ErrInstructionInvalid},
		{"missing", 1, "pushi", ErrOpcodeValueMissing},
		{"extra", 1, "nop 1", ErrOpcodeExtraArgs},
		{"label-duplicate", 2, "a:\na: nop", ErrLabelDuplicate},
		{"label-invalid", 1, "1a: nop", ErrLabelInvalid},
		{"equ-duplicate", 2, ".equ A 1\n.equ A 2", ErrEquateDuplicate},
		{"equ-syntax", 1, ".equ A", ErrEquateSyntax},
		{"org-syntax", 1, ".org", ErrOrgSyntax},
		{"entry-syntax", 1, ".entry", ErrEntrySyntax},
		{"macro-lonely", 2, ".macro X\nnop", ErrMacroLonely},
		{"macro-endm", 1, ".endm", ErrMacroLonelyEndm},
		{"macro-nesting", 2, ".macro X\n.macro Y", ErrMacroNesting},
		{"macro-duplicate", 3, ".macro X\n.endm\n.macro X\n.endm", ErrMacroDuplicate},
		{"macro-args", 3, ".macro X a\n.endm\nX", ErrMacroSyntax},
		{"macro-recursion", 4, ".macro R\nR\n.endm\nR", ErrMacroRecursion},
		{"unterminated", 1, `data "abc`, ErrStringUnterminated},
		{"data-empty", 1, "data", ErrDataEmpty},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			asm := &Assembler{}
			_, err := asm.Parse(strings.NewReader(entry.source))
			assert.ErrorIs(err, entry.err)

			var syntax *ErrSyntax
			if assert.True(errors.As(err, &syntax)) {
				assert.Equal(entry.lineno, syntax.LineNo)
			}
		})
	}
}

func TestAssemblerErrorValues(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader("pushi 256"))
	var erange ErrRange
	assert.True(errors.As(err, &erange))
	assert.Equal("256", erange.Word)

	_, err = asm.Parse(strings.NewReader("setsentience 2"))
	assert.True(errors.As(err, &erange))

	_, err = asm.Parse(strings.NewReader("choiceset maybe"))
	var enumber ErrParseNumber
	assert.True(errors.As(err, &enumber))

	_, err = asm.Parse(strings.NewReader("nop\njump nowhere\n"))
	var emissing ErrLabelMissing
	assert.True(errors.As(err, &emissing))
	assert.Equal(ErrLabelMissing("nowhere"), emissing)
	var syntax *ErrSyntax
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(2, syntax.LineNo)
	}

	_, err = asm.Parse(strings.NewReader("pushi $(1 +)"))
	assert.Error(err)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("COUNT", "7")
	asm.Predefine("DOT_POINTER", "1597")

	prog, err := asm.Parse(strings.NewReader("pushi COUNT\nldidp DOT_POINTER\n"))
	assert.NoError(err)
	assert.Equal(machine.Make(machine.OP_PUSHI, 7), prog.Statements[0].Items[0])
	assert.Equal(machine.Make(machine.OP_LDIDP, 1597), prog.Statements[1].Items[0])
}

func TestAssemblerDisassemble(t *testing.T) {
	assert := assert.New(t)

	prog := parse(t,
		"pushi DOT",
		"pop DOT_POINTER",
		"setir 1 -3",
		"choiceset some-something-nothing",
		"setpaperclips true",
		"array 1 -1 127 -128",
		"data \"xyz\" 0",
		"byte 0xff",
	)

	segs, err := prog.Segments()
	assert.NoError(err)
	assert.Equal(1, len(segs))

	var mem machine.Memory
	mem.WriteBytes(segs[0].Offset, segs[0].Data)

	var source []string
	for _, item := range machine.Disassemble(&mem, 0, uint16(len(segs[0].Data))) {
		source = append(source, item.String())
	}

	again := parse(t, source...)
	segs2, err := again.Segments()
	assert.NoError(err)
	assert.Equal(segs, segs2)
}

func TestAssemblerHello(t *testing.T) {
	assert := assert.New(t)

	prog := parseFile(t, "../examples/hello.esm")
	assert.Equal(uint16(13), prog.Labels["hello"])

	var out bytes.Buffer
	m := machine.New(machine.WithConsole(&console.Tape{Output: &out}))
	assert.NoError(prog.Load(m))

	exit, err := m.Run()
	assert.NoError(err)
	assert.Equal(uint8(0), exit)
	assert.True(m.Halted)
	assert.Equal("Hello, world!\n", out.String())
}

func TestAssemblerTruth(t *testing.T) {
	assert := assert.New(t)

	prog := parseFile(t, "../examples/truth.esm")

	var out bytes.Buffer
	m := machine.New(machine.WithConsole(&console.Tape{
		Input:  strings.NewReader("0"),
		Output: &out,
	}))
	assert.NoError(prog.Load(m))
	_, err := m.Run()
	assert.NoError(err)
	assert.Equal("0", out.String())

	out.Reset()
	m = machine.New(machine.WithConsole(&console.Tape{
		Input:  strings.NewReader("1"),
		Output: &out,
	}))
	assert.NoError(prog.Load(m))
	for range 200 {
		assert.NoError(m.Step())
	}
	assert.False(m.Halted)
	assert.True(strings.HasPrefix(out.String(), "1111"))
	assert.Equal("", strings.Trim(out.String(), "1"))
}

func TestAssemblerBottles(t *testing.T) {
	assert := assert.New(t)

	prog := parseFile(t, "../examples/bottles.esm")

	var out bytes.Buffer
	m := machine.New(machine.WithConsole(&console.Tape{Output: &out}))
	assert.NoError(prog.Load(m))

	_, err := m.Run()
	assert.NoError(err)

	text := out.String()
	assert.True(strings.HasPrefix(text,
		"99: bottles of beer on the wall, 99: bottles of beer.\n"+
			"Take one down and pass it around, 98: bottles of beer on the wall.\n\n"))
	assert.Contains(text,
		"1: bottles of beer on the wall, 1: bottles of beer.\n"+
			"Take one down and pass it around, no more bottles of beer on the wall.\n\n")
	assert.True(strings.HasSuffix(text,
		"No more bottles of beer on the wall, no more bottles of beer.\n"+
			"Go to the store and buy some more, 99: bottles of beer on the wall.\n\n"))
	assert.Equal(99, strings.Count(text, "Take one down"))
}
