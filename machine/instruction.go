package machine

import (
	"fmt"
	"strings"
)

const (
	ARRAY_LEN = 37 // Slots in the array register.
)

// Instruction is a decoded instruction. Args holds the scalar operands in
// layout order; Array holds the operand of ldir.
type Instruction struct {
	Opcode Opcode
	Args   [2]uint16
	Array  [ARRAY_LEN]int8
}

// normalized masks each argument to the width of its operand.
func normalized(op Opcode, args []uint16) (out [2]uint16) {
	for n, kind := range op.Operands() {
		if n >= len(args) || n >= len(out) {
			break
		}
		switch kind {
		case OPERAND_U16:
			out[n] = args[n]
		case OPERAND_BOOL:
			if args[n] != 0 {
				out[n] = 1
			}
		case OPERAND_ARRAY:
		default:
			out[n] = args[n] & 0xff
		}
	}
	return
}

// Make an instruction from an opcode and its scalar operands.
// Signed byte operands are given as their two's complement bit pattern.
func Make(op Opcode, args ...uint16) Instruction {
	return Instruction{Opcode: op, Args: normalized(op, args)}
}

// MakeLdir makes a bulk array load.
func MakeLdir(array [ARRAY_LEN]int8) Instruction {
	return Instruction{Opcode: OP_LDIR, Array: array}
}

// MakeSetir makes an array slot immediate store.
func MakeSetir(index uint8, value int8) Instruction {
	return Make(OP_SETIR, uint16(index), uint16(uint8(value)))
}

// MakeChoiceSet makes a choice register store.
func MakeChoiceSet(choice Choice) Instruction {
	return Make(OP_CHOICE_SET, uint16(choice))
}

// MakeBool makes a single boolean operand instruction.
func MakeBool(op Opcode, value bool) Instruction {
	var arg uint16
	if value {
		arg = 1
	}
	return Make(op, arg)
}

// Arg returns the n'th scalar operand.
func (inst Instruction) Arg(n int) uint16 {
	return inst.Args[n]
}

// U8 returns the n'th operand as an unsigned byte.
func (inst Instruction) U8(n int) uint8 {
	return uint8(inst.Args[n])
}

// I8 returns the n'th operand as a signed byte.
func (inst Instruction) I8(n int) int8 {
	return int8(uint8(inst.Args[n]))
}

// Bool returns the n'th operand as a boolean.
func (inst Instruction) Bool(n int) bool {
	return inst.Args[n] != 0
}

// Choice returns the choice operand.
func (inst Instruction) Choice() Choice {
	return Choice(inst.Args[0])
}

// Size of the encoded instruction.
func (inst Instruction) Size() int {
	return inst.Opcode.Size()
}

// Bytes returns the encoded instruction.
func (inst Instruction) Bytes() (data []byte, err error) {
	op := inst.Opcode
	if !op.Valid() {
		err = &ErrDecode{Opcode: byte(op), Err: ErrOpcodeInvalid}
		return
	}

	data = make([]byte, 1, op.Size())
	data[0] = byte(op)
	for n, kind := range op.Operands() {
		if kind == OPERAND_CHOICE && !inst.Choice().Valid() {
			data = nil
			err = &ErrDecode{Opcode: byte(op), Err: ErrChoiceInvalid}
			return
		}
		switch kind {
		case OPERAND_U16:
			data = append(data, byte(inst.Args[n]>>8), byte(inst.Args[n]))
		case OPERAND_ARRAY:
			for _, v := range inst.Array {
				data = append(data, byte(v))
			}
		default:
			data = append(data, byte(inst.Args[n]))
		}
	}

	return
}

// Encode writes the instruction at *cursor, advancing it past the
// instruction. The write wraps at the end of memory.
func Encode(inst Instruction, mem *Memory, cursor *uint16) (err error) {
	data, err := inst.Bytes()
	if err != nil {
		return
	}
	*cursor = mem.WriteBytes(*cursor, data)
	return
}

// Decode reads the instruction at *cursor. On success the cursor advances
// by exactly the bytes consumed; on failure it is unchanged.
func Decode(mem *Memory, cursor *uint16) (inst Instruction, err error) {
	addr := *cursor
	pc := addr

	op := Opcode(mem[pc])
	pc++
	if !op.Valid() {
		err = &ErrDecode{Address: addr, Opcode: byte(op), Err: ErrOpcodeInvalid}
		return
	}

	inst.Opcode = op
	for n, kind := range op.Operands() {
		switch kind {
		case OPERAND_U8, OPERAND_I8:
			inst.Args[n] = uint16(mem[pc])
		case OPERAND_BOOL:
			if mem[pc] != 0 {
				inst.Args[n] = 1
			}
		case OPERAND_CHOICE:
			choice := Choice(mem[pc])
			if !choice.Valid() {
				inst = Instruction{}
				err = &ErrDecode{Address: addr, Opcode: byte(op), Err: ErrChoiceInvalid}
				return
			}
			inst.Args[n] = uint16(choice)
		case OPERAND_U16:
			inst.Args[n] = mem.ReadU16(pc)
		case OPERAND_ARRAY:
			for i := range inst.Array {
				inst.Array[i] = int8(mem[pc+uint16(i)])
			}
		}
		pc += uint16(kind.Size())
	}

	*cursor = pc
	return
}

// String renders the instruction in assembler syntax.
func (inst Instruction) String() string {
	words := []string{inst.Opcode.String()}
	for n, kind := range inst.Opcode.Operands() {
		switch kind {
		case OPERAND_U8:
			words = append(words, fmt.Sprintf("%d", inst.U8(n)))
		case OPERAND_I8:
			words = append(words, fmt.Sprintf("%d", inst.I8(n)))
		case OPERAND_U16:
			words = append(words, fmt.Sprintf("0x%04x", inst.Args[n]))
		case OPERAND_BOOL:
			words = append(words, fmt.Sprintf("%v", inst.Bool(n)))
		case OPERAND_CHOICE:
			words = append(words, inst.Choice().Token())
		case OPERAND_ARRAY:
			for _, v := range inst.Array {
				words = append(words, fmt.Sprintf("%d", v))
			}
		}
	}
	return strings.Join(words, " ")
}
