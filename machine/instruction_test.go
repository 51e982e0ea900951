package machine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sample makes an instruction of op with every operand populated.
func sample(op Opcode) (inst Instruction) {
	inst = Make(op, 0xBEEF, 0x0180)
	for _, kind := range op.Operands() {
		switch kind {
		case OPERAND_CHOICE:
			inst = MakeChoiceSet(CHOICE_SOME_SOMETHING_SOME)
		case OPERAND_ARRAY:
			var array [ARRAY_LEN]int8
			for n := range array {
				array[n] = int8(n*7 - 100)
			}
			inst = MakeLdir(array)
		}
	}
	return
}

func TestInstruction_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	for n := range OP_COUNT {
		op := Opcode(n)
		for _, origin := range []uint16{0, 0x1234, 0xfffe, 0xffff} {
			inst := sample(op)

			mem := &Memory{}
			cursor := origin
			assert.NoError(Encode(inst, mem, &cursor), op.String())
			assert.Equal(origin+uint16(inst.Size()), cursor, op.String())

			cursor = origin
			decoded, err := Decode(mem, &cursor)
			assert.NoError(err, op.String())
			assert.Equal(inst, decoded, op.String())
			assert.Equal(origin+uint16(inst.Size()), cursor, op.String())
		}
	}
}

func TestInstruction_Size(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		op   Opcode
		size int
	}{
		{OP_NOP, 1},
		{OP_LDAR, 3},
		{OP_SETR, 4},
		{OP_SETIR, 3},
		{OP_LDIR, 1 + ARRAY_LEN},
		{OP_CHOICE_SET, 2},
		{OP_SET_SENTIENCE, 2},
		{OP_DEBUG_MEMORY, 5},
		{OP_SHOW_CHOICE, 1},
	}

	for _, entry := range table {
		assert.Equal(entry.size, entry.op.Size(), entry.op.String())
		data, err := sample(entry.op).Bytes()
		assert.NoError(err)
		assert.Equal(entry.size, len(data), entry.op.String())
	}
}

func TestInstruction_Encoding(t *testing.T) {
	assert := assert.New(t)

	data, err := Make(OP_SETR, 3, 0x7001).Bytes()
	assert.NoError(err)
	assert.Equal([]byte{byte(OP_SETR), 3, 0x70, 0x01}, data)

	data, err = MakeSetir(2, -1).Bytes()
	assert.NoError(err)
	assert.Equal([]byte{byte(OP_SETIR), 2, 0xff}, data)
	assert.Equal(int8(-1), MakeSetir(2, -1).I8(1))

	data, err = Make(OP_DEBUG_STACK, 0x0102, 0x0304).Bytes()
	assert.NoError(err)
	assert.Equal([]byte{byte(OP_DEBUG_STACK), 1, 2, 3, 4}, data)
}

func TestDecode_Invalid(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}
	mem[0x10] = OP_COUNT
	cursor := uint16(0x10)
	_, err := Decode(mem, &cursor)
	assert.ErrorIs(err, ErrOpcodeInvalid)
	assert.Equal(uint16(0x10), cursor)

	var de *ErrDecode
	assert.True(errors.As(err, &de))
	assert.Equal(uint16(0x10), de.Address)
	assert.Equal(byte(OP_COUNT), de.Opcode)

	mem[0x20] = byte(OP_CHOICE_SET)
	mem[0x21] = CHOICE_COUNT
	cursor = 0x20
	_, err = Decode(mem, &cursor)
	assert.ErrorIs(err, ErrChoiceInvalid)
	assert.Equal(uint16(0x20), cursor)

	_, err = Instruction{Opcode: 0xff}.Bytes()
	assert.ErrorIs(err, ErrOpcodeInvalid)

	data, err := MakeChoiceSet(Choice(7)).Bytes()
	assert.ErrorIs(err, ErrChoiceInvalid)
	assert.Nil(data)

	cursor = 0x30
	err = Encode(MakeChoiceSet(CHOICE_COUNT), mem, &cursor)
	assert.ErrorIs(err, ErrChoiceInvalid)
	assert.Equal(uint16(0x30), cursor)
	assert.Equal(byte(0), mem[0x30])
}

func TestDecode_Bool(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{byte(OP_SET_PAPERCLIPS), 0x80}
	cursor := uint16(0)
	inst, err := Decode(mem, &cursor)
	assert.NoError(err)
	assert.Equal(MakeBool(OP_SET_PAPERCLIPS, true), inst)
	assert.True(inst.Bool(0))
}

func TestInstruction_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("nop", Make(OP_NOP).String())
	assert.Equal("setr 3 0x7001", Make(OP_SETR, 3, 0x7001).String())
	assert.Equal("setir 2 -1", MakeSetir(2, -1).String())
	assert.Equal("setsentience true", MakeBool(OP_SET_SENTIENCE, true).String())
	assert.Equal("choiceset some-nothing", MakeChoiceSet(CHOICE_SOME_NOTHING).String())
	assert.Equal("Opcode(0xff)", Opcode(0xff).String())

	for n := range OP_COUNT {
		op := Opcode(n)
		found, ok := LookupOpcode(op.String())
		assert.True(ok)
		assert.Equal(op, found)
	}
}

func FuzzDecode(f *testing.F) {
	for n := range OP_COUNT {
		data, _ := sample(Opcode(n)).Bytes()
		f.Add(data)
	}
	f.Add([]byte{0xff})
	f.Add([]byte{byte(OP_CHOICE_SET), 0x05})

	f.Fuzz(func(t *testing.T, data []byte) {
		assert := assert.New(t)

		mem := &Memory{}
		copy(mem[:], data)

		cursor := uint16(0)
		inst, err := Decode(mem, &cursor)
		if err != nil {
			assert.Equal(uint16(0), cursor)
			return
		}
		assert.Equal(uint16(inst.Size()), cursor)

		again := &Memory{}
		end := uint16(0)
		assert.NoError(Encode(inst, again, &end))
		assert.Equal(cursor, end)

		end = 0
		decoded, err := Decode(again, &end)
		assert.NoError(err)
		assert.Equal(inst, decoded)
		assert.Equal(cursor, end)
	})
}

func TestOperandKind(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		kind OperandKind
		name string
		size int
	}{
		{OPERAND_U8, "u8", 1},
		{OPERAND_I8, "i8", 1},
		{OPERAND_U16, "u16", 2},
		{OPERAND_BOOL, "bool", 1},
		{OPERAND_CHOICE, "choice", 1},
		{OPERAND_ARRAY, "array", ARRAY_LEN},
	}

	for _, entry := range table {
		assert.Equal(entry.name, entry.kind.String())
		assert.Equal(entry.size, entry.kind.Size(), entry.name)
	}

	assert.Equal("OperandKind(0)", OperandKind(0).String())
	assert.Equal("OperandKind(7)", OperandKind(7).String())
}
