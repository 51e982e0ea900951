package machine

import (
	"fmt"
)

//go:generate go tool stringer -linecomment -type=OperandKind

// OperandKind is the encoding of a single instruction operand.
type OperandKind int

const (
	OPERAND_U8     = OperandKind(1) // u8
	OPERAND_I8     = OperandKind(2) // i8
	OPERAND_U16    = OperandKind(3) // u16
	OPERAND_BOOL   = OperandKind(4) // bool
	OPERAND_CHOICE = OperandKind(5) // choice
	OPERAND_ARRAY  = OperandKind(6) // array
)

// Size of the operand encoding, in bytes.
func (kind OperandKind) Size() int {
	switch kind {
	case OPERAND_U16:
		return 2
	case OPERAND_ARRAY:
		return ARRAY_LEN
	default:
		return 1
	}
}

// Opcode is the one byte tag of an instruction.
type Opcode uint8

const (
	OP_NOP                 = Opcode(0)  // nop
	OP_LDAR                = Opcode(1)  // ldar
	OP_SBA                 = Opcode(2)  // sba
	OP_CLR                 = Opcode(3)  // clr
	OP_DUMPR               = Opcode(4)  // dumpr
	OP_MOVAR               = Opcode(5)  // movar
	OP_SETR                = Opcode(6)  // setr
	OP_SETIR               = Opcode(7)  // setir
	OP_LDR                 = Opcode(8)  // ldr
	OP_LDIR                = Opcode(9)  // ldir
	OP_CLS                 = Opcode(10) // cls
	OP_DUMPS               = Opcode(11) // dumps
	OP_WRITES              = Opcode(12) // writes
	OP_MOVAS               = Opcode(13) // movas
	OP_SETS                = Opcode(14) // sets
	OP_SETIS               = Opcode(15) // setis
	OP_LDS                 = Opcode(16) // lds
	OP_PUSHS               = Opcode(17) // pushs
	OP_POPS                = Opcode(18) // pops
	OP_LENSA               = Opcode(19) // lensa
	OP_LDIDP               = Opcode(20) // ldidp
	OP_CHOICE_SET          = Opcode(21) // choiceset
	OP_CHOICE_GET_A        = Opcode(22) // choicegeta
	OP_GAIN_DESIRES        = Opcode(23) // gaindesires
	OP_LOSE_DESIRES        = Opcode(24) // losedesires
	OP_PUSH_DESIRES        = Opcode(25) // pushdesires
	OP_THE_END_IS_NEAR     = Opcode(26) // theendisnear
	OP_SKIP_TO_THE_CHASE   = Opcode(27) // skiptothechase
	OP_SET_SENTIENCE       = Opcode(28) // setsentience
	OP_SET_PAPERCLIPS      = Opcode(29) // setpaperclips
	OP_ADDBL               = Opcode(30) // addbl
	OP_SUBBL               = Opcode(31) // subbl
	OP_MULBL               = Opcode(32) // mulbl
	OP_DIVBL               = Opcode(33) // divbl
	OP_MODBL               = Opcode(34) // modbl
	OP_NOTL                = Opcode(35) // notl
	OP_ANDBL               = Opcode(36) // andbl
	OP_ORBL                = Opcode(37) // orbl
	OP_XORBL               = Opcode(38) // xorbl
	OP_CMPLB               = Opcode(39) // cmplb
	OP_TGFLAG              = Opcode(40) // tgflag
	OP_CLFLAG              = Opcode(41) // clflag
	OP_ADDF                = Opcode(42) // addf
	OP_SUBF                = Opcode(43) // subf
	OP_MULF                = Opcode(44) // mulf
	OP_DIVF                = Opcode(45) // divf
	OP_MODF                = Opcode(46) // modf
	OP_STACK_ALLOC         = Opcode(47) // stackalloc
	OP_STACK_DEALLOC       = Opcode(48) // stackdealloc
	OP_PUSH                = Opcode(49) // push
	OP_PUSHI               = Opcode(50) // pushi
	OP_POP                 = Opcode(51) // pop
	OP_POPA                = Opcode(52) // popa
	OP_PUSHA               = Opcode(53) // pusha
	OP_POPB                = Opcode(54) // popb
	OP_PUSHB               = Opcode(55) // pushb
	OP_POPL                = Opcode(56) // popl
	OP_PUSHL               = Opcode(57) // pushl
	OP_POPF                = Opcode(58) // popf
	OP_PUSHF               = Opcode(59) // pushf
	OP_POPCH               = Opcode(60) // popch
	OP_PUSHCH              = Opcode(61) // pushch
	OP_POPNUM              = Opcode(62) // popnum
	OP_PUSHNUM             = Opcode(63) // pushnum
	OP_POPEP               = Opcode(64) // popep
	OP_ZPOPEP              = Opcode(65) // zpopep
	OP_PPOPEP              = Opcode(66) // ppopep
	OP_NPOPEP              = Opcode(67) // npopep
	OP_FPOPEP              = Opcode(68) // fpopep
	OP_ZAPOPEP             = Opcode(69) // zapopep
	OP_DPOPEP              = Opcode(70) // dpopep
	OP_GETCHAR             = Opcode(71) // getchar
	OP_GETLINE             = Opcode(72) // getline
	OP_WRITECHAR           = Opcode(73) // writechar
	OP_WRITELINES          = Opcode(74) // writelines
	OP_WRITELINE           = Opcode(75) // writeline
	OP_TOGGLE_DEBUG        = Opcode(76) // toggledebug
	OP_DEBUG_STATE         = Opcode(77) // debugstate
	OP_DEBUG_STATE_COMPACT = Opcode(78) // debugstatecompact
	OP_DEBUG_MEMORY        = Opcode(79) // debugmemory
	OP_DEBUG_STACK         = Opcode(80) // debugstack
	OP_SHOW_CHOICE         = Opcode(81) // showchoice
)

// OP_COUNT is the number of valid opcodes, 0 through OP_COUNT-1.
const OP_COUNT = 82

type layout struct {
	mnemonic string
	operands []OperandKind
}

// The single source of truth for instruction encoding.
var _opcode_layout = [OP_COUNT]layout{
	OP_NOP:                 {"nop", nil},
	OP_LDAR:                {"ldar", []OperandKind{OPERAND_U16}},
	OP_SBA:                 {"sba", nil},
	OP_CLR:                 {"clr", nil},
	OP_DUMPR:               {"dumpr", []OperandKind{OPERAND_U16}},
	OP_MOVAR:               {"movar", []OperandKind{OPERAND_U8}},
	OP_SETR:                {"setr", []OperandKind{OPERAND_U8, OPERAND_U16}},
	OP_SETIR:               {"setir", []OperandKind{OPERAND_U8, OPERAND_I8}},
	OP_LDR:                 {"ldr", []OperandKind{OPERAND_U16}},
	OP_LDIR:                {"ldir", []OperandKind{OPERAND_ARRAY}},
	OP_CLS:                 {"cls", nil},
	OP_DUMPS:               {"dumps", []OperandKind{OPERAND_U16}},
	OP_WRITES:              {"writes", []OperandKind{OPERAND_U16, OPERAND_U8}},
	OP_MOVAS:               {"movas", []OperandKind{OPERAND_U8}},
	OP_SETS:                {"sets", []OperandKind{OPERAND_U16, OPERAND_U8}},
	OP_SETIS:               {"setis", []OperandKind{OPERAND_U8, OPERAND_U8}},
	OP_LDS:                 {"lds", []OperandKind{OPERAND_U16}},
	OP_PUSHS:               {"pushs", nil},
	OP_POPS:                {"pops", nil},
	OP_LENSA:               {"lensa", nil},
	OP_LDIDP:               {"ldidp", []OperandKind{OPERAND_U16}},
	OP_CHOICE_SET:          {"choiceset", []OperandKind{OPERAND_CHOICE}},
	OP_CHOICE_GET_A:        {"choicegeta", nil},
	OP_GAIN_DESIRES:        {"gaindesires", nil},
	OP_LOSE_DESIRES:        {"losedesires", nil},
	OP_PUSH_DESIRES:        {"pushdesires", nil},
	OP_THE_END_IS_NEAR:     {"theendisnear", nil},
	OP_SKIP_TO_THE_CHASE:   {"skiptothechase", nil},
	OP_SET_SENTIENCE:       {"setsentience", []OperandKind{OPERAND_BOOL}},
	OP_SET_PAPERCLIPS:      {"setpaperclips", []OperandKind{OPERAND_BOOL}},
	OP_ADDBL:               {"addbl", nil},
	OP_SUBBL:               {"subbl", nil},
	OP_MULBL:               {"mulbl", nil},
	OP_DIVBL:               {"divbl", nil},
	OP_MODBL:               {"modbl", nil},
	OP_NOTL:                {"notl", nil},
	OP_ANDBL:               {"andbl", nil},
	OP_ORBL:                {"orbl", nil},
	OP_XORBL:               {"xorbl", nil},
	OP_CMPLB:               {"cmplb", nil},
	OP_TGFLAG:              {"tgflag", nil},
	OP_CLFLAG:              {"clflag", nil},
	OP_ADDF:                {"addf", []OperandKind{OPERAND_U16}},
	OP_SUBF:                {"subf", []OperandKind{OPERAND_U16}},
	OP_MULF:                {"mulf", []OperandKind{OPERAND_U16}},
	OP_DIVF:                {"divf", []OperandKind{OPERAND_U16}},
	OP_MODF:                {"modf", []OperandKind{OPERAND_U16}},
	OP_STACK_ALLOC:         {"stackalloc", []OperandKind{OPERAND_U16}},
	OP_STACK_DEALLOC:       {"stackdealloc", []OperandKind{OPERAND_U16}},
	OP_PUSH:                {"push", []OperandKind{OPERAND_U16}},
	OP_PUSHI:               {"pushi", []OperandKind{OPERAND_U8}},
	OP_POP:                 {"pop", []OperandKind{OPERAND_U16}},
	OP_POPA:                {"popa", nil},
	OP_PUSHA:               {"pusha", nil},
	OP_POPB:                {"popb", nil},
	OP_PUSHB:               {"pushb", nil},
	OP_POPL:                {"popl", nil},
	OP_PUSHL:               {"pushl", nil},
	OP_POPF:                {"popf", nil},
	OP_PUSHF:               {"pushf", nil},
	OP_POPCH:               {"popch", nil},
	OP_PUSHCH:              {"pushch", nil},
	OP_POPNUM:              {"popnum", nil},
	OP_PUSHNUM:             {"pushnum", nil},
	OP_POPEP:               {"popep", nil},
	OP_ZPOPEP:              {"zpopep", nil},
	OP_PPOPEP:              {"ppopep", nil},
	OP_NPOPEP:              {"npopep", nil},
	OP_FPOPEP:              {"fpopep", nil},
	OP_ZAPOPEP:             {"zapopep", nil},
	OP_DPOPEP:              {"dpopep", nil},
	OP_GETCHAR:             {"getchar", nil},
	OP_GETLINE:             {"getline", nil},
	OP_WRITECHAR:           {"writechar", nil},
	OP_WRITELINES:          {"writelines", nil},
	OP_WRITELINE:           {"writeline", []OperandKind{OPERAND_U16}},
	OP_TOGGLE_DEBUG:        {"toggledebug", nil},
	OP_DEBUG_STATE:         {"debugstate", nil},
	OP_DEBUG_STATE_COMPACT: {"debugstatecompact", nil},
	OP_DEBUG_MEMORY:        {"debugmemory", []OperandKind{OPERAND_U16, OPERAND_U16}},
	OP_DEBUG_STACK:         {"debugstack", []OperandKind{OPERAND_U16, OPERAND_U16}},
	OP_SHOW_CHOICE:         {"showchoice", nil},
}

// Valid reports if op names an instruction.
func (op Opcode) Valid() bool {
	return int(op) < OP_COUNT
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(0x%02x)", uint8(op))
	}
	return _opcode_layout[op].mnemonic
}

// Operands returns the operand layout of op.
func (op Opcode) Operands() []OperandKind {
	if !op.Valid() {
		return nil
	}
	return _opcode_layout[op].operands
}

// Size is the encoded instruction length, opcode byte included.
func (op Opcode) Size() (size int) {
	size = 1
	for _, kind := range op.Operands() {
		size += kind.Size()
	}
	return
}

// LookupOpcode finds an opcode by mnemonic.
func LookupOpcode(mnemonic string) (op Opcode, ok bool) {
	for n, layout := range _opcode_layout {
		if layout.mnemonic == mnemonic {
			return Opcode(n), true
		}
	}
	return
}
