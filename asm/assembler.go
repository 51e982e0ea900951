// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"github.com/ezrec/esovm/machine"
)

const (
	MACRO_DEPTH_LIMIT = 32 // Maximum nested macro expansion.
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"DOT":            fmt.Sprintf("%d", machine.DOT),
	"DOT_POINTER":    fmt.Sprintf("%d", machine.DOT_POINTER_DEFAULT),
	"STACK_CAPACITY": fmt.Sprintf("%d", machine.STACK_CAPACITY),
	"TEXT_CAPACITY":  fmt.Sprintf("%d", machine.TEXT_CAPACITY),
	"ARRAY_LEN":      fmt.Sprintf("%d", machine.ARRAY_LEN),
}

func init() {
	for n, addr := range machine.DotPointerAllowList() {
		sysEquate[fmt.Sprintf("DOT_POINTER_%d", n)] = fmt.Sprintf("%d", addr)
	}
}

// Label link selectors.
const (
	linkFull = iota // The whole 16-bit address.
	linkHigh        // The high byte.
	linkLow         // The low byte.
)

// link is an operand waiting for a label address.
type link struct {
	statement int
	item      int
	arg       int
	part      int
	label     string
}

// Assembler is a single pass macro assembler for the esoteric machine.
type Assembler struct {
	Verbose bool        // If set, verbosely logs the assembler actions.
	Origin  uint16      // Load address of the first statement.
	Logger  *zap.Logger // Logger for verbose output. Defaults to zap.L().

	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]uint16   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	offset     uint16 // Current load address.
	entry      string // Entry point word, if any.
	links      []link
	expansions int
	depth      int
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() *zap.Logger {
	if asm.Logger == nil {
		asm.Logger = zap.L().Named("asm")
	}
	return asm.Logger
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseNumber(word)
		return
	}
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// isIdentifier reports if word could name a label.
func isIdentifier(word string) bool {
	for n, r := range word {
		switch {
		case r == '_', unicode.IsLetter(r):
		case n > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return len(word) > 0
}

// Operand ranges, accepting both signed and unsigned spellings.
var operandRange = map[machine.OperandKind][2]int64{
	machine.OPERAND_U8:     {-128, 255},
	machine.OPERAND_I8:     {-128, 255},
	machine.OPERAND_U16:    {-32768, 65535},
	machine.OPERAND_BOOL:   {0, 1},
	machine.OPERAND_CHOICE: {0, machine.CHOICE_COUNT - 1},
}

// operand parses a word as an operand of a kind. 16-bit operands may name a
// label, which is returned for linking.
func (asm *Assembler) operand(kind machine.OperandKind, word string) (value uint16, label string, err error) {
	switch kind {
	case machine.OPERAND_BOOL:
		switch word {
		case "true":
			value = 1
			return
		case "false":
			value = 0
			return
		}
	case machine.OPERAND_CHOICE:
		if choice, ok := machine.LookupChoice(word); ok {
			value = uint16(choice)
			return
		}
	}

	v64, err := asm.valueOf(word)
	if err != nil {
		if kind == machine.OPERAND_U16 && isIdentifier(word) {
			label = word
			err = nil
		}
		return
	}

	limit := operandRange[kind]
	if v64 < limit[0] || v64 > limit[1] {
		err = ErrRange{Word: word, Kind: kind.String()}
		return
	}

	value = uint16(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	err = nil
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(int(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// stripComment removes a ';' comment that is not inside quotes.
func stripComment(text string) string {
	var quote rune
	escaped := false
	for n, r := range text {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote == 0 && r == ';':
			return text[:n]
		}
	}
	return text
}

// splitWords splits a line on white space, keeping quoted text together.
func splitWords(line string) (words []string, err error) {
	var word strings.Builder
	var quote rune
	escaped := false

	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case quote == 0 && unicode.IsSpace(r):
			flush()
			continue
		}
		word.WriteRune(r)
	}

	if quote != 0 {
		err = ErrStringUnterminated
		return
	}

	flush()
	return
}

// charValue converts a 'c' character literal to its value.
func charValue(word string) (value string, ok bool) {
	if len(word) < 3 || word[0] != '\'' || word[len(word)-1] != '\'' {
		return
	}
	str, err := strconv.Unquote(word)
	if err != nil {
		return
	}
	if len(str) != 1 {
		return
	}
	return fmt.Sprintf("%d", str[0]), true
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine parses a single line into words, handling equates, labels,
// and macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words, err = splitWords(line)
	if err != nil || len(words) == 0 {
		return
	}

	// Do 'x' evaluations
	for n, word := range words {
		if value, ok := charValue(word); ok {
			words[n] = value
		}
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		equate := words[2]
		if value, ok := asm.Equate[equate]; ok {
			equate = value
		}
		asm.Equate[words[1]] = equate
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !isIdentifier(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.offset
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		if asm.depth >= MACRO_DEPTH_LIMIT {
			err = ErrMacroRecursion
			return
		}

		asm.depth++
		asm.expansions++
		unique := fmt.Sprintf("%v_%v_", name, asm.expansions)

		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() {
			asm.Equate = old_equate
			asm.depth--
		}()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", unique)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint16, 16)
	asm.Statement = asm.Statement[:0]
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.offset = asm.Origin
	asm.entry = ""
	asm.links = nil
	asm.expansions = 0
	asm.depth = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().Debug("parse", zap.Int("line", lineno), zap.String("text", text))
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for _, link := range asm.links {
		addr, ok := asm.Label[link.label]
		if !ok {
			st := &asm.Statement[link.statement]
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			err = ErrLabelMissing(link.label)
			return
		}

		items := asm.Statement[link.statement].Items
		inst := items[link.item].(machine.Instruction)
		switch link.part {
		case linkFull:
			inst.Args[link.arg] = addr
		case linkHigh:
			inst.Args[link.arg] = addr >> 8
		case linkLow:
			inst.Args[link.arg] = addr & 0xff
		}
		items[link.item] = inst
	}

	entry := asm.Origin
	if len(asm.entry) > 0 {
		var label string
		entry, label, err = asm.operand(machine.OPERAND_U16, asm.entry)
		if err != nil {
			return
		}
		if len(label) > 0 {
			var ok bool
			entry, ok = asm.Label[label]
			if !ok {
				err = ErrLabelMissing(label)
				return
			}
		}
	}

	prog = &Program{
		Entry:      entry,
		Statements: slices.Clone(asm.Statement),
		Labels:     maps.Clone(asm.Label),
	}

	return
}

// Conditional jump pseudo-instructions.
var jumpMap = map[string]machine.Opcode{
	"jz":  machine.OP_ZPOPEP,
	"jp":  machine.OP_PPOPEP,
	"jn":  machine.OP_NPOPEP,
	"jf":  machine.OP_FPOPEP,
	"jza": machine.OP_ZAPOPEP,
	"jd":  machine.OP_DPOPEP,
}

// statement accumulates the items of a single statement.
type statement struct {
	items []machine.Item
	links []link
}

func (st *statement) add(item machine.Item) {
	st.items = append(st.items, item)
}

func (st *statement) size() (size int) {
	for _, item := range st.items {
		size += item.Size()
	}
	return
}

// pushAddr pushes a 16-bit address, high byte first.
func (asm *Assembler) pushAddr(st *statement, word string) (err error) {
	value, label, err := asm.operand(machine.OPERAND_U16, word)
	if err != nil {
		return
	}
	if len(label) > 0 {
		st.links = append(st.links,
			link{item: len(st.items), part: linkHigh, label: label},
			link{item: len(st.items) + 1, part: linkLow, label: label},
		)
	}
	st.add(machine.Make(machine.OP_PUSHI, value>>8))
	st.add(machine.Make(machine.OP_PUSHI, value&0xff))
	return
}

// dataBytes converts data words, quoted strings or byte values, to bytes.
func (asm *Assembler) dataBytes(words []string) (data []byte, err error) {
	for _, word := range words {
		if strings.HasPrefix(word, "\"") {
			var str string
			str, err = strconv.Unquote(word)
			if err != nil {
				err = ErrParseValue(word)
				return
			}
			data = append(data, str...)
			continue
		}
		var value uint16
		value, _, err = asm.operand(machine.OPERAND_U8, word)
		if err != nil {
			return
		}
		data = append(data, byte(value))
	}
	if len(data) == 0 {
		err = ErrDataEmpty
	}
	return
}

// instruction assembles a machine instruction.
func (asm *Assembler) instruction(st *statement, op machine.Opcode, args []string) (err error) {
	kinds := op.Operands()

	if len(kinds) == 1 && kinds[0] == machine.OPERAND_ARRAY {
		if len(args) > machine.ARRAY_LEN {
			err = ErrOpcodeExtraArgs
			return
		}
		var array [machine.ARRAY_LEN]int8
		for n, word := range args {
			var value uint16
			value, _, err = asm.operand(machine.OPERAND_I8, word)
			if err != nil {
				return
			}
			array[n] = int8(uint8(value))
		}
		st.add(machine.MakeLdir(array))
		return
	}

	if len(args) < len(kinds) {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > len(kinds) {
		err = ErrOpcodeExtraArgs
		return
	}

	values := make([]uint16, len(kinds))
	for n, kind := range kinds {
		var label string
		values[n], label, err = asm.operand(kind, args[n])
		if err != nil {
			return
		}
		if len(label) > 0 {
			st.links = append(st.links, link{item: len(st.items), arg: n, part: linkFull, label: label})
		}
	}

	st.add(machine.Make(op, values...))
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	st := &statement{}

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(st.items) == 0 {
			return
		}
		index := len(asm.Statement)
		for _, link := range st.links {
			link.statement = index
			asm.links = append(asm.links, link)
		}
		asm.Statement = append(asm.Statement, Statement{
			LineNo: lineno,
			Offset: asm.offset,
			Words:  initial_words,
			Items:  st.items,
		})
		asm.offset += uint16(st.size())
	}()

	// Alternate syntax substitutions
	switch {
	case words[0] == "array":
		words = append([]string{"ldir"}, words[1:]...)
	case len(words) == 1 && words[0] == "return":
		words = []string{"popep"}
	}

	args := words[1:]

	switch words[0] {
	case ".org":
		if len(args) != 1 {
			err = ErrOrgSyntax
			return
		}
		var value uint16
		var label string
		value, label, err = asm.operand(machine.OPERAND_U16, args[0])
		if err == nil && len(label) > 0 {
			err = ErrOrgSyntax
		}
		if err != nil {
			return
		}
		asm.offset = value
	case ".entry":
		if len(args) != 1 {
			err = ErrEntrySyntax
			return
		}
		asm.entry = args[0]
	case "data":
		var data []byte
		data, err = asm.dataBytes(args)
		if err != nil {
			return
		}
		st.add(machine.Data(data))
	case "byte":
		var data []byte
		data, err = asm.dataBytes(args)
		if err != nil {
			return
		}
		if len(data) == 1 {
			st.add(machine.Byte(data[0]))
		} else {
			st.add(machine.Data(data))
		}
	case "pushaddr":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		err = asm.pushAddr(st, args[0])
	case "jump":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		err = asm.pushAddr(st, args[0])
		st.add(machine.Make(machine.OP_POPEP))
	case "jz", "jp", "jn", "jf", "jza", "jd":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		err = asm.pushAddr(st, args[0])
		st.add(machine.Make(jumpMap[words[0]]))
		st.add(machine.Make(machine.OP_STACK_DEALLOC, 2))
	case "call":
		if len(args) != 1 {
			err = ErrOpcodeValueMissing
			return
		}
		// pushi, pushi, pushi, pushi, popep
		ret := asm.offset + 2*4 + 1
		err = asm.pushAddr(st, fmt.Sprintf("%d", ret))
		if err != nil {
			return
		}
		err = asm.pushAddr(st, args[0])
		st.add(machine.Make(machine.OP_POPEP))
	case "halt":
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		st.add(machine.Make(machine.OP_THE_END_IS_NEAR))
		st.add(machine.Make(machine.OP_SKIP_TO_THE_CHASE))
	default:
		op, ok := machine.LookupOpcode(words[0])
		if !ok {
			err = ErrInstructionInvalid
			return
		}
		err = asm.instruction(st, op, args)
	}

	return
}
