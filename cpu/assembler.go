// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// MACRO_DEPTH is the maximum nesting of macro expansions.
const MACRO_DEPTH = 16

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the 8080.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	addr       int // Current assembly address.
	depth      int // Current macro expansion depth.
	expansions int // Count of macro expansions, for '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// registerNames are the operand words that name registers or pairs.
var registerNames = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true, "H": true, "L": true,
	"M": true, "SP": true, "PSW": true,
}

func isRegister(word string) bool {
	return registerNames[strings.ToUpper(word)]
}

func isQuoted(word string) bool {
	if len(word) < 2 {
		return false
	}
	q := word[0]
	return (q == '\'' || q == '"') && word[len(word)-1] == q
}

// unquote returns the bytes of a quoted string, with escapes expanded.
func unquote(word string) (data []byte, err error) {
	if !isQuoted(word) {
		err = ErrStringOpen
		return
	}

	text := word[1 : len(word)-1]
	for n := 0; n < len(text); n++ {
		ch := text[n]
		if ch != '\\' {
			data = append(data, ch)
			continue
		}
		n++
		if n == len(text) {
			err = ErrParseCharacter(word)
			return
		}
		switch text[n] {
		case 'n':
			ch = '\n'
		case 'r':
			ch = '\r'
		case 't':
			ch = '\t'
		case 'e':
			ch = '\033'
		case '0':
			ch = 0
		case '\\', '\'', '"':
			ch = text[n]
		default:
			err = ErrParseCharacter(word)
			return
		}
		data = append(data, ch)
	}

	return
}

// stripComment removes a ';' comment, ignoring any ';' within quotes.
func stripComment(line string) string {
	var quote byte
	for n := 0; n < len(line); n++ {
		ch := line[n]
		switch {
		case quote != 0 && ch == '\\':
			n++
		case quote != 0 && ch == quote:
			quote = 0
		case quote != 0:
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ';':
			return line[:n]
		}
	}
	return line
}

// splitOperands splits an operand list on commas outside of quotes.
func splitOperands(text string) (words []string, err error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return
	}

	var quote byte
	start := 0
	for n := 0; n < len(text); n++ {
		ch := text[n]
		switch {
		case quote != 0 && ch == '\\':
			n++
		case quote != 0 && ch == quote:
			quote = 0
		case quote != 0:
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ',':
			words = append(words, strings.TrimSpace(text[start:n]))
			start = n + 1
		}
	}
	if quote != 0 {
		err = ErrStringOpen
		return
	}
	words = append(words, strings.TrimSpace(text[start:]))

	if slices.Contains(words, "") {
		err = ErrOperandInvalid
		return
	}

	return
}

// parseNumber parses a C style (0x1F) or Intel style (1FH) number.
func parseNumber(word string) (value int, err error) {
	text := word
	base := 0
	lower := strings.ToLower(text)
	if len(text) > 1 && strings.HasSuffix(lower, "h") && !strings.Contains(lower, "0x") {
		text = text[:len(text)-1]
		base = 16
	}

	v64, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// valueOf returns the value of a single operand word. If the word is an
// undefined label, the label is returned for linking.
func (asm *Assembler) valueOf(word string) (value int, label string, err error) {
	switch {
	case word == "$":
		value = asm.addr
	case isQuoted(word):
		var data []byte
		data, err = unquote(word)
		if err != nil {
			return
		}
		if len(data) != 1 {
			err = ErrParseCharacter(word)
			return
		}
		value = int(data[0])
	case word[0] == '-' || word[0] == '+' || (word[0] >= '0' && word[0] <= '9'):
		value, err = parseNumber(word)
	case reIdent.MatchString(word):
		addr, ok := asm.Label[word]
		if ok {
			value = addr
		} else {
			label = word
		}
	default:
		err = ErrOperandInvalid
	}

	return
}

// resolve returns the value of an operand word that must be known now.
func (asm *Assembler) resolve(word string) (value int, err error) {
	value, label, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if len(label) != 0 {
		err = ErrLabelMissing(label)
		return
	}
	return
}

// substitute replaces equate names with their values.
func (asm *Assembler) substitute(word string) string {
	for range MACRO_DEPTH {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}
	return word
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		var v int
		v, err = asm.resolve(asm.substitute(key))
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	pred["HERE"] = starlark.MakeInt(asm.addr)

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
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xffff || st_int64 < -0x8000 {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// parseLine parses a single line into a statement: the mnemonic or
// directive, followed by its operands.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	line = strings.TrimSpace(line)

	// LABEL: prefixes
	for {
		head, rest, _ := strings.Cut(line, " ")
		if !strings.HasSuffix(head, ":") {
			break
		}
		label := head[:len(head)-1]
		if !reIdent.MatchString(label) || isRegister(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.addr
		line = strings.TrimSpace(rest)
	}

	if len(line) == 0 {
		return
	}

	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	// NAME EQU VALUE
	name, value, _ := strings.Cut(rest, " ")
	if strings.EqualFold(name, "EQU") {
		words = []string{".equ", head, strings.TrimSpace(value)}
	} else {
		var operands []string
		operands, err = splitOperands(rest)
		if err != nil {
			return
		}
		words = append([]string{head}, operands...)
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
		if len(words) == 2 {
			// .equ NAME VALUE, without a comma.
			name, value, _ := strings.Cut(words[1], " ")
			words = []string{words[0], name, strings.TrimSpace(value)}
		}
		if len(words) != 3 || !reIdent.MatchString(words[1]) || len(words[2]) == 0 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		words[1+n] = asm.substitute(word)
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
		if asm.depth >= MACRO_DEPTH {
			err = ErrMacroNesting
			return
		}

		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		asm.depth++
		asm.expansions++
		defer func() {
			asm.Equate = old_equate
			asm.depth--
		}()

		prefix := fmt.Sprintf("%v_%v_", name, asm.expansions)
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
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
	clear(asm.Label)
	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, _cpu_defines)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.addr = 0
	asm.depth = 0
	asm.expansions = 0

	err = asm.scan(input)
	if err != nil {
		return
	}

	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	first := true
	for _, op := range prog.Opcodes {
		if len(op.Bytes) == 0 {
			continue
		}
		if first || op.Addr < prog.Origin {
			prog.Origin = op.Addr
			first = false
		}
	}

	return
}

// scan assembles each line of the input.
func (asm *Assembler) scan(input io.Reader) (err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		// Tabs separate fields as well as spaces.
		line = strings.ReplaceAll(strings.TrimSpace(stripComment(text)), "\t", " ")
		words := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})

		// .macro NAME arg...
		if len(words) > 0 && strings.EqualFold(words[0], ".macro") {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 || !reIdent.MatchString(words[1]) {
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

		if len(words) > 0 && strings.EqualFold(words[0], ".endm") {
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

	return
}

// link resolves the label references of all opcodes.
func (asm *Assembler) link() (err error) {
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		for _, link := range op.Links {
			addr, ok := asm.Label[link.Label]
			if !ok {
				err = &ErrSyntax{
					LineNo: op.LineNo,
					Line:   strings.Join(op.Words, " "),
					Err:    ErrLabelMissing(link.Label),
				}
				return
			}
			op.Bytes[link.Offset] = uint8(addr)
			op.Bytes[link.Offset+1] = uint8(addr >> 8)
		}
	}

	return
}

// emit appends an opcode at the current address.
func (asm *Assembler) emit(lineno int, words []string, data []uint8, links []Link) (err error) {
	if asm.addr+len(data) > MEMORY_SIZE {
		err = ErrAddressOverflow
		return
	}

	asm.Opcode = append(asm.Opcode, Opcode{
		LineNo: lineno,
		Addr:   uint16(asm.addr),
		Words:  slices.Clone(words),
		Bytes:  data,
		Links:  links,
	})
	asm.addr += len(data)

	return
}

// byteOf returns the 8-bit value of an operand.
func (asm *Assembler) byteOf(word string) (value uint8, err error) {
	v, err := asm.resolve(word)
	if err != nil {
		return
	}
	if v < -0x80 || v > 0xff {
		err = ErrValueRange
		return
	}
	value = uint8(v)
	return
}

// wordOf returns the 16-bit value of an operand, or the label to link.
func (asm *Assembler) wordOf(word string) (value uint16, label string, err error) {
	v, label, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v < -0x8000 || v > 0xffff {
		err = ErrValueRange
		return
	}
	value = uint16(v)
	return
}

// parseDirective handles the data and origin directives.
func (asm *Assembler) parseDirective(words []string, lineno int) (handled bool, err error) {
	directive := strings.ToLower(strings.TrimPrefix(words[0], "."))
	args := words[1:]

	switch directive {
	case "org":
		if len(args) != 1 {
			err = ErrDirectiveSyntax
			return
		}
		var addr int
		addr, err = asm.resolve(args[0])
		if err != nil {
			return
		}
		if addr < 0 || addr > 0xffff {
			err = ErrValueRange
			return
		}
		asm.addr = addr
	case "db":
		if len(args) == 0 {
			err = ErrDirectiveSyntax
			return
		}
		var data []uint8
		for _, arg := range args {
			if isQuoted(arg) {
				var text []byte
				text, err = unquote(arg)
				if err != nil {
					return
				}
				data = append(data, text...)
				continue
			}
			var value uint8
			value, err = asm.byteOf(arg)
			if err != nil {
				return
			}
			data = append(data, value)
		}
		err = asm.emit(lineno, words, data, nil)
	case "dw":
		if len(args) == 0 {
			err = ErrDirectiveSyntax
			return
		}
		var data []uint8
		var links []Link
		for _, arg := range args {
			var value uint16
			var label string
			value, label, err = asm.wordOf(arg)
			if err != nil {
				return
			}
			if len(label) != 0 {
				links = append(links, Link{Offset: len(data), Label: label})
			}
			data = append(data, uint8(value), uint8(value>>8))
		}
		err = asm.emit(lineno, words, data, links)
	case "ds":
		if len(args) != 1 {
			err = ErrDirectiveSyntax
			return
		}
		var size int
		size, err = asm.resolve(args[0])
		if err != nil {
			return
		}
		if size < 0 {
			err = ErrValueRange
			return
		}
		err = asm.emit(lineno, words, make([]uint8, size), nil)
	case "end":
	default:
		return
	}

	handled = true
	return
}

// match returns true if the operand words fit an instruction's templates.
func (asm *Assembler) match(templates []string, args []string) bool {
	for n, template := range templates {
		arg := args[n]
		switch template {
		case "d8", "d16", "a16":
			if isRegister(arg) {
				return false
			}
		case "0", "1", "2", "3", "4", "5", "6", "7":
			value, err := asm.resolve(arg)
			if err != nil || strconv.Itoa(value) != template {
				return false
			}
		default:
			if !strings.EqualFold(arg, template) {
				return false
			}
		}
	}

	return true
}

// parseWords encodes a statement as opcode bytes.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	handled, err := asm.parseDirective(words, lineno)
	if handled || err != nil {
		return
	}

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	candidates, ok := mnemonicIndex[mnemonic]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	err = ErrOperandCount
	for _, opcode := range candidates {
		inst := &Instructions[opcode]
		templates := inst.Operand()
		if len(templates) != len(args) {
			continue
		}
		err = ErrOperandInvalid
		if !asm.match(templates, args) {
			continue
		}

		data := []uint8{opcode}
		var links []Link
		for n, template := range templates {
			switch template {
			case "d8":
				var value uint8
				value, err = asm.byteOf(args[n])
				if err != nil {
					return
				}
				data = append(data, value)
			case "d16", "a16":
				var value uint16
				var label string
				value, label, err = asm.wordOf(args[n])
				if err != nil {
					return
				}
				if len(label) != 0 {
					links = append(links, Link{Offset: len(data), Label: label})
				}
				data = append(data, uint8(value), uint8(value>>8))
			}
		}

		err = asm.emit(lineno, words, data, links)
		return
	}

	return
}
