package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) (prog *Program) {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Nil(prog.Binary())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x10000", asm.Equate["MEMORY_SIZE"])
	assert.Equal("0x08", asm.Equate["VECTOR_1"])
}

func TestAssemblerHello(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".org 0x100",
		"START: MVI A, 'H'     ; comment",
		"       LXI D, MSG",
		"       MVI C, 9",
		"       CALL 5",
		"       JMP START",
		"MSG:   .db \"HI$\", 0",
	)

	assert.Equal(uint16(0x100), prog.Origin)
	assert.Equal([]byte{
		0x3e, 0x48,
		0x11, 0x0d, 0x01,
		0x0e, 0x09,
		0xcd, 0x05, 0x00,
		0xc3, 0x00, 0x01,
		'H', 'I', '$', 0x00,
	}, prog.Binary())

	assert.Equal(Opcode{
		LineNo: 3,
		Addr:   0x102,
		Words:  []string{"LXI", "D", "MSG"},
		Bytes:  []uint8{0x11, 0x0d, 0x01},
		Links:  []Link{{Offset: 1, Label: "MSG"}},
	}, prog.Opcodes[1])
}

func TestAssemblerNumbers(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"MVI A, 0FFh",
		"MVI B, 10",
		"MVI C, 0x1f",
		"MVI D, -1",
		"MVI E, 0b101",
		"LXI H, 1234H",
		"MVI L, '\\n'",
	)

	assert.Equal([]byte{
		0x3e, 0xff,
		0x06, 0x0a,
		0x0e, 0x1f,
		0x16, 0xff,
		0x1e, 0x05,
		0x21, 0x34, 0x12,
		0x2e, 0x0a,
	}, prog.Binary())
}

func TestAssemblerOperands(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"mov a,m",
		"lxi sp,0x100",
		"PUSH PSW",
		"pop psw",
		"RST 7",
		"RST 1",
		"JMP $",
		"STAX D",
		"DAD SP",
	)

	assert.Equal([]byte{
		0x7e,
		0x31, 0x00, 0x01,
		0xf5,
		0xf1,
		0xff,
		0xcf,
		0xc3, 0x08, 0x00,
		0x12,
		0x39,
	}, prog.Binary())
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"COUNT EQU 3",
		".equ BASE 0x2000",
		".equ REG B",
		"  LXI H, $(BASE + COUNT * 2)",
		"  MVI REG, COUNT",
		"  MVI A, $(LINENO)",
		"L1: NOP",
		"  LXI D, $(L1 + 1)",
		".org 0x200",
		"  LXI B, $(HERE)",
	)

	assert.Equal(uint16(0), prog.Origin)
	data := prog.Binary()
	assert.Equal([]byte{
		0x21, 0x06, 0x20,
		0x06, 0x03,
		0x3e, 0x06,
		0x00,
		0x11, 0x08, 0x00,
	}, data[:11])
	assert.Equal([]byte{0x01, 0x00, 0x02}, data[0x200:])
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".macro LOAD r, value",
		"  MVI r, value",
		".endm",
		".macro DELAY n",
		"@loop: DCR n",
		"  JNZ @loop",
		".endm",
		"  LOAD A, 5",
		"  DELAY B",
		"  DELAY C",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal([]byte{
		0x3e, 0x05,
		0x05,
		0xc2, 0x02, 0x00,
		0x0d,
		0xc2, 0x06, 0x00,
	}, prog.Binary())

	assert.Equal(2, asm.Label["DELAY_2_loop"])
	assert.Equal(6, asm.Label["DELAY_3_loop"])

	// Macro arguments do not leak.
	_, ok := asm.Equate["n"]
	assert.False(ok)
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".org 0x10",
		"  JMP END",
		"TABLE: .dw END, 0x1234, TABLE",
		"  .ds 2",
		"END: HLT",
		"  DB 'AB', 'C'",
		"  .db \"a;b\" ; comment",
	)

	assert.Equal(uint16(0x10), prog.Origin)
	assert.Equal([]byte{
		0xc3, 0x1b, 0x00,
		0x1b, 0x00, 0x34, 0x12, 0x13, 0x00,
		0x00, 0x00,
		0x76,
		'A', 'B', 'C',
		'a', ';', 'b',
	}, prog.Binary())
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BDOS", "5")
	asm.Predefine("BDOS", "0x0005")

	prog, err := asm.Parse(strings.NewReader("CALL BDOS"))
	assert.NoError(err)
	assert.Equal([]byte{0xcd, 0x05, 0x00}, prog.Binary())
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// Every documented instruction reassembles from its disassembly.
	for n, inst := range Instructions {
		if inst.Alias {
			continue
		}

		var mem Memory
		mem.Load(0, []uint8{uint8(n), 0x34, 0x12})
		text, size := Disassemble(&mem, 0)

		prog := assemble(t, text)
		assert.Equal(mem[:size], prog.Binary(), text)
	}
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
		err  error
	}){
		{"DUP:\nDUP:\n", 2, ErrLabelDuplicate},
		{"1BAD: NOP", 1, ErrLabelInvalid},
		{"MVI A", 1, ErrOperandCount},
		{"MOV A, Q", 1, ErrOperandInvalid},
		{"FOO A", 1, ErrOpcodeInvalid},
		{"NOP\nJMP nowhere", 2, nil},
		{"MVI A, 0x100", 1, ErrValueRange},
		{"MVI A, nowhere", 1, nil},
		{"MVI A, 'ab'", 1, nil},
		{"LXI H, $(\"aaa\")", 1, nil},
		{"LXI H, $(more(\"aaa\"))", 1, nil},
		{"LXI H, $(0x10000000000000000)", 1, nil},
		{"RST 8", 1, ErrOperandInvalid},
		{".db \"abc", 1, ErrStringOpen},
		{".db", 1, ErrDirectiveSyntax},
		{".org", 1, ErrDirectiveSyntax},
		{".org 0x10000", 1, ErrValueRange},
		{".org 0xffff\n.db 1, 2", 2, ErrAddressOverflow},
		{".equ", 1, ErrEquateSyntax},
		{".equ A1", 1, ErrEquateSyntax},
		{".equ X 1\n.equ X 2\n", 2, ErrEquateDuplicate},
		{".macro M B C\n.endm\nM 1\n", 3, ErrMacroSyntax},
		{".macro M B\n.macro C\n.endm\n.endm", 2, ErrMacroNesting},
		{".macro M B\n.endm\n.macro M\n.endm\n", 3, ErrMacroDuplicate},
		{".endm\n", 1, ErrMacroLonelyEndm},
		{".macro M\nNOP\n", 2, ErrMacroLonely},
		{".macro M\nFOO\n.endm\nNOP\nM\n", 5, ErrOpcodeInvalid},
		{".macro R\nR\n.endm\nR\n", 4, ErrMacroNesting},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
			if entry.err != nil {
				assert.ErrorIs(err, entry.err, entry.prog)
			}
		}
	}
}

func TestAssemblerErrLabelMissing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader("CALL nowhere"))

	var lm ErrLabelMissing
	assert.True(errors.As(err, &lm))
	assert.Equal(ErrLabelMissing("nowhere"), lm)
}

func TestAssemblerErrMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader(".macro M\nNOP\nFOO\n.endm\nM\n"))

	var em *ErrMacro
	assert.True(errors.As(err, &em))
	assert.Equal("M", em.Macro)
	assert.Equal(3, em.Line)
}
