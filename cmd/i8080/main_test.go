package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/i8080/emulator"
	"github.com/ezrec/i8080/io"
)

func execute(args ...string) (stdout string, stderr string, err error) {
	outb := &bytes.Buffer{}
	errb := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.SetOut(outb)
	cmd.SetErr(errb)
	cmd.SetArgs(args)

	err = cmd.Execute()

	stdout = outb.String()
	stderr = errb.String()
	return
}

var helloSource = []string{
	"\t.org TPA",
	"\tLXI SP, 0x2000",
	"\tMVI C, CONSOLE_STRING",
	"\tLXI D, message",
	"\tCALL BDOS",
	"\tMVI C, CONSOLE_CHAR",
	"\tMVI E, LETTER",
	"\tCALL BDOS",
	"\tJMP WBOOT",
	"message:",
	"\t.db \"Hello$\"",
}

func TestAsmRun(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := filepath.Join(dir, "hello.asm")
	assert.NoError(os.WriteFile(source, []byte(strings.Join(helloSource, "\n")), 0o644))

	// LETTER is not defined.
	_, _, err := execute("asm", source)
	assert.Error(err)

	_, _, err = execute("asm", source, "--define", "LETTER=0x21")
	assert.NoError(err)

	image := filepath.Join(dir, "hello.com")
	data, err := os.ReadFile(image)
	assert.NoError(err)
	assert.Equal([]byte{0x31, 0x00, 0x20}, data[:3])

	stdout, stderr, err := execute("run", image)
	assert.NoError(err)
	assert.Equal("Hello!", stdout)
	assert.Empty(stderr)

	stdout, stderr, err = execute("run", image, "-v", "--expect-cycles", "100")
	assert.NoError(err)
	assert.Equal("Hello!", stdout)
	assert.Contains(stderr, "instructions: 13\n")
	assert.Contains(stderr, "cycles: 135\n")
	assert.Contains(stderr, "expected: 100 (+35)\n")

	_, _, err = execute("run", image, "--max-cycles", "50")
	assert.ErrorIs(err, emulator.ErrCycleLimit)
}

func TestAsmOutput(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := filepath.Join(dir, "data.asm")
	target := filepath.Join(dir, "data.bin")
	assert.NoError(os.WriteFile(source, []byte(".org 0x200\n.db VALUE, 2\n"), 0o644))

	_, _, err := execute("asm", source, "-o", target, "-D", "VALUE=0x7f")
	assert.NoError(err)

	data, err := os.ReadFile(target)
	assert.NoError(err)
	assert.Equal([]byte{0x7f, 0x02}, data)

	// Nothing emitted.
	assert.NoError(os.WriteFile(source, []byte("; empty\n"), 0o644))
	_, _, err = execute("asm", source, "-o", target)
	assert.ErrorIs(err, io.ErrImageEmpty)
}

func TestRunErrors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	_, _, err := execute("run", filepath.Join(dir, "missing.com"))
	assert.ErrorIs(err, io.ErrImageNotFound)

	image := filepath.Join(dir, "halt.com")
	assert.NoError(os.WriteFile(image, []byte{0xf3, 0x76}, 0o644)) // DI; HLT

	_, _, err = execute("run", image)
	assert.ErrorIs(err, emulator.ErrHalted)

	_, _, err = execute("run", image, "--origin", "0", "--cpm=true")
	assert.ErrorIs(err, emulator.ErrBootConflict)

	_, _, err = execute("run", image, "--origin", "0x10000")
	assert.Error(err)
	assert.Contains(err.Error(), ErrAddressSyntax.Error())
}

func TestRunTape(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()

	// IN 0x10; OUT 0x10; IN 0x10; OUT 0x10; JMP 0
	image := filepath.Join(dir, "copy.com")
	assert.NoError(os.WriteFile(image, []byte{
		0xdb, 0x10, 0xd3, 0x10,
		0xdb, 0x10, 0xd3, 0x10,
		0xc3, 0x00, 0x00,
	}, 0o644))

	tapeIn := filepath.Join(dir, "in.txt")
	tapeOut := filepath.Join(dir, "out.txt")
	assert.NoError(os.WriteFile(tapeIn, []byte("ok"), 0o644))

	_, _, err := execute("run", image, "--tape-in", tapeIn, "--tape-out", tapeOut)
	assert.NoError(err)

	data, err := os.ReadFile(tapeOut)
	assert.NoError(err)
	assert.Equal("ok", string(data))
}

func TestDisasm(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	image := filepath.Join(dir, "code.com")
	assert.NoError(os.WriteFile(image, []byte{0x3e, 0x42, 0xc3, 0x00, 0x01, 0x00}, 0o644))

	stdout, _, err := execute("disasm", image)
	assert.NoError(err)
	assert.Equal([]string{
		"0100  3E 42     MVI A,0x42",
		"0102  C3 00 01  JMP 0x0100",
		"0105  00        NOP",
	}, strings.Split(strings.TrimSpace(stdout), "\n"))

	stdout, _, err = execute("disasm", image, "--origin", "0x8000", "--count", "1")
	assert.NoError(err)
	assert.Equal("8000  3E 42     MVI A,0x42\n", stdout)

	_, _, err = execute("disasm", image, "--origin", "0xfffe")
	assert.ErrorIs(err, io.ErrImageTooLarge)
}

func TestAddrValue(t *testing.T) {
	assert := assert.New(t)

	var av addrValue
	assert.Equal("0x0000", av.String())
	assert.Equal("address", av.Type())

	assert.NoError(av.Set("0x100"))
	assert.Equal(addrValue(0x100), av)
	assert.Equal("0x0100", av.String())

	assert.NoError(av.Set("65535"))
	assert.Equal(addrValue(0xffff), av)

	assert.ErrorIs(av.Set("65536"), ErrAddressSyntax)
	assert.ErrorIs(av.Set("nope"), ErrAddressSyntax)
}

func TestDefineValue(t *testing.T) {
	assert := assert.New(t)

	dv := defineValue{}
	assert.Equal("define", dv.Type())

	assert.NoError(dv.Set("B=2"))
	assert.NoError(dv.Set(" A = 0x1 "))
	assert.Equal("[A=0x1,B=2]", dv.String())

	assert.ErrorIs(dv.Set("A"), ErrDefineSyntax)
	assert.ErrorIs(dv.Set("=1"), ErrDefineSyntax)
	assert.ErrorIs(dv.Set("A="), ErrDefineSyntax)
}

func TestRunNoCPM(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	image := filepath.Join(dir, "done.bin")
	assert.NoError(os.WriteFile(image, []byte{0xd3, 0x00}, 0o644)) // OUT 0

	_, stderr, err := execute("run", image, "--cpm=false", "--origin", "0x200", "--max-cycles", "1000", "-v")
	assert.NoError(err)
	assert.Contains(stderr, "cycles: 10\n")
}
