// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	stdio "io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/emulator"
	"github.com/ezrec/i8080/internal"
	"github.com/ezrec/i8080/io"
	"github.com/ezrec/i8080/translate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "i8080",
		Short:        "Intel 8080 interpreter, assembler and disassembler",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd(), newAsmCmd(), newDisasmCmd())

	return rootCmd
}

// loadImage reads a program image from the host filesystem.
func loadImage(path string) (image []byte, err error) {
	return io.LoadImage(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// isTerminal is true if w is an interactive terminal.
func isTerminal(w stdio.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func summary(w stdio.Writer, report emulator.Report, expect uint64) {
	translate.Fprintf(w, "\ninstructions: %v\n", report.Instructions)
	translate.Fprintf(w, "cycles: %v\n", report.Cycles)
	if expect != 0 {
		diff := int64(report.Cycles) - int64(expect)
		translate.Fprintf(w, "expected: %v (%+d)\n", expect, diff)
	}
}

func newRunCmd() *cobra.Command {
	origin := addrValue(emulator.TPA_ORIGIN)
	var cpm bool
	var maxCycles uint64
	var expectCycles uint64
	var tapeIn string
	var tapeOut string
	var verbose bool

	runCmd := &cobra.Command{
		Use:   "run IMAGE",
		Short: "Boot a program image, and run it until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			image, err := loadImage(args[0])
			if err != nil {
				return
			}

			emu := emulator.NewEmulator(cmd.OutOrStdout())
			emu.Verbose = verbose

			if len(tapeIn) != 0 {
				var inf *os.File
				inf, err = os.Open(tapeIn)
				if err != nil {
					return
				}
				defer inf.Close()
				emu.Tape.Input = inf
			}

			if len(tapeOut) != 0 {
				var ouf *os.File
				ouf, err = os.Create(tapeOut)
				if err != nil {
					return
				}
				defer ouf.Close()
				emu.Tape.Output = ouf
			}

			config := emulator.Config{
				Origin:  uint16(origin),
				CPM:     cpm,
				Verbose: verbose,
			}

			err = emu.Boot(image, config)
			if err != nil {
				return
			}

			report, err := emu.Run(cmd.Context(), maxCycles)

			if verbose || isTerminal(cmd.OutOrStdout()) {
				summary(cmd.ErrOrStderr(), report, expectCycles)
			}

			return
		},
	}

	runCmd.Flags().Var(&origin, "origin", "Load address and entry point of the image")
	runCmd.Flags().BoolVar(&cpm, "cpm", true, "Install the CP/M warm boot and BDOS stubs")
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "Stop after this many cycles (0 = no limit)")
	runCmd.Flags().Uint64Var(&expectCycles, "expect-cycles", 0, "Expected cycle count, reported in the summary")
	runCmd.Flags().StringVar(&tapeIn, "tape-in", "", "Tape input file")
	runCmd.Flags().StringVar(&tapeOut, "tape-out", "", "Tape output file")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return runCmd
}

func newAsmCmd() *cobra.Command {
	var output string
	var verbose bool
	defines := defineValue{}

	asmCmd := &cobra.Command{
		Use:   "asm SOURCE",
		Short: "Assemble a source file to a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			source := args[0]
			target := output
			if len(target) == 0 {
				target = strings.TrimSuffix(source, filepath.Ext(source)) + ".com"
			}

			inf, err := os.Open(source)
			if err != nil {
				return
			}
			defer inf.Close()

			emu := emulator.NewEmulator(nil)

			asm := &cpu.Assembler{Verbose: verbose}
			for key, value := range internal.IterSeq2Concat(emu.Defines(), maps.All(defines)) {
				asm.Predefine(key, value)
			}

			prog, err := asm.Parse(inf)
			if err != nil {
				err = fmt.Errorf("%v: %w", source, err)
				return
			}

			image := prog.Binary()
			if len(image) == 0 {
				err = fmt.Errorf("%v: %w", source, io.ErrImageEmpty)
				return
			}

			err = os.WriteFile(target, image, 0o644)
			if err != nil {
				return
			}

			if verbose {
				translate.Fprintf(cmd.ErrOrStderr(), "%v: origin 0x%04x, %v bytes\n", target, prog.Origin, len(image))
			}

			return
		},
	}

	asmCmd.Flags().StringVarP(&output, "output", "o", "", "Output image (default SOURCE with a .com extension)")
	asmCmd.Flags().VarP(defines, "define", "D", "Predefine an equate, as NAME=VALUE")
	asmCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return asmCmd
}

func newDisasmCmd() *cobra.Command {
	origin := addrValue(emulator.TPA_ORIGIN)
	var count int

	disasmCmd := &cobra.Command{
		Use:   "disasm IMAGE",
		Short: "List the instructions of a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			image, err := loadImage(args[0])
			if err != nil {
				return
			}

			if int(origin)+len(image) > cpu.MEMORY_SIZE {
				err = io.ErrImageTooLarge
				return
			}

			mem := &cpu.Memory{}
			mem.Load(uint16(origin), image)

			w := cmd.OutOrStdout()
			addr := int(origin)
			end := addr + len(image)
			for n := 0; addr < end && (count == 0 || n < count); n++ {
				text, size := cpu.Disassemble(mem, uint16(addr))

				var codes []string
				for i := range size {
					codes = append(codes, fmt.Sprintf("%02X", mem.Read(uint16(addr+i))))
				}

				fmt.Fprintf(w, "%04X  %-8s  %v\n", addr, strings.Join(codes, " "), text)
				addr += size
			}

			return
		},
	}

	disasmCmd.Flags().Var(&origin, "origin", "Load address of the image")
	disasmCmd.Flags().IntVar(&count, "count", 0, "Instructions to list (0 = all)")

	return disasmCmd
}
