package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output file path (default: input with .hack extension)")
	runProgram := flag.Bool("run", false, "run the assembled program on the virtual machine")
	runHackPath := flag.String("run-hack", "", "run an existing .hack file on the virtual machine")
	steps := flag.Int("steps", 10_000_000, "maximum instruction count when running")
	screenshot := flag.String("screenshot", "", "write the final screen contents to this PNG file after running")
	flag.Parse()

	if *runProgram && *runHackPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-hack, not both")
		os.Exit(2)
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		program, errs := asm.Assemble(string(source))
		for _, perr := range errs {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *inPath, perr)
		}

		output := *outPath
		if output == "" {
			output = utils.OutputPath(*inPath, ".hack")
		}

		if err := writeHack(output, program); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", output, err)
			os.Exit(1)
		}

		if len(errs) > 0 {
			fmt.Printf("assembled %d instructions (%d lines failed) -> %s\n", len(program), len(errs), output)
		} else {
			fmt.Printf("assembled %d instructions -> %s\n", len(program), output)
		}
		assembledOutput = output
	}

	if *inPath == "" && *runHackPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, or -run-hack <file> to run an existing .hack file")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runHackPath != "":
		runTarget = *runHackPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-hack <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	if err := runHack(runTarget, *steps, *screenshot); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
}

// writeHack writes one 16-character binary string per line, the format
// the reference tools load from.
func writeHack(path string, program []asm.Instruction) error {
	var b strings.Builder
	for _, inst := range program {
		b.WriteString(inst.Binary)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// readHack parses a .hack file back into ROM words.
func readHack(path string) ([]uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var words []uint16
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: not a 16-bit binary word: %q", i+1, line)
		}
		words = append(words, uint16(v))
	}
	return words, nil
}

func runHack(path string, maxSteps int, screenshot string) error {
	words, err := readHack(path)
	if err != nil {
		return err
	}

	vm := cpu.NewComputer()
	vm.LoadROM(words)
	executed := vm.Run(maxSteps)

	fmt.Printf(
		"run complete (%s): %d steps, halted=%t PC=%d A=%d D=%d RAM[0..2]=%d,%d,%d\n",
		path, executed, vm.Halted, vm.PC, vm.A, vm.D,
		vm.RAM[0], vm.RAM[1], vm.RAM[2],
	)

	if screenshot != "" {
		if err := vm.SaveScreenshot(screenshot, 1); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		fmt.Printf("screen written to %s\n", screenshot)
	}

	return nil
}
