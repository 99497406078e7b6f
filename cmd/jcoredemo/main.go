// Command jcoredemo exercises the jcore compiler/assembler end to end: it
// builds one of a few fixed demo programs, compiles it, and either dumps
// the emitted bytes or runs them through internal/hostexec and prints the
// result — the teacher's own main.go is a single flag.Parse-driven CLI with
// no subcommand framework, so jcoredemo follows the same shape rather than
// reaching for a cobra/urfave dependency nothing else in the pack uses.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	env "github.com/xyproto/env/v2"

	"github.com/xyproto/jcore/asm"
	"github.com/xyproto/jcore/compiler"
	"github.com/xyproto/jcore/jitlog"
)

// Global flags, mirroring the teacher's main.go style (package-level
// verbosity flag rather than threading a config struct through every call).
var (
	VerboseMode bool
	ArchFlag    string
)

func main() {
	var (
		verbose     = flag.Bool("v", env.Bool("JCORE_VERBOSE"), "verbose mode (show compiler debug output)")
		verboseLong = flag.Bool("verbose", false, "verbose mode (show compiler debug output)")
		archFlag    = flag.String("arch", env.Str("JCORE_ARCH", "amd64"), "target architecture (only amd64 is implemented)")
		program     = flag.String("program", "add", "demo program to compile: add, branch")
		dump        = flag.Bool("dump", false, "hex-dump the emitted code instead of running it")
		output      = flag.String("o", "", "write emitted bytes to this file instead of stdout/running")
	)
	flag.Parse()

	VerboseMode = *verbose || *verboseLong
	ArchFlag = *archFlag
	longjumpThreshold := env.Int("JCORE_LONGJUMP_THRESHOLD", 1<<30)
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "DEBUG jcoredemo: arch=%s verbose=%v longjumpThreshold=%d\n", ArchFlag, VerboseMode, longjumpThreshold)
	}

	if ArchFlag != "amd64" && ArchFlag != "x86_64" && ArchFlag != "x86-64" {
		fmt.Fprintf(os.Stderr, "jcoredemo: unsupported arch %q (only amd64/x86_64 is implemented)\n", ArchFlag)
		os.Exit(1)
	}

	arch := asm.X86_64{}
	c := compiler.New(arch, nil)
	log := jitlog.Default("jcoredemo", c.BuildID, VerboseMode)
	c.SetLogger(log)

	if err := buildProgram(c, *program); err != nil {
		fmt.Fprintf(os.Stderr, "jcoredemo: %v\n", err)
		os.Exit(1)
	}

	length, err := c.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jcoredemo: compile failed: %v\n", err)
		os.Exit(1)
	}

	total := length + c.PoolSize()
	// Pad up to a word boundary already accounted for by PoolSize's caller
	// contract (Assembler.WriteTo pads internally); add headroom so WriteTo
	// never rejects the destination as too small.
	buf := make([]byte, total+arch.WordSize())
	if err := c.WriteTo(buf); err != nil {
		fmt.Fprintf(os.Stderr, "jcoredemo: writeTo failed: %v\n", err)
		os.Exit(1)
	}
	buf = buf[:length]

	switch {
	case *output != "":
		if err := os.WriteFile(*output, buf, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "jcoredemo: %v\n", err)
			os.Exit(1)
		}
	case *dump:
		fmt.Println(hex.Dump(buf))
	default:
		runAndPrint(buf)
	}
}

// buildProgram appends IR for one of the fixed demo scenarios (§8's
// testable properties, made runnable): "add" computes a constant sum and
// returns it, "branch" exercises a junction via a conditional jump. Any
// other name is rejected with an error.
func buildProgram(c *compiler.Compiler, name string) error {
	switch name {
	case "add":
		a := c.Constant(3)
		b := c.Constant(4)
		sum := c.Add(8, a, b)
		c.Return_(8, sum)
		return nil
	case "branch":
		zero := c.Constant(0)
		one := c.Constant(1)
		c.Cmp(8, zero, zero)
		target := c.Address(c.MachineIp(1))
		c.Je(target)
		c.Return_(8, zero)
		c.VisitLogicalIp(1)
		c.StartLogicalIp(1)
		c.Return_(8, one)
		return nil
	default:
		return fmt.Errorf("unknown demo program %q", name)
	}
}
