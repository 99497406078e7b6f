//go:build unix

package compiler_test

import (
	"testing"

	"github.com/xyproto/jcore/asm"
	"github.com/xyproto/jcore/compiler"
	"github.com/xyproto/jcore/internal/hostexec"
)

// compileAndRun drives a Compiler through Compile/WriteTo and executes the
// result through hostexec, the §8 "executing the buffer returns N" style of
// testable property made concrete.
func compileAndRun(t *testing.T, build func(c *compiler.Compiler)) int64 {
	t.Helper()
	arch := asm.X86_64{}
	c := compiler.New(arch, nil)
	build(c)

	length, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	buf := make([]byte, length+c.PoolSize()+arch.WordSize())
	if err := c.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	buf = buf[:length]

	mem, err := hostexec.Map(buf)
	if err != nil {
		t.Fatalf("hostexec.Map: %v", err)
	}
	defer mem.Unmap()
	return int64(mem.Call(0, 0, 0))
}

func TestAddConstants(t *testing.T) {
	got := compileAndRun(t, func(c *compiler.Compiler) {
		a := c.Constant(3)
		b := c.Constant(4)
		sum := c.Add(8, a, b)
		c.Return_(8, sum)
	})
	if got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestSubAndNeg(t *testing.T) {
	got := compileAndRun(t, func(c *compiler.Compiler) {
		a := c.Constant(10)
		b := c.Constant(3)
		diff := c.Sub(8, a, b)
		neg := c.Neg(8, diff)
		c.Return_(8, neg)
	})
	if got != -7 {
		t.Fatalf("got %d, want -7", got)
	}
}

func TestForwardBranchSkipsFirstReturn(t *testing.T) {
	got := compileAndRun(t, func(c *compiler.Compiler) {
		zero := c.Constant(0)
		one := c.Constant(1)
		c.Cmp(8, zero, zero)
		c.Je(c.Address(c.MachineIp(1)))
		c.Return_(8, zero)
		c.VisitLogicalIp(1)
		c.StartLogicalIp(1)
		c.Return_(8, one)
	})
	if got != 1 {
		t.Fatalf("got %d, want 1 (branch should have been taken)", got)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	got := compileAndRun(t, func(c *compiler.Compiler) {
		a := c.Constant(42)
		c.Push(8, a)
		popped := c.Pop(8)
		c.Return_(8, popped)
	})
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestMultiplyAndDivide(t *testing.T) {
	got := compileAndRun(t, func(c *compiler.Compiler) {
		a := c.Constant(6)
		b := c.Constant(7)
		product := c.Mul(8, a, b)
		divisor := c.Constant(2)
		quotient := c.Div(8, product, divisor)
		c.Return_(8, quotient)
	})
	if got != 21 {
		t.Fatalf("got %d, want 21", got)
	}
}
