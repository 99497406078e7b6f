//go:build unix

package main

import (
	"fmt"
	"os"

	"github.com/xyproto/jcore/internal/hostexec"
)

// runAndPrint maps buf executable and calls it with no arguments, printing
// the integer it returns in rax.
func runAndPrint(buf []byte) {
	mem, err := hostexec.Map(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jcoredemo: %v\n", err)
		os.Exit(1)
	}
	defer mem.Unmap()
	result := mem.Call(0, 0, 0)
	fmt.Println(int64(result))
}
