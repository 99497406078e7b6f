//go:build !unix

package main

import (
	"encoding/hex"
	"fmt"
)

// runAndPrint falls back to a hex dump on platforms hostexec doesn't
// support mmap'ing executable memory on.
func runAndPrint(buf []byte) {
	fmt.Println(hex.Dump(buf))
}
