// Package jitlog is a minimal structured-logging shim for the compiler and
// assembler packages. The teacher has no logging library at all — it gates
// ad-hoc fmt.Fprintf(os.Stderr, "DEBUG ...") lines behind a package-level
// VerboseMode bool (safe_buffer.go, x86_64_codegen.go). jcore keeps that
// same gated-stderr idiom but scopes it per Compiler instance instead of a
// global, and tags every line with a component name and the Compiler's
// BuildID so parallel compiles (§5) don't interleave unreadably.
package jitlog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
)

// Logger wraps a stdlib *log.Logger with a component tag and a verbosity
// gate. A Logger with Verbose false discards every Debugf call at no more
// cost than the boolean check itself.
type Logger struct {
	std     *log.Logger
	name    string
	build   uuid.UUID
	Verbose bool
}

// New creates a Logger writing to w (os.Stderr in the common case), tagged
// with component name and buildID.
func New(w io.Writer, name string, buildID uuid.UUID, verbose bool) *Logger {
	return &Logger{
		std:     log.New(w, "", log.Ltime|log.Lmicroseconds),
		name:    name,
		build:   buildID,
		Verbose: verbose,
	}
}

// Default builds a Logger writing to os.Stderr, the teacher's sink of
// choice (main.go, safe_buffer.go all write DEBUG lines to os.Stderr).
func Default(name string, buildID uuid.UUID, verbose bool) *Logger {
	return New(os.Stderr, name, buildID, verbose)
}

// Debugf prints a formatted line iff Verbose is set, matching the teacher's
// "if VerboseMode { fmt.Fprintf(...) }" idiom exactly, just routed through a
// *log.Logger instead of a bare fmt.Fprintf.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || !l.Verbose {
		return
	}
	l.std.Printf("[%s %s] %s", l.name, shortID(l.build), fmt.Sprintf(format, args...))
}

// Errorf always prints, regardless of Verbose — the teacher's compilerError
// helpers (bad_address_detector.go, codegen_guards.go) never gate their
// failure output behind VerboseMode.
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.std.Printf("[%s %s] ERROR: %s", l.name, shortID(l.build), fmt.Sprintf(format, args...))
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) < 8 {
		return s
	}
	return s[:8]
}
