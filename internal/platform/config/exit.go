package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal startup error on stderr and terminates the process
// with exit code 1. Command mains use it for flag and environment failures
// that happen before the freight server's own logging is up.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
