// Command zigup is a side-by-side version manager for the Zig compiler
// and ZLS. It wires the core packages (index, resolve, toolchain,
// defaultptr, zls, lifecycle, config) to a cobra command tree (spec.md
// §6 "CLI grammar").
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
