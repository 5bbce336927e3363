// Package main provides a pointer to the real entry points.
// Ceaser is a trace-driven simulator of a randomized-index (CEASER-style)
// last-level cache, plus a Prime+Probe eviction-set discovery driver.
//
// For the eviction-set attack, use: go run ./cmd/primeprobe
// For plain trace replay, use:      go run ./cmd/tracesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Ceaser - randomized-index LLC hierarchy simulator")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/primeprobe [-config path] [-v]")
	fmt.Println("  go run ./cmd/tracesim -trace path [-v]")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: you provided arguments. Run the subcommand above directly instead.")
	}
}
