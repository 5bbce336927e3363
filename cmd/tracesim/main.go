// Command tracesim replays a plain list of addresses through a freshly
// constructed cache hierarchy, independent of the eviction-set protocol.
// It is a second, simpler external collaborator useful for ad hoc trace
// replay and calibration.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/ceaser/controller"
)

var (
	tracePath = flag.String("trace", "", "path to a newline-delimited trace of addresses (decimal or 0x-prefixed hex)")
	verbose   = flag.Bool("v", false, "enable debug logging of every cache access")
)

func main() {
	flag.Parse()

	if *tracePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: tracesim -trace <path>")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	addrs, err := readTrace(*tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
		os.Exit(1)
	}

	ctrl := controller.Default(controller.WithLogger(logger))

	var histogram [4]int
	for _, addr := range addrs {
		depth := ctrl.Access(addr)
		histogram[depth]++
		fmt.Println(depth)
	}

	fmt.Fprintf(os.Stderr, "L1D hits: %d, L2D hits: %d, LLC hits: %d, misses: %d\n",
		histogram[0], histogram[1], histogram[2], histogram[3])
}

// readTrace parses one address per non-empty, non-comment line.
func readTrace(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var addrs []uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, err := strconv.ParseUint(line, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed trace line %q: %w", line, err)
		}
		addrs = append(addrs, addr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return addrs, nil
}
