// Command primeprobe runs the Prime+Probe eviction-set discovery attack
// against a freshly constructed cache hierarchy and reports whether the
// discovered set actually evicts the target line.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/ceaser/attack"
	"github.com/sarchlab/ceaser/config"
	"github.com/sarchlab/ceaser/controller"
)

var (
	configPath = flag.String("config", "", "path to a driver config JSON file (defaults to the reference parameters)")
	verbose    = flag.Bool("v", false, "enable debug logging of every cache access")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading driver config: %v\n", err)
			os.Exit(1)
		}
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctrl := controller.New(cfg.LLCSeed, cfg.Keys, controller.WithLogger(logger))
	driver := attack.New(ctrl, attack.WithLogger(logger))

	result := driver.Run(attack.Config{
		CandidateSeed: cfg.CandidateSeed,
		TargetLine:    cfg.TargetLine,
	})

	fmt.Printf("run: %s\n", result.RunID)
	fmt.Printf("candidates: %d\n", result.Candidates)
	fmt.Printf("pruned: %d\n", result.Pruned)
	fmt.Printf("eviction set size: %d\n", len(result.EvictionSet))
	if result.Verified {
		fmt.Println("verification: success")
	} else {
		fmt.Println("verification: failed")
	}

	os.Exit(result.ExitCode())
}
