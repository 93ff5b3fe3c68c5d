package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cobolscan/config"
	"cobolscan/internal/adapter/fs"
	"cobolscan/internal/adapter/scanner"
)

func main() {
	dir := flag.String("dir", ".", "Directory of COBOL sources")
	runs := flag.Int("n", 5, "Scans per file and mode")
	flag.Parse()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	files, err := fs.NewWalker(cfg.Scan.Includes, cfg.Scan.Excludes).Walk(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking %s: %v\n", *dir, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir ./cobol -n 5")
		fmt.Println("\nNo COBOL sources found.")
		os.Exit(1)
	}

	sources := make([]string, 0, len(files))
	totalLines := 0
	for _, f := range files {
		content, err := fs.ReadFile(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", f.Path, err)
			continue
		}
		sources = append(sources, content)
		totalLines += len(scanner.SplitLines(content))
	}

	fmt.Println("SCAN BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Files: %d  Lines: %d  Runs: %d\n\n", len(sources), totalLines, *runs)

	var sequential time.Duration
	for _, concurrent := range []bool{false, true} {
		opts := scanner.DefaultOptions()
		opts.Concurrent = concurrent
		sc := scanner.New(opts)

		paragraphs, edges := 0, 0
		start := time.Now()
		for i := 0; i < *runs; i++ {
			for _, src := range sources {
				m := sc.Scan(src)
				if i == 0 {
					paragraphs += m.Paragraphs.Len()
					edges += m.EdgeCount()
				}
			}
		}
		elapsed := time.Since(start)

		mode := "sequential"
		if concurrent {
			mode = "concurrent"
		} else {
			sequential = elapsed
		}

		linesPerSec := float64(totalLines*(*runs)) / elapsed.Seconds()
		fmt.Printf("%-11s %10s  %12.0f lines/s  paragraphs=%d edges=%d", mode, elapsed.Round(time.Microsecond), linesPerSec, paragraphs, edges)
		if concurrent && elapsed > 0 {
			fmt.Printf("  speedup=%.2fx", float64(sequential)/float64(elapsed))
		}
		fmt.Println()
	}
}
