package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/inhies/go-bytesize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Backend     string // "memory" or "mmap"
	Workload    string
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult compares the two growth backends on one workload.
type ComparisonResult struct {
	Operation  string
	Workload   string
	MemoryNs   float64
	MmapNs     float64
	Ratio      float64 // mmap / memory
	MemoryB    int64
	MmapB      int64
	MemoryOnly bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// go test -bench . ./pkg/trace | go run ./scripts -output bench.md
func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Generated %d comparisons\n", len(comparisons))
	}

	report := generateMarkdownReport(comparisons)

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

// BenchmarkReplay/memory/mixed-8    1234    956789 ns/op    12345 B/op    67 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Output of go test -json wraps each line in an event
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		r := BenchmarkResult{Name: matches[1]}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		// Benchmark<Operation>/<backend>/<workload>-<procs>; anything without a
		// backend level is reported as memory-only.
		parts := strings.Split(trimProcs(r.Name), "/")
		r.Operation = strings.TrimPrefix(parts[0], "Benchmark")
		switch len(parts) {
		case 1:
			r.Backend = "memory"
		case 2:
			r.Backend = "memory"
			r.Workload = parts[1]
		default:
			r.Backend = parts[1]
			r.Workload = strings.Join(parts[2:], "/")
		}
		results = append(results, r)
	}

	return results
}

// trimProcs removes the -GOMAXPROCS suffix go test appends to names.
func trimProcs(name string) string {
	dash := strings.LastIndex(name, "-")
	if dash < 0 {
		return name
	}
	if _, err := strconv.Atoi(name[dash+1:]); err != nil {
		return name
	}
	return name[:dash]
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	type key struct{ op, workload string }
	byKey := make(map[key]map[string]BenchmarkResult)
	for _, r := range results {
		k := key{r.Operation, r.Workload}
		if byKey[k] == nil {
			byKey[k] = make(map[string]BenchmarkResult)
		}
		byKey[k][r.Backend] = r
	}

	comparisons := make([]ComparisonResult, 0, len(byKey))
	for k, backends := range byKey {
		mem, hasMem := backends["memory"]
		mm, hasMmap := backends["mmap"]
		if !hasMem {
			continue
		}
		c := ComparisonResult{
			Operation:  k.op,
			Workload:   k.workload,
			MemoryNs:   mem.NsPerOp,
			MemoryB:    mem.BytesPerOp,
			MemoryOnly: !hasMmap,
		}
		if hasMmap {
			c.MmapNs = mm.NsPerOp
			c.MmapB = mm.BytesPerOp
			if mem.NsPerOp > 0 {
				c.Ratio = mm.NsPerOp / mem.NsPerOp
			}
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		return comparisons[i].Workload < comparisons[j].Workload
	})
	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult) string {
	var sb strings.Builder

	sb.WriteString("# umalloc Benchmark Report\n\n")
	sb.WriteString("Growth backends: `memory` (Go slice) vs `mmap` (reserved mapping).\n\n")

	sb.WriteString("| Benchmark | Workload | memory | mmap | mmap/memory | memory B/op | mmap B/op |\n")
	sb.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, c := range comparisons {
		mmapNs, ratio, mmapB := "-", "-", "-"
		if !c.MemoryOnly {
			mmapNs = formatDuration(c.MmapNs)
			ratio = fmt.Sprintf("%.2fx", c.Ratio)
			mmapB = formatBytes(c.MmapB)
		}
		workload := c.Workload
		if workload == "" {
			workload = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
			c.Operation, workload, formatDuration(c.MemoryNs), mmapNs, ratio, formatBytes(c.MemoryB), mmapB)
	}

	return sb.String()
}

var printer = message.NewPrinter(language.English)

func formatDuration(ns float64) string {
	switch {
	case ns >= 1e6:
		return fmt.Sprintf("%.2f ms", ns/1e6)
	case ns >= 1e3:
		return fmt.Sprintf("%.2f µs", ns/1e3)
	default:
		return printer.Sprintf("%.0f ns", ns)
	}
}

func formatBytes(b int64) string {
	if b < 1024 {
		return printer.Sprintf("%d B", b)
	}
	return bytesize.New(float64(b)).String()
}
