// Package main provides a performance benchmarking tool for the sizeup CLI.
// It measures execution times across synthetic workspaces of increasing size
// and across command types, running each test multiple times, treating the
// first successful run with history enabled as cold and averaging the rest as
// warm, generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - sizeup binary installed and available in PATH
//
// Usage: go run benchmark/main.go [workspace-base-dir]
//
//	workspace-base-dir: Directory where synthetic workspaces are generated
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Workspace     string
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkspaceBase string
	Timeout       time.Duration
	NoHistoryRuns int
	HistoryRuns   int
	Workspaces    map[string]int // name -> source file count
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [workspace-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workspaceBase := os.Args[1]

	config := BenchmarkConfig{
		WorkspaceBase: workspaceBase,
		Timeout:       2 * time.Minute,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		Workspaces: map[string]int{
			"small":  50,
			"medium": 500,
			"large":  5000,
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear run history so cold runs include table creation
	fmt.Printf("Clearing run history...\n")
	clearCmd := exec.Command("sizeup", "history", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear history: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Run history cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the sizeup binary exists and generates any
// missing synthetic workspaces.
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if sizeup is available
	if _, err := exec.LookPath("sizeup"); err != nil {
		return fmt.Errorf("sizeup binary not found in PATH")
	}

	// Generate workspaces that do not exist yet
	for name, fileCount := range config.Workspaces {
		workspacePath := filepath.Join(config.WorkspaceBase, name)
		if _, err := os.Stat(workspacePath); os.IsNotExist(err) {
			fmt.Printf("Generating %s workspace (%d files)\n", name, fileCount)
			if err := generateWorkspace(workspacePath, fileCount); err != nil {
				return fmt.Errorf("failed to generate workspace %s: %w", name, err)
			}
		}
	}

	return nil
}

// generateWorkspace creates a synthetic Node.js workspace with the given
// number of source files spread over nested directories.
func generateWorkspace(path string, fileCount int) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}

	manifest := `{
  "name": "bench-workspace",
  "version": "1.0.0",
  "dependencies": {
    "express": "^4.18.0",
    "lodash": "^4.17.21",
    "axios": "^1.6.0"
  }
}
`
	if err := os.WriteFile(filepath.Join(path, "package.json"), []byte(manifest), 0o644); err != nil {
		return err
	}

	pipeline := `pipeline {
  agent any
  stages {
    stage('Install') { steps { sh 'npm ci' } }
    stage('Test') { steps { sh 'npm test' } }
    stage('Build') { steps { sh 'npm run build' } }
  }
}
`
	if err := os.WriteFile(filepath.Join(path, "Jenkinsfile"), []byte(pipeline), 0o644); err != nil {
		return err
	}

	for i := 0; i < fileCount; i++ {
		dir := filepath.Join(path, "src", fmt.Sprintf("module%02d", i%20))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		content := fmt.Sprintf("// generated benchmark source %d\nmodule.exports = { id: %d };\n", i, i)
		file := filepath.Join(dir, fmt.Sprintf("handler%04d.js", i))
		if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured workspaces
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d workspaces, %v timeout, no-history: %d runs, history: %d runs\n",
		len(config.Workspaces), config.Timeout, config.NoHistoryRuns, config.HistoryRuns)

	for _, name := range []string{"small", "medium", "large"} {
		if _, ok := config.Workspaces[name]; !ok {
			continue
		}
		fmt.Printf("Benchmarking %s\n", name)

		workspacePath := filepath.Join(config.WorkspaceBase, name)

		// Detection only
		result := runBenchmarkSuite(config, name, workspacePath, "analyze", "workspace analysis", "")
		results = append(results, result)

		// Full selection with the heuristic fallback
		result = runBenchmarkSuite(config, name, workspacePath, "select", "class selection (heuristic)", "--no-model")
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, name, workspacePath, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, name)

	// Helper to run a benchmark phase
	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, workspacePath, command, extraArgs, historyBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-history runs
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: History runs
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Workspace:     name,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes a sizeup command multiple times with the specified history backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, workspacePath, command, extraArgs, historyBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, workspacePath, "--history-backend", historyBackend}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("sizeup", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	var completionPhrase string
	if command == "select" {
		completionPhrase = "Selection completed in"
	} else {
		completionPhrase = "Analysis completed in"
	}

	return strings.Contains(outputStr, completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/sizeup_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"workspace", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Workspace, result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "analyze", "Workspace Analysis:")
	printCommandSummary(results, "select", "Class Selection:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-history: %s, Cold: %s, Warm: %s\n", result.Workspace, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
