// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/sizeup-ci/sizeup/internal/contract"
)

// LogAnalysisHeader prints a concise, 2-line header for each run.
func LogAnalysisHeader(cfg *contract.Config) {
	jobName := cfg.JobName
	if jobName == "" {
		jobName = filepath.Base(cfg.WorkspacePath)
	}
	if jobName == "" || jobName == "." {
		jobName = "current"
	}

	build := "n/a"
	if cfg.BuildNumber > 0 {
		build = fmt.Sprintf("#%d", cfg.BuildNumber)
	}

	// Line 1: the job being sized
	fmt.Printf("%sJob: %s (Build: %s)\n", emojiPrefix(cfg, "🔎"), jobName, build)

	// Line 2: the policy knobs that shape the selection
	fmt.Printf("%sPolicy: bias=%s buffer=%.2fx history=%s\n",
		emojiPrefix(cfg, "📐"), cfg.Bias, cfg.BufferFactor, cfg.HistoryBackend)
}

// emojiPrefix returns the emoji with a trailing space when emoji output is
// enabled, and an empty string otherwise.
func emojiPrefix(cfg *contract.Config, e string) string {
	if cfg.UseEmojis {
		return e + " "
	}
	return ""
}

// getMaxTableValueWidth calculates the maximum width for free-text values in
// table output based on terminal width.
func getMaxTableValueWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the fixed columns with table formatting
	baseWidth := 30 // Signal + Status columns with borders/padding

	// Calculate available space for the value column
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable value width
		return 15
	}
	if available > 70 {
		// Maximum value width to prevent overly long cells
		return 70
	}
	return available
}
