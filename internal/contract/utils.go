package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sizeup-ci/sizeup/schema"
)

// Confidence label constants.
const (
	HighValue   = "High"   // High confidence
	MediumValue = "Medium" // Medium confidence
	LowValue    = "Low"    // Low confidence
)

// Color variables for console output.
var (
	HighColor     = color.New(color.FgGreen, color.Bold) // highColor signals a trustworthy prediction.
	MediumColor   = color.New(color.FgYellow)            // mediumColor signals partial signal coverage.
	LowColor      = color.New(color.FgRed)               // lowColor signals a heuristic-grade estimate.
	FallbackColor = color.New(color.FgYellow, color.Bold)
	ModelColor    = color.New(color.FgCyan)
)

// GetPlainConfidenceLabel returns a plain text label for a confidence level.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainConfidenceLabel(c schema.Confidence) string {
	switch c {
	case schema.HighConfidence:
		return HighValue
	case schema.MediumConfidence:
		return MediumValue
	default:
		return LowValue
	}
}

// GetColorConfidenceLabel returns a colored confidence label for console
// output (table). It uses GetPlainConfidenceLabel to determine the string,
// and then applies the appropriate color.
func GetColorConfidenceLabel(c schema.Confidence) string {
	text := GetPlainConfidenceLabel(c)

	switch text {
	case HighValue:
		return HighColor.Sprint(text)
	case MediumValue:
		return MediumColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// GetMethodLabel returns a method label, colored when requested.
func GetMethodLabel(m schema.PredictionMethod, colored bool) string {
	text := string(m)
	if !colored {
		return text
	}
	if m == schema.FallbackMethod {
		return FallbackColor.Sprint(text)
	}
	return ModelColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sizeup_history.db"
	}
	return filepath.Join(homeDir, ".sizeup_history.db")
}

// GetModelCacheDir returns the local directory for fetched model artifacts.
func GetModelCacheDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sizeup_models"
	}
	return filepath.Join(homeDir, ".sizeup", "models")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and
// at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
