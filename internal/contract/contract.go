// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/sizeup-ci/sizeup/schema"
)

// GitClient defines the Git operations needed for change-set analysis.
// This allows the core analysis logic to be tested without needing a real
// git executable.
type GitClient interface {
	// Run executes a git command and returns the standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git
	// repository containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetBranchName returns the checked-out branch name. Detached or
	// unborn HEADs return an error.
	GetBranchName(ctx context.Context, repoPath string) (string, error)

	// HasParentCommit reports whether HEAD has a parent to diff against.
	// The first commit of a repository has none.
	HasParentCommit(ctx context.Context, repoPath string) (bool, error)

	// GetDiffNumstat returns the raw numstat output for the change
	// between HEAD's parent and HEAD.
	GetDiffNumstat(ctx context.Context, repoPath string) ([]byte, error)

	// GetChangedPaths returns the paths touched between HEAD's parent
	// and HEAD.
	GetChangedPaths(ctx context.Context, repoPath string) ([]string, error)
}

// HistoryStore defines the interface for recording selection runs.
// This allows mocking the store for testing.
type HistoryStore interface {
	// RecordRun persists one selection run and returns its unique ID.
	RecordRun(record schema.RunRecord) (int64, error)

	// CountRuns returns the number of recorded runs for a job.
	CountRuns(jobName string) (int, error)

	// GetAllRuns returns every recorded run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Clear removes all recorded runs.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}

// HistoryManager defines the interface for accessing the history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}
