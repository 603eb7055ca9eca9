package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its standard output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetBranchName implements the GitClient interface.
func (c *LocalGitClient) GetBranchName(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(out))
	if name == "" || name == "HEAD" {
		return "", errors.New("HEAD is detached, no branch name available")
	}
	return name, nil
}

// HasParentCommit implements the GitClient interface.
func (c *LocalGitClient) HasParentCommit(ctx context.Context, repoPath string) (bool, error) {
	out, err := c.Run(ctx, repoPath, "rev-list", "--count", "HEAD")
	if err != nil {
		return false, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return false, fmt.Errorf("unexpected rev-list output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return count >= 2, nil
}

// GetDiffNumstat implements the GitClient interface.
func (c *LocalGitClient) GetDiffNumstat(ctx context.Context, repoPath string) ([]byte, error) {
	return c.Run(ctx, repoPath, "diff", "--numstat", "HEAD~1", "HEAD")
}

// GetChangedPaths implements the GitClient interface.
func (c *LocalGitClient) GetChangedPaths(ctx context.Context, repoPath string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "diff", "--name-only", "HEAD~1", "HEAD")
	if err != nil {
		return nil, err
	}
	paths := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(paths) == 1 && paths[0] == "" {
		return []string{}, nil
	}
	return paths, nil
}
