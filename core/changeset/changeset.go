// Package changeset measures the shape of the code change that triggered a build.
package changeset

import (
	"context"
	"path"
	"strconv"
	"strings"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// DependencyManifests lists file base names counted as dependency manifests
// when they appear in a change set.
var DependencyManifests = map[string]struct{}{
	"package.json":      {},
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"requirements.txt":  {},
	"Pipfile":           {},
	"Pipfile.lock":      {},
	"pyproject.toml":    {},
	"poetry.lock":       {},
	"setup.py":          {},
	"pom.xml":           {},
	"build.gradle":      {},
	"build.gradle.kts":  {},
	"settings.gradle":   {},
	"gradle.lockfile":   {},
	"Podfile":           {},
	"Podfile.lock":      {},
	"Gemfile":           {},
	"Gemfile.lock":      {},
	"go.mod":            {},
	"go.sum":            {},
}

// Analyzer extracts change-set metrics from a Git workspace.
type Analyzer struct {
	client contract.GitClient
}

// NewAnalyzer creates an analyzer backed by the given Git client.
func NewAnalyzer(client contract.GitClient) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze measures the change between HEAD's parent and HEAD. Metrics that
// cannot be measured default to zero (or "unknown" for the branch) and are
// listed in the returned report; Analyze itself never fails a build.
//
// A repository with no parent commit is not a failure: the change set is
// genuinely empty there, matching the very first build of a project.
func (a *Analyzer) Analyze(ctx context.Context, workspace, branchOverride string) (schema.ChangeSetMetrics, schema.DetectionReport) {
	var report schema.DetectionReport
	metrics := schema.ChangeSetMetrics{BranchName: schema.UnknownBranch}

	if branchOverride != "" {
		metrics.BranchName = branchOverride
	} else if name, err := a.client.GetBranchName(ctx, workspace); err != nil {
		report.Add("branch_name", err.Error())
	} else {
		metrics.BranchName = name
	}

	hasParent, err := a.client.HasParentCommit(ctx, workspace)
	if err != nil {
		report.Add("files_changed", err.Error())
		report.Add("lines_added", err.Error())
		report.Add("lines_deleted", err.Error())
		report.Add("deps_changed", err.Error())
		return metrics, report
	}
	if !hasParent {
		return metrics, report
	}

	if out, err := a.client.GetDiffNumstat(ctx, workspace); err != nil {
		report.Add("files_changed", err.Error())
		report.Add("lines_added", err.Error())
		report.Add("lines_deleted", err.Error())
	} else {
		metrics.FilesChanged, metrics.LinesAdded, metrics.LinesDeleted = ParseNumstat(out)
	}

	if paths, err := a.client.GetChangedPaths(ctx, workspace); err != nil {
		report.Add("deps_changed", err.Error())
	} else {
		metrics.DepsChanged = CountDependencyManifests(paths)
	}

	return metrics, report
}

// ParseNumstat parses `git diff --numstat` output into file and line counts.
// Binary files report "-" for both line columns and count as one changed
// file with zero lines. Malformed lines are skipped.
func ParseNumstat(out []byte) (files, added, deleted int) {
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		files++
		if a, err := strconv.Atoi(parts[0]); err == nil {
			added += a
		}
		if d, err := strconv.Atoi(parts[1]); err == nil {
			deleted += d
		}
	}
	return files, added, deleted
}

// CountDependencyManifests counts changed paths whose base name is a known
// dependency manifest.
func CountDependencyManifests(paths []string) int {
	count := 0
	for _, p := range paths {
		if _, ok := DependencyManifests[path.Base(p)]; ok {
			count++
		}
	}
	return count
}
