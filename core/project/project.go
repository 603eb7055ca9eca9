// Package project derives build-relevant context from the workspace tree and
// the pipeline descriptor.
package project

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sizeup-ci/sizeup/schema"
)

// sizeSkipDirs are directories excluded from the workspace size walk.
// They hold fetched dependencies or build output, not project sources.
var sizeSkipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	".venv":        {},
	"venv":         {},
	"vendor":       {},
	"build":        {},
	"target":       {},
	"Pods":         {},
	".gradle":      {},
	"dist":         {},
	"out":          {},
}

// monorepoMarkers are files whose presence marks a multi-package workspace.
var monorepoMarkers = []string{"lerna.json", "nx.json", "pnpm-workspace.yaml", "turbo.json"}

// packageManifest is the subset of package.json consulted for detection.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Workspaces      json.RawMessage   `json:"workspaces"`
}

// Analyzer derives the project context for a workspace.
type Analyzer struct{}

// NewAnalyzer creates a project analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze inspects the workspace and pipeline descriptor. Detections that
// fail are defaulted and recorded in the report; Analyze never fails a build.
func (a *Analyzer) Analyze(workspace, pipelineFile string) (schema.ProjectContext, schema.DetectionReport) {
	var report schema.DetectionReport
	pctx := schema.ProjectContext{}

	pctx.ProjectType = DetectProjectType(workspace)

	if size, err := WorkspaceSizeMB(workspace); err != nil {
		report.Add("repo_size_mb", err.Error())
	} else {
		pctx.RepoSizeMB = size
	}

	pctx.IsMonorepo = DetectMonorepo(workspace)

	if count, err := CountDependencies(workspace, pctx.ProjectType); err != nil {
		report.Add("dependency_count", err.Error())
	} else {
		pctx.DependencyCount = count
	}

	pipeline, pipelineReport := ScanPipeline(workspace, pipelineFile, pctx.ProjectType)
	pctx.Pipeline = pipeline
	report.Merge(pipelineReport)

	return pctx, report
}

// DetectProjectType classifies the workspace ecosystem. Precedence is fixed:
// a Node manifest wins (refined to react-native), then Android, then iOS,
// then JVM build descriptors. Python manifests and workspaces where nothing
// matches both land on python, the lightest resource class.
func DetectProjectType(workspace string) schema.ProjectType {
	if fileExists(workspace, "package.json") {
		if isReactNative(workspace) {
			return schema.ReactNativeProject
		}
		return schema.NodeJSProject
	}
	if isAndroid(workspace) {
		return schema.AndroidProject
	}
	if isIOS(workspace) {
		return schema.IOSProject
	}
	if fileExists(workspace, "pom.xml") || hasGradleFile(workspace) {
		return schema.JavaProject
	}
	return schema.PythonProject
}

// isReactNative refines a Node workspace: either the manifest depends on
// react-native, or native ios/ and android/ subprojects ride alongside it.
func isReactNative(workspace string) bool {
	if manifest, err := readPackageManifest(workspace); err == nil {
		if _, ok := manifest.Dependencies["react-native"]; ok {
			return true
		}
		if _, ok := manifest.DevDependencies["react-native"]; ok {
			return true
		}
	}
	return dirExists(workspace, "ios") && dirExists(workspace, "android")
}

// isAndroid requires a Gradle descriptor plus an Android marker, so plain
// JVM Gradle projects do not classify as mobile.
func isAndroid(workspace string) bool {
	if !hasGradleFile(workspace) {
		return false
	}
	for _, manifest := range []string{
		"AndroidManifest.xml",
		filepath.Join("app", "src", "main", "AndroidManifest.xml"),
		filepath.Join("src", "main", "AndroidManifest.xml"),
	} {
		if fileExists(workspace, manifest) {
			return true
		}
	}
	for _, gradle := range []string{"build.gradle", "build.gradle.kts"} {
		if data, err := os.ReadFile(filepath.Join(workspace, gradle)); err == nil {
			if strings.Contains(string(data), "com.android") {
				return true
			}
		}
	}
	return false
}

func isIOS(workspace string) bool {
	if fileExists(workspace, "Podfile") {
		return true
	}
	matches, err := filepath.Glob(filepath.Join(workspace, "*.xcodeproj"))
	return err == nil && len(matches) > 0
}

func hasGradleFile(workspace string) bool {
	return fileExists(workspace, "build.gradle") || fileExists(workspace, "build.gradle.kts")
}

// WorkspaceSizeMB walks the workspace and sums regular file sizes in
// megabytes. Dependency and output directories are skipped so the number
// tracks the checked-out sources, not fetched state.
func WorkspaceSizeMB(workspace string) (float64, error) {
	if _, err := os.Stat(workspace); err != nil {
		return 0, err
	}

	var totalBytes int64
	err := filepath.WalkDir(workspace, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := sizeSkipDirs[d.Name()]; skip && path != workspace {
				return filepath.SkipDir
			}
			return nil
		}
		if info, err := d.Info(); err == nil && info.Mode().IsRegular() {
			totalBytes += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return float64(totalBytes) / (1024 * 1024), nil
}

// DetectMonorepo reports whether the workspace carries multi-package markers.
func DetectMonorepo(workspace string) bool {
	for _, marker := range monorepoMarkers {
		if fileExists(workspace, marker) {
			return true
		}
	}
	if manifest, err := readPackageManifest(workspace); err == nil {
		if len(manifest.Workspaces) > 0 && string(manifest.Workspaces) != "null" {
			return true
		}
	}
	for _, settings := range []string{"settings.gradle", "settings.gradle.kts"} {
		data, err := os.ReadFile(filepath.Join(workspace, settings))
		if err != nil {
			continue
		}
		includes := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.Contains(line, "include") {
				includes++
			}
		}
		if includes >= 2 {
			return true
		}
	}
	return false
}

func readPackageManifest(workspace string) (packageManifest, error) {
	var manifest packageManifest
	data, err := os.ReadFile(filepath.Join(workspace, "package.json"))
	if err != nil {
		return manifest, err
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, err
	}
	return manifest, nil
}

func fileExists(workspace, name string) bool {
	info, err := os.Stat(filepath.Join(workspace, name))
	return err == nil && !info.IsDir()
}

func dirExists(workspace, name string) bool {
	info, err := os.Stat(filepath.Join(workspace, name))
	return err == nil && info.IsDir()
}
