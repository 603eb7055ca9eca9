package project

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sizeup-ci/sizeup/schema"
)

// Keyword tables for stage classification. Matching is case-insensitive and
// purely textual; descriptors are scanned, never parsed.
var (
	buildKeywords = []string{
		"mvn ", "gradle", "npm run build", "yarn build", "go build",
		"make ", "xcodebuild", "cargo build", "webpack", "vite build",
	}
	unitTestKeywords = []string{
		"pytest", "unittest", "npm test", "yarn test", "jest",
		"mvn test", "gradle test", "gradlew test", "go test", "junit",
		"vitest", "rspec",
	}
	integrationTestKeywords = []string{
		"integration", "failsafe", "testcontainers",
	}
	e2eTestKeywords = []string{
		"e2e", "end-to-end", "cypress", "playwright", "selenium",
		"detox", "appium", "nightwatch", "webdriver",
	}
	deployKeywords = []string{
		"deploy", "kubectl", "helm ", "terraform", "ansible",
		"aws s3 sync", "gcloud app", "scp ", "rsync",
	}
	dockerKeywords = []string{
		"docker build", "docker-compose", "docker compose", "buildx",
		"podman build", "kaniko",
	}
	emulatorKeywords = []string{
		"emulator", "simulator", "simctl", "avdmanager", "-avd",
	}
	publishKeywords = []string{
		"publish", "artifactory", "nexus", "docker push",
		"twine upload", "mvn deploy", "gem push",
	}
)

var (
	stageCallRe = regexp.MustCompile(`stage\s*\(`)
	stageYAMLRe = regexp.MustCompile(`(?m)^\s*-?\s*stage\s*:`)
)

// ScanPipeline derives the stage topology from the pipeline descriptor,
// workspace markers and the dependency manifest. Signals are OR-combined
// and monotone: once a source sets one, nothing unsets it. A missing or
// unreadable descriptor defaults the descriptor-derived fields and is
// recorded in the report.
func ScanPipeline(workspace, pipelineFile string, pt schema.ProjectType) (schema.PipelineStructure, schema.DetectionReport) {
	var report schema.DetectionReport
	var ps schema.PipelineStructure

	text := ""
	if pipelineFile == "" {
		report.Add("pipeline_structure", "no pipeline descriptor found")
	} else if data, err := os.ReadFile(pipelineFile); err != nil {
		report.Add("pipeline_structure", err.Error())
	} else {
		text = string(data)
	}

	if text != "" {
		lower := strings.ToLower(text)

		ps.StagesCount = len(stageCallRe.FindAllStringIndex(lower, -1)) +
			len(stageYAMLRe.FindAllStringIndex(lower, -1))
		ps.HasBuildStage = containsAny(lower, buildKeywords)
		ps.HasUnitTests = containsAny(lower, unitTestKeywords)
		ps.HasIntegrationTests = containsAny(lower, integrationTestKeywords)
		ps.HasE2ETests = containsAny(lower, e2eTestKeywords)
		ps.HasDeployStage = containsAny(lower, deployKeywords)
		ps.HasDockerBuild = containsAny(lower, dockerKeywords)
		ps.UsesEmulator = containsAny(lower, emulatorKeywords)
		ps.HasArtifactPublish = containsAny(lower, publishKeywords)

		// A measured descriptor always has at least one execution lane.
		ps.ParallelStages = 1
		if branches := countParallelBranches(lower); branches > 0 {
			ps.ParallelStages = branches
		}
	}

	applyWorkspaceMarkers(workspace, &ps)
	applyDependencyHints(workspace, pt, &ps)

	return ps, report
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// countParallelBranches counts the direct branches of parallel blocks by
// walking brace nesting from each `parallel` occurrence. Declarative
// `parallel { ... }` blocks count the blocks opening one level inside;
// scripted `parallel(a: {...}, b: {...})` calls count the top-level closures
// of the call.
func countParallelBranches(text string) int {
	total := 0
	offset := 0
	for {
		idx := strings.Index(text[offset:], "parallel")
		if idx < 0 {
			break
		}
		pos := offset + idx + len("parallel")
		offset = pos

		i := pos
		for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
			i++
		}
		if i >= len(text) {
			break
		}
		switch text[i] {
		case '{':
			total += countBlockBranches(text[i:])
		case '(':
			total += countCallBranches(text[i:])
		}
	}
	return total
}

// countCallBranches counts the closures passed directly to the call whose
// opening parenthesis starts the slice.
func countCallBranches(call string) int {
	parens := 0
	braces := 0
	branches := 0
	for i := 0; i < len(call); i++ {
		switch call[i] {
		case '(':
			parens++
		case ')':
			parens--
			if parens == 0 {
				return branches
			}
		case '{':
			braces++
			if braces == 1 {
				branches++
			}
		case '}':
			braces--
		}
	}
	return branches
}

// countBlockBranches counts blocks opening one brace level inside the block
// that starts at the leading '{'.
func countBlockBranches(block string) int {
	depth := 0
	branches := 0
	for i := 0; i < len(block); i++ {
		switch block[i] {
		case '{':
			depth++
			if depth == 2 {
				branches++
			}
		case '}':
			depth--
			if depth == 0 {
				return branches
			}
		}
	}
	return branches
}

// applyWorkspaceMarkers flags stage kinds from well-known config files that
// exist independently of the pipeline descriptor.
func applyWorkspaceMarkers(workspace string, ps *schema.PipelineStructure) {
	if fileExists(workspace, "Dockerfile") ||
		fileExists(workspace, "docker-compose.yml") ||
		fileExists(workspace, "compose.yaml") {
		ps.HasDockerBuild = true
	}
	for _, name := range []string{
		"cypress.config.js", "cypress.config.ts",
		"playwright.config.js", "playwright.config.ts",
	} {
		if fileExists(workspace, name) {
			ps.HasE2ETests = true
			break
		}
	}
	for _, name := range []string{"jest.config.js", "jest.config.ts", "vitest.config.ts"} {
		if fileExists(workspace, name) {
			ps.HasUnitTests = true
			break
		}
	}
	if matches, err := filepath.Glob(filepath.Join(workspace, "*.Dockerfile")); err == nil && len(matches) > 0 {
		ps.HasDockerBuild = true
	}
}

// applyDependencyHints flags test tooling declared in the Node manifest.
// Mobile and JVM ecosystems declare test tooling in the descriptor itself,
// which the keyword scan already covers.
func applyDependencyHints(workspace string, pt schema.ProjectType, ps *schema.PipelineStructure) {
	if pt != schema.NodeJSProject && pt != schema.ReactNativeProject {
		return
	}
	manifest, err := readPackageManifest(workspace)
	if err != nil {
		return
	}

	e2eTools := []string{"cypress", "playwright", "detox", "nightwatch", "webdriverio"}
	unitTools := []string{"jest", "mocha", "vitest", "jasmine", "ava"}

	for _, deps := range []map[string]string{manifest.Dependencies, manifest.DevDependencies} {
		for _, tool := range e2eTools {
			if _, ok := deps[tool]; ok {
				ps.HasE2ETests = true
			}
		}
		for _, tool := range unitTools {
			if _, ok := deps[tool]; ok {
				ps.HasUnitTests = true
			}
		}
	}

	if _, ok := manifest.Dependencies["detox"]; ok {
		ps.UsesEmulator = true
	}
	if _, ok := manifest.DevDependencies["detox"]; ok {
		ps.UsesEmulator = true
	}
}
