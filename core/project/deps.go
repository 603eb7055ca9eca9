package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sizeup-ci/sizeup/schema"
)

// gradleDependencyPrefixes are the dependency configurations counted in
// Gradle build files.
var gradleDependencyPrefixes = []string{
	"implementation",
	"api",
	"compileOnly",
	"runtimeOnly",
	"testImplementation",
	"androidTestImplementation",
	"kapt",
}

// CountDependencies counts the dependencies declared by the manifest of the
// detected ecosystem. A missing manifest counts as zero; only read or parse
// errors are returned.
func CountDependencies(workspace string, pt schema.ProjectType) (int, error) {
	switch pt {
	case schema.NodeJSProject, schema.ReactNativeProject:
		return countNodeDependencies(workspace)
	case schema.PythonProject:
		return countPythonDependencies(workspace)
	case schema.JavaProject:
		return countJVMDependencies(workspace)
	case schema.AndroidProject:
		return countGradleDependencies(workspace)
	case schema.IOSProject:
		return countPodfileDependencies(workspace)
	default:
		return 0, nil
	}
}

func countNodeDependencies(workspace string) (int, error) {
	if !fileExists(workspace, "package.json") {
		return 0, nil
	}
	manifest, err := readPackageManifest(workspace)
	if err != nil {
		return 0, err
	}
	return len(manifest.Dependencies) + len(manifest.DevDependencies), nil
}

// countPythonDependencies prefers requirements.txt and falls back to the
// [packages] section of a Pipfile.
func countPythonDependencies(workspace string) (int, error) {
	if fileExists(workspace, "requirements.txt") {
		data, err := os.ReadFile(filepath.Join(workspace, "requirements.txt"))
		if err != nil {
			return 0, err
		}
		count := 0
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
				continue
			}
			count++
		}
		return count, nil
	}

	if fileExists(workspace, "Pipfile") {
		data, err := os.ReadFile(filepath.Join(workspace, "Pipfile"))
		if err != nil {
			return 0, err
		}
		count := 0
		inPackages := false
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "[") {
				inPackages = line == "[packages]" || line == "[dev-packages]"
				continue
			}
			if inPackages && line != "" && strings.Contains(line, "=") {
				count++
			}
		}
		return count, nil
	}

	return 0, nil
}

func countJVMDependencies(workspace string) (int, error) {
	if fileExists(workspace, "pom.xml") {
		data, err := os.ReadFile(filepath.Join(workspace, "pom.xml"))
		if err != nil {
			return 0, err
		}
		return strings.Count(string(data), "<dependency>"), nil
	}
	return countGradleDependencies(workspace)
}

func countGradleDependencies(workspace string) (int, error) {
	for _, gradle := range []string{"build.gradle", "build.gradle.kts"} {
		if !fileExists(workspace, gradle) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(workspace, gradle))
		if err != nil {
			return 0, err
		}
		count := 0
		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			for _, prefix := range gradleDependencyPrefixes {
				if strings.HasPrefix(trimmed, prefix+" ") || strings.HasPrefix(trimmed, prefix+"(") {
					count++
					break
				}
			}
		}
		return count, nil
	}
	return 0, nil
}

func countPodfileDependencies(workspace string) (int, error) {
	if !fileExists(workspace, "Podfile") {
		return 0, nil
	}
	data, err := os.ReadFile(filepath.Join(workspace, "Podfile"))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "pod ") {
			count++
		}
	}
	return count, nil
}
