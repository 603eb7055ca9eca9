package project

import "github.com/sizeup-ci/sizeup/schema"

// CacheDirsByType maps each ecosystem to the workspace directories whose
// presence indicates a warm dependency or build cache.
var CacheDirsByType = map[schema.ProjectType][]string{
	schema.PythonProject:      {".venv", "venv", ".tox", ".pytest_cache"},
	schema.JavaProject:        {".gradle", "target", "build"},
	schema.NodeJSProject:      {"node_modules"},
	schema.ReactNativeProject: {"node_modules", "ios/Pods", "android/.gradle"},
	schema.AndroidProject:     {".gradle", "app/build", "build"},
	schema.IOSProject:         {"Pods", "DerivedData"},
}

// DetectCacheDirs reports whether any cache directory for the ecosystem
// exists in the workspace.
func DetectCacheDirs(workspace string, pt schema.ProjectType) bool {
	for _, dir := range CacheDirsByType[pt] {
		if dirExists(workspace, dir) {
			return true
		}
	}
	return false
}
