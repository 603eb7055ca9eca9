package schema

import "strings"

// Custom string types for type safety.
type (
	// ProjectType represents the detected project ecosystem.
	ProjectType string

	// BranchType represents the classified branch category.
	BranchType string

	// BuildType represents the build flavor.
	BuildType string

	// Environment represents the target environment of the build.
	Environment string

	// Confidence represents the confidence level of a prediction.
	Confidence string

	// PredictionMethod represents how a prediction was produced.
	PredictionMethod string

	// DatabaseBackend represents the database backend for build history.
	DatabaseBackend string

	// OutputMode represents the format of the output.
	OutputMode string

	// ProvisionBias represents the under- vs over-provisioning trade-off.
	ProvisionBias string

	// DetectionStatus represents whether a metric was measured or defaulted.
	DetectionStatus string
)

// All project types supported.
const (
	PythonProject      ProjectType = "python" // default
	JavaProject        ProjectType = "java"
	NodeJSProject      ProjectType = "nodejs"
	ReactNativeProject ProjectType = "react-native"
	AndroidProject     ProjectType = "android"
	IOSProject         ProjectType = "ios"
)

// All branch types supported.
const (
	FeatureBranch BranchType = "feature" // default
	DevelopBranch BranchType = "develop"
	MainBranch    BranchType = "main"
	HotfixBranch  BranchType = "hotfix"
	ReleaseBranch BranchType = "release"
)

// All build types supported.
const (
	DebugBuild   BuildType = "debug" // default
	ReleaseBuild BuildType = "release"
)

// All environments supported.
const (
	DevelopmentEnv Environment = "development" // default
	StagingEnv     Environment = "staging"
	ProductionEnv  Environment = "production"
)

// All confidence levels supported.
const (
	LowConfidence    Confidence = "low"
	MediumConfidence Confidence = "medium"
	HighConfidence   Confidence = "high"
)

// All prediction methods supported.
const (
	ModelMethod    PredictionMethod = "model"
	FallbackMethod PredictionMethod = "fallback"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All output modes supported.
const (
	TableOut OutputMode = "table" // default
	JSONOut  OutputMode = "json"
	CSVOut   OutputMode = "csv"
)

// All provisioning biases supported.
const (
	BalancedBias    ProvisionBias = "balanced" // default
	CostBias        ProvisionBias = "cost"
	ReliabilityBias ProvisionBias = "reliability"
)

// All detection statuses supported.
const (
	MeasuredStatus  DetectionStatus = "measured"
	DefaultedStatus DetectionStatus = "defaulted"
)

// UnknownBranch is the branch name recorded when detection fails.
const UnknownBranch = "unknown"

// Numeric feature codes for categorical features. These are the canonical
// encodings shared by the assembler, the runner request payload and the
// feature manifest, and must match the model's training encoding exactly.
var (
	// ProjectTypeCodes maps project types to their feature encoding.
	ProjectTypeCodes = map[ProjectType]int{
		PythonProject:      0,
		JavaProject:        1,
		NodeJSProject:      2,
		ReactNativeProject: 3,
		AndroidProject:     4,
		IOSProject:         5,
	}

	// BranchTypeCodes maps branch types to their feature encoding.
	BranchTypeCodes = map[BranchType]int{
		FeatureBranch: 0,
		DevelopBranch: 1,
		MainBranch:    2,
		HotfixBranch:  3,
		ReleaseBranch: 4,
	}

	// BuildTypeCodes maps build types to their feature encoding.
	BuildTypeCodes = map[BuildType]int{
		DebugBuild:   0,
		ReleaseBuild: 1,
	}

	// EnvironmentCodes maps environments to their feature encoding.
	EnvironmentCodes = map[Environment]int{
		DevelopmentEnv: 0,
		StagingEnv:     1,
		ProductionEnv:  2,
	}
)

// ValidProjectTypes lists all valid project types.
var ValidProjectTypes = map[ProjectType]struct{}{
	PythonProject:      {},
	JavaProject:        {},
	NodeJSProject:      {},
	ReactNativeProject: {},
	AndroidProject:     {},
	IOSProject:         {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TableOut: {},
	JSONOut:  {},
	CSVOut:   {},
}

// ValidProvisionBiases lists all valid provisioning biases.
var ValidProvisionBiases = map[ProvisionBias]struct{}{
	BalancedBias:    {},
	CostBias:        {},
	ReliabilityBias: {},
}

// ValidBuildTypes lists all valid build types.
var ValidBuildTypes = map[BuildType]struct{}{
	DebugBuild:   {},
	ReleaseBuild: {},
}

// ValidEnvironments lists all valid environments.
var ValidEnvironments = map[Environment]struct{}{
	DevelopmentEnv: {},
	StagingEnv:     {},
	ProductionEnv:  {},
}

// ClassifyBranch maps a branch name to its branch type. Unrecognized names
// classify as feature, matching the model's training encoding.
func ClassifyBranch(name string) BranchType {
	branch := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(branch, "feature"):
		return FeatureBranch
	case branch == "develop" || branch == "development":
		return DevelopBranch
	case branch == "main" || branch == "master":
		return MainBranch
	case strings.Contains(branch, "hotfix"):
		return HotfixBranch
	case strings.Contains(branch, "release"):
		return ReleaseBranch
	default:
		return FeatureBranch
	}
}

// ParseBuildType maps a raw build type string to its enum value.
// Release-like values map to release; everything else is debug.
func ParseBuildType(raw string) BuildType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "release", "prodrelease", "prod-release":
		return ReleaseBuild
	default:
		return DebugBuild
	}
}

// ParseEnvironment maps a raw environment string to its enum value.
func ParseEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "prod", "production":
		return ProductionEnv
	case "staging", "stage":
		return StagingEnv
	default:
		return DevelopmentEnv
	}
}

// ParseConfidence maps a raw confidence string to its enum value.
// Unrecognized values map to medium.
func ParseConfidence(raw string) Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return HighConfidence
	case "low":
		return LowConfidence
	default:
		return MediumConfidence
	}
}
