package predict

import "github.com/sizeup-ci/sizeup/schema"

// baseline is the resource profile of a typical small change for one
// ecosystem, taken from historical build medians.
type baseline struct {
	cpuPercent  float64
	memoryGB    float64
	timeMinutes float64
}

var fallbackBaselines = map[schema.ProjectType]baseline{
	schema.PythonProject:      {cpuPercent: 30, memoryGB: 2.0, timeMinutes: 8},
	schema.JavaProject:        {cpuPercent: 50, memoryGB: 4.0, timeMinutes: 15},
	schema.NodeJSProject:      {cpuPercent: 40, memoryGB: 3.0, timeMinutes: 10},
	schema.ReactNativeProject: {cpuPercent: 65, memoryGB: 8.0, timeMinutes: 25},
	schema.AndroidProject:     {cpuPercent: 70, memoryGB: 10.0, timeMinutes: 30},
	schema.IOSProject:         {cpuPercent: 60, memoryGB: 8.0, timeMinutes: 25},
}

// Estimate produces the heuristic prediction used whenever the model cannot.
// It never fails and always reports low confidence so downstream consumers
// can tell the two apart.
func Estimate(pt schema.ProjectType, vector schema.FeatureVector) schema.PredictionResult {
	base, ok := fallbackBaselines[pt]
	if !ok {
		base = fallbackBaselines[schema.PythonProject]
	}

	scale := changeScale(vector.FilesChanged)
	cpu := base.cpuPercent * scale
	if cpu > 100 {
		cpu = 100
	}
	mem := base.memoryGB * scale
	minutes := base.timeMinutes * scale

	if vector.IsFirstBuild == 1 {
		minutes *= 1.5
		mem *= 1.2
	}
	if vector.CacheAvailable == 0 {
		minutes *= 1.5
	}
	if vector.IsCleanBuild == 1 {
		minutes *= 1.5
	}
	if vector.IsMonorepo == 1 {
		minutes *= 1.3
	}
	if vector.BuildType == schema.BuildTypeCodes[schema.ReleaseBuild] {
		minutes *= 1.4
	}

	return schema.PredictionResult{
		CPUPercent:  cpu,
		MemoryGB:    mem,
		TimeMinutes: minutes,
		Confidence:  schema.LowConfidence,
		Method:      schema.FallbackMethod,
	}
}

// changeScale widens the baseline for larger change sets in coarse steps.
func changeScale(filesChanged int) float64 {
	switch {
	case filesChanged <= 10:
		return 1.0
	case filesChanged <= 30:
		return 1.15
	case filesChanged <= 60:
		return 1.3
	default:
		return 1.5
	}
}
