package predict

import (
	"testing"
)

// FuzzExtractResponse fuzzes the runner stdout extractor with arbitrary
// output, including noise around and between prediction documents.
func FuzzExtractResponse(f *testing.F) {
	seeds := []string{
		`{"cpu":45.0,"memoryGb":3.2,"timeMinutes":12.5,"confidence":"high","method":"model"}`,
		"Collecting scikit-learn\npip warning: blah\n{\"cpu\":45.0,\"memoryGb\":3.2,\"timeMinutes\":12.5}",
		"{\"cpu\":10,\"memoryGb\":1,\"timeMinutes\":2}\ntrailing noise",
		"{\"cpu\":10,\"memoryGb\":1,\"timeMinutes\":2}\n{\"cpu\":90,\"memoryGb\":8,\"timeMinutes\":30}",
		`{"cpu":-5,"memoryGb":0,"timeMinutes":-1}`,
		`{"cpu":45.0,"memoryGb":3.2}`,
		`{"cpu":null,"memoryGb":3.2,"timeMinutes":12.5}`,
		"{not json",
		"",
		"\n\n\n",
		"plain progress text only",
		`{"cpu":1e308,"memoryGb":1e308,"timeMinutes":1e308}`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, out string) {
		resp, err := extractResponse([]byte(out))
		if err != nil {
			return
		}
		if resp.CPUPercent == nil || resp.MemoryGB == nil || resp.TimeMinutes == nil {
			t.Fatalf("extracted response with missing fields from %q", out)
		}
		result, err := resp.toResult()
		if err != nil {
			return
		}
		if result.CPUPercent < 0 || result.CPUPercent > 100 {
			t.Fatalf("cpu %v outside [0,100] from %q", result.CPUPercent, out)
		}
		if result.MemoryGB <= 0 || result.TimeMinutes <= 0 {
			t.Fatalf("non-positive demand accepted from %q", out)
		}
	})
}
