// Package predict produces resource predictions, either through the external
// regression runner or through the heuristic fallback estimator.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// ErrUnavailable marks a prediction the model runner could not produce.
// Callers fall back to the heuristic estimator when they see it.
var ErrUnavailable = errors.New("model prediction unavailable")

// ModelSource resolves the model artifacts for a prediction attempt. The
// manifest may be nil when the source ships no feature manifest.
type ModelSource interface {
	Resolve(ctx context.Context) (string, *schema.FeatureManifest, error)
}

// Client invokes the external regression runner. One prediction is one
// invocation: no retries, a bounded wait, and every failure mode surfaces
// as ErrUnavailable so selection can continue on the fallback path.
type Client struct {
	runner  string
	script  string
	source  ModelSource
	timeout time.Duration
}

// NewClient builds a prediction client around a model source.
func NewClient(runner, script string, source ModelSource, timeout time.Duration) *Client {
	if runner == "" {
		runner = contract.DefaultRunner
	}
	if script == "" {
		script = contract.DefaultScript
	}
	if timeout <= 0 {
		timeout = contract.DefaultModelTimeout
	}
	return &Client{runner: runner, script: script, source: source, timeout: timeout}
}

// runnerResponse mirrors the JSON document the runner prints on stdout.
// Pointers distinguish a missing field from a zero value.
type runnerResponse struct {
	CPUPercent  *float64 `json:"cpu"`
	MemoryGB    *float64 `json:"memoryGb"`
	TimeMinutes *float64 `json:"timeMinutes"`
	Confidence  string   `json:"confidence"`
	Method      string   `json:"method"`
}

// Predict resolves the model, stages the feature vector as a request file
// and runs the prediction script against it. A schema mismatch between the
// vector and the model manifest returns schema.ErrManifestMismatch; every
// other failure returns ErrUnavailable.
func (c *Client) Predict(ctx context.Context, vector schema.FeatureVector) (schema.PredictionResult, error) {
	var zero schema.PredictionResult

	modelPath, manifest, err := c.source.Resolve(ctx)
	if err != nil {
		return zero, fmt.Errorf("%w: resolve model: %v", ErrUnavailable, err)
	}
	if manifest != nil {
		if err := manifest.Validate(); err != nil {
			return zero, err
		}
	}

	reqPath, err := stageRequest(vector)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer os.Remove(reqPath)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.runner, c.script, "--input", reqPath, "--model", modelPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w: runner timed out after %s", ErrUnavailable, c.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return zero, fmt.Errorf("%w: runner failed: %s", ErrUnavailable, msg)
	}

	resp, err := extractResponse(stdout.Bytes())
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp.toResult()
}

// stageRequest writes the canonical vector JSON to a temp file the runner
// reads through --input. The caller removes the file.
func stageRequest(vector schema.FeatureVector) (string, error) {
	payload, err := vector.EncodeJSON()
	if err != nil {
		return "", fmt.Errorf("encode features: %v", err)
	}
	file, err := os.CreateTemp("", "sizeup-features-*.json")
	if err != nil {
		return "", fmt.Errorf("stage request: %v", err)
	}
	if _, err := file.Write(payload); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("stage request: %v", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("stage request: %v", err)
	}
	return file.Name(), nil
}

// extractResponse finds the prediction document on stdout. Runners are free
// to print progress noise, so the whole output is tried first and then each
// line from the last backwards; the latest complete document wins.
func extractResponse(out []byte) (runnerResponse, error) {
	if resp, ok := parseResponseLine(bytes.TrimSpace(out)); ok {
		return resp, nil
	}
	lines := bytes.Split(out, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if resp, ok := parseResponseLine(bytes.TrimSpace(lines[i])); ok {
			return resp, nil
		}
	}
	return runnerResponse{}, errors.New("no prediction document on runner stdout")
}

func parseResponseLine(line []byte) (runnerResponse, bool) {
	if len(line) == 0 || line[0] != '{' {
		return runnerResponse{}, false
	}
	var resp runnerResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, false
	}
	if resp.CPUPercent == nil || resp.MemoryGB == nil || resp.TimeMinutes == nil {
		return resp, false
	}
	return resp, true
}

// toResult validates ranges and maps the raw strings onto the enums. CPU is
// clamped to a percentage; non-positive memory or duration is rejected
// because a selection based on it would be meaningless.
func (r runnerResponse) toResult() (schema.PredictionResult, error) {
	cpu := *r.CPUPercent
	if cpu < 0 {
		cpu = 0
	}
	if cpu > 100 {
		cpu = 100
	}

	mem := *r.MemoryGB
	minutes := *r.TimeMinutes
	if mem <= 0 || minutes <= 0 {
		return schema.PredictionResult{}, fmt.Errorf(
			"%w: implausible prediction (memoryGb=%v, timeMinutes=%v)", ErrUnavailable, mem, minutes)
	}

	method := schema.ModelMethod
	if strings.EqualFold(strings.TrimSpace(r.Method), string(schema.FallbackMethod)) {
		method = schema.FallbackMethod
	}

	return schema.PredictionResult{
		CPUPercent:  cpu,
		MemoryGB:    mem,
		TimeMinutes: minutes,
		Confidence:  schema.ParseConfidence(r.Confidence),
		Method:      method,
	}, nil
}
