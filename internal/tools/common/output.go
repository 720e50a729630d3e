package common

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
)

// CIResult is the machine-readable summary printed by tools in --ci mode.
type CIResult struct {
	OK         bool     `json:"ok"`
	Tool       string   `json:"tool"`
	Command    string   `json:"command"`
	DurationMS int64    `json:"duration_ms"`
	Details    []string `json:"details,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func NewCIResult(tool, command string, elapsed time.Duration, details []string, err error) CIResult {
	result := CIResult{
		OK:         err == nil,
		Tool:       tool,
		Command:    command,
		DurationMS: elapsed.Milliseconds(),
		Details:    details,
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

func WriteCIResult(w io.Writer, result CIResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ReportCommand records tool metrics for a finished command and, in CI
// mode, prints its JSON summary to stdout.
func ReportCommand(tool, command string, start time.Time, ci bool, details []string, err error) {
	elapsed := time.Since(start)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(context.Background(), tool, command, outcome)
	observability.RecordToolCommandDuration(context.Background(), tool, command, outcome, elapsed)
	if ci {
		_ = WriteCIResult(os.Stdout, NewCIResult(tool, command, elapsed, details, err))
	}
}
