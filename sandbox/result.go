package sandbox

import "github.com/isdmx/doctest/language"

// Status classifies the outcome of running one example.
type Status string

// Execution statuses.
const (
	// StatusPassed means the output matched the expectation, or the
	// process exited zero when no expectation was present.
	StatusPassed Status = "passed"

	// StatusFailed means the example ran but its output mismatched the
	// expectation.
	StatusFailed Status = "failed"

	// StatusError covers non-zero exits without an expectation, timeouts,
	// and internal faults such as sandbox setup or spawn failures.
	StatusError Status = "error"

	// StatusSkipped means the example was excluded by configuration and
	// never executed.
	StatusSkipped Status = "skipped"
)

// TimeoutExitCode is recorded when an example is force-terminated for
// exceeding its wall-clock timeout. It matches the coreutils timeout
// convention and is distinct from normal interpreter failure codes.
const TimeoutExitCode = 124

// ExecutionResult is the immutable outcome of running one example.
type ExecutionResult struct {
	ExampleID string            `json:"exampleId"`
	Language  language.Language `json:"language"`
	Status    Status            `json:"status"`

	// Output is captured standard output, truncated to the runner's
	// configured ceiling.
	Output string `json:"output"`

	// ErrorMessage is populated for failed and error results.
	ErrorMessage string `json:"errorMessage,omitempty"`

	ExitCode        int   `json:"exitCode"`
	ExecutionTimeMs int64 `json:"executionTimeMs"`
}
