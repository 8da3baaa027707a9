package suite

import (
	"fmt"
	"strings"

	"github.com/isdmx/doctest/sandbox"
)

// reportOutputLimit bounds how much captured output one failed test may
// contribute to the summary.
const reportOutputLimit = 200

// GenerateCheckRunSummary renders a check-run style markdown report for a
// completed suite: overall badge, counts table, and a section listing every
// non-passed, non-skipped result.
func GenerateCheckRunSummary(s *DocTestSuite) string {
	var sb strings.Builder

	if s.Failed == 0 && s.Errors == 0 {
		sb.WriteString("## Documentation Tests ✅\n\n")
		sb.WriteString("All executable examples passed.\n\n")
	} else {
		sb.WriteString("## Documentation Tests ❌\n\n")
		fmt.Fprintf(&sb, "%d of %d executable examples did not pass.\n\n", s.Failed+s.Errors, s.TotalExamples-s.Skipped)
	}

	sb.WriteString("| Total | Passed | Failed | Errors | Skipped |\n")
	sb.WriteString("|-------|--------|--------|--------|---------|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d |\n\n",
		s.TotalExamples, s.Passed, s.Failed, s.Errors, s.Skipped)

	if s.Failed > 0 || s.Errors > 0 {
		sb.WriteString("### Failed Tests\n\n")
		for _, res := range s.Results {
			if res.Status != sandbox.StatusFailed && res.Status != sandbox.StatusError {
				continue
			}
			fmt.Fprintf(&sb, "- `%s` (%s): %s\n", res.ExampleID, res.Language, res.ErrorMessage)
			if out := strings.TrimSpace(res.Output); out != "" {
				fmt.Fprintf(&sb, "  - output: `%s`\n", truncateForReport(out))
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Suite completed in %dms at %s.\n",
		s.DurationMs, s.ExecutedAt.Format("2006-01-02 15:04:05 UTC"))

	return sb.String()
}

func truncateForReport(s string) string {
	// Keep report rows single-line.
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= reportOutputLimit {
		return s
	}
	return s[:reportOutputLimit] + "..."
}
