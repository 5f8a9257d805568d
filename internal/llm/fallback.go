package llm

import (
	"fmt"
	"strings"

	"netcopilot/internal/command"
)

// fallbackExplanation builds a deterministic explanation from the execution
// result alone. This is the required degraded-mode contract: it must produce
// a well-formed, non-empty explanation for every possible Result and can
// never fail.
func fallbackExplanation(res *command.Result) *Explanation {
	var summary string
	var suggestions []string

	switch {
	case res.TimedOut:
		summary = fmt.Sprintf("The command %q did not finish within the allowed time and was terminated.", res.Command)
		suggestions = append(suggestions,
			"Try a bounded variant (for example ping -c 4 instead of an endless ping)",
			"Check whether the target host is reachable at all",
		)

	case res.ExitCode == command.ExitNotFound:
		summary = fmt.Sprintf("The command could not run: %s", strings.TrimSpace(res.Stderr))
		if alt := command.Alternative(res.Command); alt != "" {
			suggestions = append(suggestions, fmt.Sprintf("On this system try %q instead", alt))
		}
		suggestions = append(suggestions, "Verify the utility is installed and on PATH")

	case res.ExitCode == command.ExitPermissionDenied:
		summary = fmt.Sprintf("The command could not run: %s", strings.TrimSpace(res.Stderr))
		suggestions = append(suggestions, "Some diagnostics need elevated privileges; check the utility's permissions")

	case res.ExitCode == 0:
		summary = fmt.Sprintf("Command %q exited with code 0 (success).", res.Command)
		if line := firstLine(res.Stdout); line != "" {
			summary += " Output begins: " + line
		}
		suggestions = append(suggestions, "Review the raw output above for details")

	default:
		summary = fmt.Sprintf("Command %q exited with code %d.", res.Command, res.ExitCode)
		if line := firstLine(res.Stderr); line != "" {
			summary += " stderr: " + line
		}
		suggestions = append(suggestions, "Check the command's arguments and the target host")
		if alt := command.Alternative(res.Command); alt != "" {
			suggestions = append(suggestions, fmt.Sprintf("Alternatively try %q", alt))
		}
	}

	return &Explanation{
		Summary:     summary,
		Suggestions: suggestions,
		Source:      SourceFallback,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
