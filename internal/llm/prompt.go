package llm

import (
	"fmt"
	"strings"

	"netcopilot/internal/command"
)

// buildPrompt renders the provider prompt for one execution, picking a focus
// section by the command's leading token. Output streams are truncated to
// maxChars each to respect upstream token limits.
func buildPrompt(res *command.Result, maxChars int) string {
	var b strings.Builder
	b.WriteString("Analyze this networking command output.\n\n")
	fmt.Fprintf(&b, "COMMAND: %s\n", res.Command)
	fmt.Fprintf(&b, "EXIT CODE: %d\n", res.ExitCode)
	if res.TimedOut {
		b.WriteString("NOTE: the command was terminated after exceeding its timeout.\n")
	}
	fmt.Fprintf(&b, "STDOUT:\n%s\n", truncate(res.Stdout, maxChars))
	if res.Stderr != "" {
		fmt.Fprintf(&b, "STDERR:\n%s\n", truncate(res.Stderr, maxChars))
	}
	b.WriteString("\n")
	b.WriteString(focusFor(res.Command))
	b.WriteString("\nRespond with a short summary paragraph followed by bullet-point suggestions.")
	return b.String()
}

func focusFor(cmdText string) string {
	fields := strings.Fields(cmdText)
	if len(fields) == 0 {
		return defaultFocus
	}
	switch strings.ToLower(fields[0]) {
	case "ping":
		return "Focus on: packet loss, latency patterns, and whether the target is reachable."
	case "traceroute", "tracert":
		return "Focus on: each hop's role, latency spikes, timeouts, and where the path degrades."
	case "ifconfig", "ipconfig", "ip":
		return "Focus on: active interfaces, assigned addresses, and configuration issues."
	case "dig", "nslookup", "host":
		return "Focus on: resolved records, the answering server, and DNS misconfiguration signs."
	case "netstat", "ss":
		return "Focus on: listening ports, established connections, and anything unexpected."
	case "route", "arp":
		return "Focus on: gateway reachability and table entries that look wrong."
	default:
		return defaultFocus
	}
}

const defaultFocus = "Focus on: what the output means, any problems visible in it, and next diagnostic steps."

func truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	return s[:maxChars] + "\n[output truncated]"
}
