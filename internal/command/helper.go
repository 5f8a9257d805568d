package command

import (
	"runtime"
	"strings"
)

// Suggestions returns example networking commands appropriate for the host OS.
// Served by the API so clients can present ready-to-run diagnostics.
func Suggestions() []string {
	return suggestionsFor(runtime.GOOS)
}

func suggestionsFor(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"ifconfig",
			"ping -c 1 127.0.0.1",
			"traceroute 8.8.8.8",
			"netstat -an",
			"dig google.com",
			"nslookup google.com",
			"route -n",
			"arp -a",
		}
	case "windows":
		return []string{
			"ipconfig /all",
			"ping 127.0.0.1",
			"tracert 8.8.8.8",
			"netstat -an",
			"nslookup google.com",
			"route print",
			"arp -a",
		}
	default: // linux and friends
		return []string{
			"ip addr",
			"ifconfig",
			"ping -c 1 127.0.0.1",
			"traceroute 8.8.8.8",
			"netstat -tuln",
			"ss -tuln",
			"dig google.com",
			"nslookup google.com",
			"route -n",
			"arp -a",
		}
	}
}

// Alternative suggests a host-appropriate replacement for a command that
// failed to run, keyed on its first token. Returns "" when there is none.
func Alternative(cmdText string) string {
	return alternativeFor(runtime.GOOS, cmdText)
}

func alternativeFor(goos, cmdText string) string {
	fields := strings.Fields(cmdText)
	if len(fields) == 0 {
		return ""
	}
	first := strings.ToLower(fields[0])

	var table map[string]string
	switch goos {
	case "darwin":
		table = map[string]string{
			"ipconfig": "ifconfig",
			"tracert":  "traceroute",
			"ip":       "ifconfig",
		}
	case "windows":
		table = map[string]string{
			"ifconfig":   "ipconfig /all",
			"traceroute": "tracert",
			"ip":         "ipconfig",
			"dig":        "nslookup",
		}
	default:
		table = map[string]string{
			"ipconfig": "ip addr",
			"tracert":  "traceroute",
			"netstat":  "ss -tuln",
		}
	}
	return table[first]
}
