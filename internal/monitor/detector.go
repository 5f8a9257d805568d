package monitor

import (
	"regexp"

	"github.com/rs/zerolog/log"
)

// AbuseDetector flags suspicious command submissions for audit and metrics.
// It observes; it never blocks. Rejection is the validator's job, and the
// validator's checks stay authoritative even if a pattern here is missed.
type AbuseDetector struct {
	patterns []DetectionPattern
}

// DetectionPattern defines a suspicious pattern to match.
type DetectionPattern struct {
	Name        string
	Description string
	Regex       *regexp.Regexp
	Severity    Severity
}

// Severity levels for detected patterns.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Detection represents a detected suspicious pattern.
type Detection struct {
	Pattern  string `json:"pattern"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// NewAbuseDetector creates a detector with default patterns.
func NewAbuseDetector() *AbuseDetector {
	return &AbuseDetector{
		patterns: defaultPatterns(),
	}
}

// AnalyzeCommand checks submitted command text for suspicious patterns.
func (d *AbuseDetector) AnalyzeCommand(text string) []Detection {
	var detections []Detection

	for _, p := range d.patterns {
		if p.Regex.MatchString(text) {
			detections = append(detections, Detection{
				Pattern:  p.Name,
				Severity: p.Severity.String(),
				Detail:   p.Description,
			})

			log.Warn().
				Str("pattern", p.Name).
				Str("severity", p.Severity.String()).
				Msg("suspicious command pattern detected")
		}
	}

	return detections
}

func defaultPatterns() []DetectionPattern {
	return []DetectionPattern{
		{
			Name:        "shell_chaining",
			Description: "Command chaining or substitution characters",
			Regex:       regexp.MustCompile("[;|&`]|\\$\\("),
			Severity:    SeverityHigh,
		},
		{
			Name:        "ping_flood",
			Description: "Ping flood or unbounded interval flags",
			Regex:       regexp.MustCompile(`\bping\b.*\s-(f|i\s*0(\.0+)?)\b`),
			Severity:    SeverityHigh,
		},
		{
			Name:        "port_scan_sweep",
			Description: "Wide port or address sweep request",
			Regex:       regexp.MustCompile(`\b(nmap|masscan)\b|/([0-9]|1[0-6])\b`),
			Severity:    SeverityMedium,
		},
		{
			Name:        "dns_zone_transfer",
			Description: "DNS zone transfer attempt",
			Regex:       regexp.MustCompile(`\bdig\b.*\baxfr\b`),
			Severity:    SeverityMedium,
		},
		{
			Name:        "metadata_service",
			Description: "Probing a cloud metadata service",
			Regex:       regexp.MustCompile(`169\.254\.169\.254|metadata\.google|metadata\.aws`),
			Severity:    SeverityHigh,
		},
		{
			Name:        "privilege_probe",
			Description: "Privilege escalation keywords in arguments",
			Regex:       regexp.MustCompile(`(?i)\b(sudo|setcap|capsh)\b`),
			Severity:    SeverityMedium,
		},
	}
}
