package command

import (
	"strings"

	"netcopilot/internal/config"
)

// Reason classifies a validation verdict.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonEmpty         Reason = "empty"
	ReasonTooLong       Reason = "too_long"
	ReasonInvalidChars  Reason = "invalid_chars"
	ReasonDangerous     Reason = "dangerous"
	ReasonNotNetworking Reason = "not_networking"
)

// Verdict is the result of validating a raw command string.
type Verdict struct {
	Accepted bool   `json:"accepted"`
	Reason   Reason `json:"reason"`
	Detail   string `json:"detail,omitempty"`
}

// Validator classifies raw command strings against the configured admission
// policy. It is a pure function over its configuration: no I/O, no state.
type Validator struct {
	maxLength int
	allowlist map[string]struct{}
	denylist  map[string]struct{}
}

// forbiddenChars enable shell chaining or substitution. They are rejected
// unconditionally, before any list lookup, so an allowlisted leading token
// cannot smuggle a second command through.
const forbiddenChars = ";|&$()<>`\"'\\"

func NewValidator(cfg config.ValidationConfig) *Validator {
	v := &Validator{
		maxLength: cfg.MaxCommandLength,
		allowlist: make(map[string]struct{}, len(cfg.Allowlist)),
		denylist:  make(map[string]struct{}, len(cfg.Denylist)),
	}
	for _, name := range cfg.Allowlist {
		v.allowlist[name] = struct{}{}
	}
	for _, name := range cfg.Denylist {
		v.denylist[name] = struct{}{}
	}
	return v
}

// Validate classifies text. Checks short-circuit in a fixed order: empty,
// length, character set, denylist, allowlist. The length check runs before
// everything else so oversized input is never scanned further.
func (v *Validator) Validate(text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Verdict{Reason: ReasonEmpty, Detail: "empty command"}
	}

	if len(text) > v.maxLength {
		return Verdict{Reason: ReasonTooLong, Detail: "command exceeds maximum length"}
	}

	if bad := firstForbiddenChar(text); bad != 0 {
		return Verdict{Reason: ReasonInvalidChars, Detail: "disallowed character " + string(bad)}
	}
	for _, r := range text {
		if !allowedRune(r) {
			return Verdict{Reason: ReasonInvalidChars, Detail: "disallowed character " + string(r)}
		}
	}

	first := strings.Fields(text)[0]

	if _, ok := v.denylist[first]; ok {
		return Verdict{Reason: ReasonDangerous, Detail: "command " + first + " is forbidden"}
	}

	if _, ok := v.allowlist[first]; !ok {
		return Verdict{Reason: ReasonNotNetworking, Detail: "command " + first + " is not a recognized networking utility"}
	}

	return Verdict{Accepted: true, Reason: ReasonOK}
}

func firstForbiddenChar(text string) byte {
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(forbiddenChars, text[i]) >= 0 {
			return text[i]
		}
	}
	return 0
}

// allowedRune permits alphanumerics, spaces, and the punctuation legitimate
// flags need (-c, 8.8.8.8, host:port, /24, long_opt).
func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '\t', '-', '.', ':', '/', '_', '=', ',', '@', '+', '%', '[', ']':
		return true
	}
	return false
}
