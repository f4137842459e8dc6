// Package validation screens commands, arguments, environment variables
// and paths before any process is created. Rejection is all-or-nothing:
// a failed check means no OS side effect has happened.
package validation

import (
	"fmt"
	"strings"
)

// dangerousChars are shell metacharacters that enable injection when an
// input reaches a shell. Spawning never uses a shell, but the screen
// still rejects them so inputs stay safe to log and to forward.
var dangerousChars = []rune{
	';', '&', '|', '$', '`', '>', '<',
	'(', ')', '{', '}',
	'\n', '\r', 0,
	'\'', '"',
}

// dangerousPatterns are multi-character substitution and chaining forms
// not covered by the single-character screen.
var dangerousPatterns = []string{"$(", "${", "[[", "]]", "&&", "||"}

// ValidateInput screens a string for shell metacharacters, path
// traversal sequences and substitution patterns. The empty string is
// valid.
func ValidateInput(input string) error {
	for _, c := range dangerousChars {
		if strings.ContainsRune(input, c) {
			return fmt.Errorf("input contains dangerous character %q", c)
		}
	}

	if strings.Contains(input, "..") || strings.Contains(input, "~") {
		return fmt.Errorf("input contains path traversal sequence")
	}

	for _, p := range dangerousPatterns {
		if strings.Contains(input, p) {
			return fmt.Errorf("input contains dangerous pattern %q", p)
		}
	}

	return nil
}

// IsSafe reports whether ValidateInput accepts the input.
func IsSafe(input string) bool {
	return ValidateInput(input) == nil
}

// ValidateArgs screens a full argument vector, reporting the position of
// the first rejected argument.
func ValidateArgs(args []string) error {
	for i, arg := range args {
		if err := ValidateInput(arg); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}

// Sanitize strips control characters from a string, keeping tab. It is a
// display helper for logs and diagnostics, not a substitute for
// ValidateInput.
func Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r < 32 && r != '\t' {
			continue
		}
		if r == 127 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
