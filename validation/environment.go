package validation

import (
	"fmt"
	"strings"
)

// ValidateEnv validates one environment override. Names are restricted to
// alphanumerics and underscore; values may contain anything except an
// embedded NUL byte.
func ValidateEnv(key, value string) error {
	if !isValidEnvKey(key) {
		return fmt.Errorf("invalid environment variable name %q", key)
	}
	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("environment variable %q value contains null byte", key)
	}
	return nil
}

func isValidEnvKey(key string) bool {
	if len(key) == 0 {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !((c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '_') {
			return false
		}
	}
	return true
}

// MinimalEnvironment returns a minimal safe environment for children that
// should not inherit the parent's full environment.
func MinimalEnvironment() map[string]string {
	return map[string]string{
		"PATH":   "/usr/bin:/bin",
		"LANG":   "C.UTF-8",
		"LC_ALL": "C.UTF-8",
		"HOME":   "/tmp",
		"USER":   "nobody",
	}
}

// MergeEnvironment merges base environment with overrides.
// Overrides take precedence.
func MergeEnvironment(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		result[k] = v
	}
	return result
}
