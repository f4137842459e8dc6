package validation

import (
	"fmt"
	"os"
	"strings"
)

// ValidatePath validates a working directory or file path: it must pass
// ValidateInput and must exist on the filesystem at validation time.
func ValidatePath(path string) error {
	if err := ValidateInput(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("path does not exist: %s", path)
	}
	return nil
}

// ValidateCommandPath validates the command of a spawn request.
//
// Absolute paths must exist. Relative paths containing a separator are
// rejected outright as a security policy: only bare names resolved via
// the search path are allowed.
func ValidateCommandPath(cmd string) error {
	if strings.HasPrefix(cmd, "/") {
		if _, err := os.Stat(cmd); err != nil {
			return fmt.Errorf("command not found: %s", cmd)
		}
	} else if strings.Contains(cmd, "/") {
		return fmt.Errorf("relative command paths are not allowed")
	}

	return ValidateInput(cmd)
}
