package validation

import (
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()

	if err := ValidatePath(dir); err != nil {
		t.Errorf("ValidatePath(existing dir) = %v, want nil", err)
	}

	if err := ValidatePath(filepath.Join(dir, "missing")); err == nil {
		t.Error("ValidatePath(missing) = nil, want error")
	}

	if err := ValidatePath("../escape"); err == nil {
		t.Error("ValidatePath(traversal) = nil, want error")
	}
}

func TestValidateCommandPath_Absolute(t *testing.T) {
	if err := ValidateCommandPath("/bin/sh"); err != nil {
		t.Errorf("ValidateCommandPath(/bin/sh) = %v, want nil", err)
	}

	if err := ValidateCommandPath("/no/such/binary"); err == nil {
		t.Error("ValidateCommandPath(missing absolute) = nil, want error")
	}
}

func TestValidateCommandPath_BareName(t *testing.T) {
	// Bare names are resolved through PATH at spawn time; validation only
	// screens the text.
	if err := ValidateCommandPath("echo"); err != nil {
		t.Errorf("ValidateCommandPath(echo) = %v, want nil", err)
	}

	if err := ValidateCommandPath("echo;rm"); err == nil {
		t.Error("ValidateCommandPath(injection) = nil, want error")
	}
}

func TestValidateCommandPath_RelativeWithSeparator(t *testing.T) {
	if err := ValidateCommandPath("bin/tool"); err == nil {
		t.Error("ValidateCommandPath(relative with separator) = nil, want error")
	}
	if err := ValidateCommandPath("./tool"); err == nil {
		t.Error("ValidateCommandPath(./tool) = nil, want error")
	}
}
