package validation

import "testing"

func TestValidateEnv_ValidKeys(t *testing.T) {
	keys := []string{"PATH", "MY_VAR", "_private", "VAR123", "a"}

	for _, key := range keys {
		if err := ValidateEnv(key, "value"); err != nil {
			t.Errorf("ValidateEnv(%q) = %v, want nil", key, err)
		}
	}
}

func TestValidateEnv_InvalidKeys(t *testing.T) {
	keys := []string{"", "MY-VAR", "MY VAR", "VAR$", "VAR=1", "a.b"}

	for _, key := range keys {
		if err := ValidateEnv(key, "value"); err == nil {
			t.Errorf("ValidateEnv(%q) = nil, want error", key)
		}
	}
}

func TestValidateEnv_Values(t *testing.T) {
	// Env values may carry shell metacharacters; only NUL is rejected
	// because the OS cannot represent it.
	if err := ValidateEnv("VAR", "a;b|c$(d)"); err != nil {
		t.Errorf("ValidateEnv with metacharacter value = %v, want nil", err)
	}
	if err := ValidateEnv("VAR", "has\x00nul"); err == nil {
		t.Error("ValidateEnv with NUL value = nil, want error")
	}
}

func TestMinimalEnvironment(t *testing.T) {
	env := MinimalEnvironment()

	for _, key := range []string{"PATH", "LANG", "LC_ALL", "HOME", "USER"} {
		if _, ok := env[key]; !ok {
			t.Errorf("MinimalEnvironment missing %q", key)
		}
	}
	if env["PATH"] == "" {
		t.Error("MinimalEnvironment PATH is empty")
	}
}

func TestMergeEnvironment(t *testing.T) {
	base := map[string]string{"A": "1", "B": "2"}
	override := map[string]string{"B": "3", "C": "4"}

	merged := MergeEnvironment(base, override)

	if merged["A"] != "1" || merged["B"] != "3" || merged["C"] != "4" {
		t.Errorf("MergeEnvironment = %v, want override precedence", merged)
	}

	// Inputs must not be mutated.
	if base["B"] != "2" {
		t.Error("MergeEnvironment mutated base map")
	}
}
