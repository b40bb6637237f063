package envkit_test

import (
	"testing"

	"stockanalyzer/pkg/envkit"
)

func TestLookup(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		t.Setenv("ENVKIT_TEST_PRESENT", "value")
		val, ok := envkit.Lookup("ENVKIT_TEST_PRESENT")
		if !ok {
			t.Fatal("Lookup() ok = false, want true")
		}
		if val != "value" {
			t.Errorf("Lookup() = %q, want %q", val, "value")
		}
	})

	t.Run("whitespace only counts as absent", func(t *testing.T) {
		t.Setenv("ENVKIT_TEST_BLANK", "   ")
		if _, ok := envkit.Lookup("ENVKIT_TEST_BLANK"); ok {
			t.Error("Lookup() ok = true for blank value, want false")
		}
	})

	t.Run("value is trimmed", func(t *testing.T) {
		t.Setenv("ENVKIT_TEST_PADDED", "  padded  ")
		val, ok := envkit.Lookup("ENVKIT_TEST_PADDED")
		if !ok || val != "padded" {
			t.Errorf("Lookup() = %q, %v, want %q, true", val, ok, "padded")
		}
	})

	t.Run("unset", func(t *testing.T) {
		if _, ok := envkit.Lookup("ENVKIT_TEST_DOES_NOT_EXIST"); ok {
			t.Error("Lookup() ok = true for unset variable, want false")
		}
	})
}

func TestMissing(t *testing.T) {
	t.Setenv("ENVKIT_TEST_SET", "x")
	t.Setenv("ENVKIT_TEST_EMPTY", "")

	missing := envkit.Missing("ENVKIT_TEST_SET", "ENVKIT_TEST_EMPTY", "ENVKIT_TEST_UNSET")
	if len(missing) != 2 {
		t.Fatalf("Missing() returned %v, want two entries", missing)
	}
	if missing[0] != "ENVKIT_TEST_EMPTY" || missing[1] != "ENVKIT_TEST_UNSET" {
		t.Errorf("Missing() = %v, order not preserved", missing)
	}

	if got := envkit.Missing("ENVKIT_TEST_SET"); got != nil {
		t.Errorf("Missing() = %v for present variable, want nil", got)
	}
}
