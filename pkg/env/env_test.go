package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("SECOSHA_LOG_FORMAT", "console")
	t.Setenv("LOG_FORMAT", "json")

	if got := First("json", "SECOSHA_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected prefixed value, got %q", got)
	}
}

func TestFirstFallsBack(t *testing.T) {
	t.Setenv("SECOSHA_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "")

	if got := First("json", "SECOSHA_LOG_FORMAT", "LOG_FORMAT"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := First("json"); got != "json" {
		t.Fatalf("expected fallback with no keys, got %q", got)
	}
}
