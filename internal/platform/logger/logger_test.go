package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs_RedactsCredentialKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{"GOOGLE_APPLICATION_CREDENTIALS", "/secret/path.json", "drill_id", "d1"})
	if len(out) != 4 {
		t.Fatalf("expected 4 values, got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("expected credentials redacted, got %v", out[1])
	}
	if out[3] != "d1" {
		t.Fatalf("expected drill_id untouched, got %v", out[3])
	}
}

func TestSanitizeKVs_TruncatesLongStrings(t *testing.T) {
	long := strings.Repeat("é", maxValueRunes+10)
	out := sanitizeKVs([]interface{}{"response", long})
	got, ok := out[1].(string)
	if !ok {
		t.Fatalf("expected string value")
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if n := len([]rune(got)); n != maxValueRunes+1 {
		t.Fatalf("expected %d runes, got %d", maxValueRunes+1, n)
	}
}

func TestSanitizeKVs_KeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestParseLevel_DefaultsToWarn(t *testing.T) {
	if got := parseLevel(""); got.String() != "warn" {
		t.Fatalf("expected warn, got %s", got)
	}
	if got := parseLevel("DEBUG"); got.String() != "debug" {
		t.Fatalf("expected debug, got %s", got)
	}
}

func TestNew_BuildsBothModes(t *testing.T) {
	for _, mode := range []string{"development", "production"} {
		log, err := New(mode, "error")
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		log.With("run_id", "x").Debug("dropped")
		log.Sync()
	}
}
