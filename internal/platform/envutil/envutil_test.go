package envutil

import "testing"

func TestInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("DRILLFIX_TEST_INT", "abc")
	if got := Int("DRILLFIX_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
	t.Setenv("DRILLFIX_TEST_INT", " 42 ")
	if got := Int("DRILLFIX_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestBool_RecognizesSpellings(t *testing.T) {
	t.Setenv("DRILLFIX_TEST_BOOL", "On")
	if !Bool("DRILLFIX_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("DRILLFIX_TEST_BOOL", "no")
	if Bool("DRILLFIX_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("DRILLFIX_TEST_BOOL", "maybe")
	if !Bool("DRILLFIX_TEST_BOOL", true) {
		t.Fatalf("expected default true")
	}
}

func TestStringAndFloat(t *testing.T) {
	t.Setenv("DRILLFIX_TEST_STR", "  ")
	if got := String("DRILLFIX_TEST_STR", "def"); got != "def" {
		t.Fatalf("expected def, got %q", got)
	}
	t.Setenv("DRILLFIX_TEST_FLOAT", "0.25")
	if got := Float("DRILLFIX_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}
