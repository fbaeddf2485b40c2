package drillfix

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules_EmbeddedMatchesDefaults(t *testing.T) {
	t.Setenv(RulesEnv, "")
	rules, err := LoadRules()
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules != DefaultRules() {
		t.Fatalf("embedded rules %+v differ from defaults %+v", rules, DefaultRules())
	}
}

func TestLoadRules_OverrideKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("min_unit: 20\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	t.Setenv(RulesEnv, path)
	rules, err := LoadRules()
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.MinUnit != 20 {
		t.Fatalf("expected min_unit 20, got %d", rules.MinUnit)
	}
	if rules.DomainPrefix != "fsi_" || rules.MaxCueRunes != DefaultMaxCueRunes || rules.GeneratedBy != "cmd/drillfix" {
		t.Fatalf("defaults lost: %+v", rules)
	}
}

func TestLoadRules_MissingOverrideFile(t *testing.T) {
	t.Setenv(RulesEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadRules(); err == nil {
		t.Fatalf("expected error for missing override")
	}
}

func TestParseRules_Rejects(t *testing.T) {
	bad := map[string]string{
		"zero cue bound":   "max_cue_runes: 0\n",
		"negative unit":    "min_unit: -1\n",
		"empty prefix":     "domain_prefix: \"\"\n",
		"wrong kind":       "kind: pipeline\n",
		"blank marker":     "generated_by: \"  \"\n",
		"malformed yaml":   "min_unit: [\n",
		"wrong field type": "min_unit: lots\n",
	}
	for name, doc := range bad {
		if _, err := ParseRules([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
