package drillfix

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const RulesEnv = "DRILLFIX_RULES_YAML"

const rulesKind = "drillfix_rules"

//go:embed rules.yaml
var rulesFS embed.FS

// Rules decide which drills are in scope and how the patch is stamped.
type Rules struct {
	Kind         string `yaml:"kind"`
	Version      int    `yaml:"version"`
	DomainPrefix string `yaml:"domain_prefix"`
	MinUnit      int    `yaml:"min_unit"`
	MaxCueRunes  int    `yaml:"max_cue_runes"`
	GeneratedBy  string `yaml:"generated_by"`
}

func DefaultRules() Rules {
	return Rules{
		Kind:         rulesKind,
		Version:      1,
		DomainPrefix: "fsi_",
		MinUnit:      13,
		MaxCueRunes:  DefaultMaxCueRunes,
		GeneratedBy:  "cmd/drillfix",
	}
}

// LoadRules reads the file named by DRILLFIX_RULES_YAML, else the embedded rules.
// Fields missing from an override keep their defaults.
func LoadRules() (Rules, error) {
	data, source, err := readRules()
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", source, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return Rules{}, fmt.Errorf("rules %s: %w", source, err)
	}
	return rules, nil
}

func readRules() ([]byte, string, error) {
	if path := strings.TrimSpace(os.Getenv(RulesEnv)); path != "" {
		data, err := os.ReadFile(path)
		return data, path, err
	}
	data, err := rulesFS.ReadFile("rules.yaml")
	return data, "(embedded)", err
}

func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, err
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	if strings.TrimSpace(r.Kind) != rulesKind {
		return fmt.Errorf("unexpected kind: %q", r.Kind)
	}
	if r.DomainPrefix == "" {
		return errors.New("domain_prefix is required")
	}
	if r.MinUnit < 0 {
		return fmt.Errorf("min_unit must be >= 0, got %d", r.MinUnit)
	}
	if r.MaxCueRunes <= 0 {
		return fmt.Errorf("max_cue_runes must be > 0, got %d", r.MaxCueRunes)
	}
	if strings.TrimSpace(r.GeneratedBy) == "" {
		return errors.New("generated_by is required")
	}
	return nil
}
