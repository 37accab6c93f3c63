package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchCode(t *testing.T) {
	var rules Rules
	if err := yaml.Unmarshal(GetDefaultYAML("rules"), &rules); err != nil {
		t.Fatalf("embedded rules.yaml: %v", err)
	}
	if !reflect.DeepEqual(rules, DefaultRules()) {
		t.Errorf("embedded rules differ from DefaultRules():\n%+v\n%+v", rules, DefaultRules())
	}

	var runner Runner
	if err := yaml.Unmarshal(GetDefaultYAML("runner"), &runner); err != nil {
		t.Fatalf("embedded runner.yaml: %v", err)
	}
	if !reflect.DeepEqual(runner, DefaultRunner()) {
		t.Errorf("embedded runner differs from DefaultRunner():\n%+v\n%+v", runner, DefaultRunner())
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Errorf("DefaultRules().Validate() = %v", err)
	}
	if err := DefaultRunner().Validate(); err != nil {
		t.Errorf("DefaultRunner().Validate() = %v", err)
	}
}

func TestRulesValidateReportsEveryProblem(t *testing.T) {
	r := DefaultRules()
	r.TickRate = 0
	r.MaxScore = -1
	r.PRNG = "xorshift"

	err := r.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"tick_rate", "max_score", "prng"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadRulesCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := []byte(`tick_rate: 30
max_input_events: 50
max_tick: 1000
session_expiry_ms: 60000
timing_tolerance_ms: 500
max_score: 1000
max_name_length: 10
max_body_bytes: 4096
prng: mulberry32
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() failed: %v", err)
	}
	if rules.TickRate != 30 || rules.MaxInputEvents != 50 {
		t.Errorf("unexpected rules: %+v", rules)
	}
	if rules.SessionExpiry().Seconds() != 60 {
		t.Errorf("SessionExpiry() = %v, expected 1m", rules.SessionExpiry())
	}
}

func TestLoadRulesMissingCustomPath(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}
}

func TestLoadRunnerRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  gravity: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRunner(path); err == nil {
		t.Error("expected validation error for zero gravity")
	}
}

func TestTicksToMillis(t *testing.T) {
	r := DefaultRules()
	if got := r.TicksToMillis(600); got != 10000 {
		t.Errorf("TicksToMillis(600) = %d, expected 10000", got)
	}
	if got := r.TicksToMillis(61); got != 1016 {
		t.Errorf("TicksToMillis(61) = %d, expected 1016", got)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(DefaultRules(), DefaultRunner())
	b := Fingerprint(DefaultRules(), DefaultRunner())
	if a == "" || a != b {
		t.Fatalf("fingerprint should be stable, got %q and %q", a, b)
	}

	changed := DefaultRunner()
	changed.Physics.Gravity++
	if Fingerprint(DefaultRules(), changed) == a {
		t.Error("fingerprint should change when physics change")
	}
}
