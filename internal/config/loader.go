package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRules loads the verification rules.
// Search order: customPath -> ~/.arcade/configs/rules.yaml -> ./configs/rules.yaml -> embedded default
func LoadRules(customPath string) (Rules, error) {
	var cfg Rules
	if err := load(customPath, "rules.yaml", defaultRulesYAML, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid rules: %w", err)
	}
	return cfg, nil
}

// LoadRunner loads the runner simulation configuration.
// Search order: customPath -> ~/.arcade/configs/runner.yaml -> ./configs/runner.yaml -> embedded default
func LoadRunner(customPath string) (Runner, error) {
	var cfg Runner
	if err := load(customPath, "runner.yaml", defaultRunnerYAML, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid runner config: %w", err)
	}
	return cfg, nil
}

// load decodes the first config found along the search order into out.
// A custom path that cannot be read or parsed is an error; the other
// locations are optional and skipped on any failure.
func load(customPath, filename string, embedded []byte, out any) error {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return nil
	}

	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if err := yaml.Unmarshal(data, out); err == nil {
			return nil
		}
	}

	if err := yaml.Unmarshal(embedded, out); err != nil {
		return fmt.Errorf("failed to parse embedded %s: %w", filename, err)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}
