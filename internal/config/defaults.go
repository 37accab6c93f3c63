package config

import (
	_ "embed"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

//go:embed defaults/runner.yaml
var defaultRunnerYAML []byte

// DefaultRules returns the built-in verification rules.
func DefaultRules() Rules {
	return Rules{
		TickRate:          60,
		MaxInputEvents:    10000,
		MaxTick:           108000,
		SessionExpiryMs:   30 * 60 * 1000,
		TimingToleranceMs: 2000,
		MaxScore:          99999,
		MaxNameLength:     30,
		MaxBodyBytes:      1 << 20,
		PRNG:              "mulberry32",
	}
}

// DefaultRunner returns the built-in runner configuration.
func DefaultRunner() Runner {
	return Runner{
		Physics: Physics{
			Gravity:        80,
			JumpImpulse:    1000,
			MaxFallSpeed:   1500,
			FastFallFactor: 2,
			BaseSpeed:      500,
			BoostSpeed:     250,
			BrakeSpeed:     250,
			Acceleration:   20,
			PitDepth:       2000,
		},
		Player: Player{
			Width:      2,
			Height:     3,
			DuckHeight: 1,
		},
		Obstacles: Obstacles{
			StartClearance:  40,
			SpawnAhead:      80,
			MinSpacing:      18,
			MaxSpacing:      40,
			MinWidth:        1,
			MaxWidth:        3,
			MinHeight:       2,
			MaxHeight:       4,
			BirdChance:      200,
			MinBirdAltitude: 2,
			MaxBirdAltitude: 3,
			PitChance:       200,
			MinPitWidth:     3,
			MaxPitWidth:     6,
			CoinChance:      400,
			CoinAltitude:    5,
		},
		Scoring: Scoring{
			CellsPerPoint: 1,
			CoinValue:     10,
		},
		Difficulty: Difficulty{
			Enabled:      true,
			InitialLevel: 0,
			Progression: Progression{
				Type:  "distance",
				MaxAt: 5000,
			},
			Scaling: Scaling{
				SpeedMultiplier:  1000,
				SpacingReduction: 15,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config file name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "rules":
		return defaultRulesYAML
	case "runner":
		return defaultRunnerYAML
	default:
		return nil
	}
}
