package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
// A run must not start with a configuration that fails Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

const configFile = "racing.yaml"

// LoadRacing loads the racing configuration.
// Search order: customPath -> ~/.racer/configs/racing.yaml -> ./configs/racing.yaml -> embedded default.
// Files are applied on top of the defaults, so they only need the keys they change.
func LoadRacing(customPath string) (RacingConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return RacingConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return RacingConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(configFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", configFile)); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	return Default(), nil
}

// Default returns the embedded default configuration, falling back to the
// hardcoded one if the embedded YAML cannot be parsed.
func Default() RacingConfig {
	var cfg RacingConfig
	if err := yaml.Unmarshal(defaultRacingYAML, &cfg); err != nil {
		return DefaultRacingConfig()
	}
	return cfg
}

// Parse decodes YAML on top of the default configuration.
func Parse(data []byte) (RacingConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RacingConfig{}, err
	}
	return cfg, nil
}

// WriteYAML saves the configuration to path.
func (c RacingConfig) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration can drive a simulation.
func (c RacingConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Playfield.Width > 0 && c.Playfield.Height > 0, "playfield size must be positive, got %dx%d", c.Playfield.Width, c.Playfield.Height)
	check(c.Playfield.UpperMargin < c.Playfield.Boundary, "playfield.upper_margin (%v) must be above boundary (%v)", c.Playfield.UpperMargin, c.Playfield.Boundary)
	check(c.Car.Width > 0 && c.Car.Height > 0, "car size must be positive, got %dx%d", c.Car.Width, c.Car.Height)
	check(c.Car.Step > 0, "car.step must be positive, got %v", c.Car.Step)
	check(c.Walls.Width > 0 && c.Walls.Height > 0, "wall size must be positive, got %dx%d", c.Walls.Width, c.Walls.Height)
	check(c.Walls.Gap > 0, "walls.gap must be positive, got %v", c.Walls.Gap)
	check(c.Walls.Velocity > 0, "walls.velocity must be positive, got %v", c.Walls.Velocity)
	check(c.Walls.MaxGapY > c.Walls.MinGapY, "walls.max_gap_y (%d) must exceed min_gap_y (%d)", c.Walls.MaxGapY, c.Walls.MinGapY)
	check(c.Road.Width > 0, "road.width must be positive, got %v", c.Road.Width)
	check(c.Actions.UpThreshold >= c.Actions.DownThreshold, "actions.up_threshold (%v) must not be below down_threshold (%v)", c.Actions.UpThreshold, c.Actions.DownThreshold)
	check(c.Limits.MaxTicks >= 0 && c.Limits.MaxScore >= 0, "limits must not be negative")

	ev := c.Evolution
	check(ev.Population > 0, "evolution.population must be positive, got %d", ev.Population)
	check(ev.Generations > 0, "evolution.generations must be positive, got %d", ev.Generations)
	check(ev.Elitism >= 0 && ev.Elitism <= ev.Population, "evolution.elitism must be in [0, population], got %d", ev.Elitism)
	check(ev.TournamentSize > 0, "evolution.tournament_size must be positive, got %d", ev.TournamentSize)
	check(ev.MaxWeight > 0, "evolution.max_weight must be positive, got %v", ev.MaxWeight)
	for name, p := range map[string]float64{
		"crossover_prob":      ev.CrossoverProb,
		"weight_mut_prob":     ev.WeightMutProb,
		"weight_replace_prob": ev.WeightReplaceProb,
		"add_node_prob":       ev.AddNodeProb,
	} {
		check(p >= 0 && p <= 1, "evolution.%s must be in [0, 1], got %v", name, p)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".racer", "configs", filename)
}
