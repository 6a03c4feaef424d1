package config

import (
	"fmt"
	"math"
)

// Difficulty is a named preset that rescales wall gap and scroll speed.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// difficultyScale holds the multipliers applied by a preset.
type difficultyScale struct {
	gap   float64
	speed float64
}

var difficultyScales = map[Difficulty]difficultyScale{
	DifficultyEasy:   {gap: 1.3, speed: 0.7},
	DifficultyNormal: {gap: 1.0, speed: 1.0},
	DifficultyHard:   {gap: 0.8, speed: 1.3},
}

// minGap keeps hard presets passable for the default car height.
const minGap = 80

// ParseDifficulty converts a CLI value to a Difficulty. Empty means normal.
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return DifficultyNormal, nil
	}
	d := Difficulty(s)
	if _, ok := difficultyScales[d]; !ok {
		return "", fmt.Errorf("%w: unknown difficulty %q (want easy, normal or hard)", ErrInvalidConfig, s)
	}
	return d, nil
}

// ApplyDifficulty rescales the wall gap, wall velocity and road velocity.
// Normal leaves the config untouched.
func ApplyDifficulty(cfg *RacingConfig, d Difficulty) {
	scale, ok := difficultyScales[d]
	if !ok || d == DifficultyNormal {
		return
	}
	cfg.Walls.Gap = clampF(math.Round(cfg.Walls.Gap*scale.gap), minGap, float64(cfg.Playfield.Height))
	cfg.Walls.Velocity = math.Max(1, math.Round(cfg.Walls.Velocity*scale.speed))
	cfg.Road.Velocity = math.Max(1, math.Round(cfg.Road.Velocity*scale.speed))
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
