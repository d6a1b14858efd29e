package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Intervals     IntervalsConfig  `toml:"intervals"`
	Nightscout    NightscoutConfig `toml:"nightscout"`
	AI            AIConfig         `toml:"ai"`
	Athlete       AthleteConfig    `toml:"athlete"`
	Thresholds    ThresholdsConfig `toml:"thresholds"`
	Adapt         AdaptConfig      `toml:"adapt"`
	Notifications NotifyConfig     `toml:"notifications"`
	Watch         WatchConfig      `toml:"watch"`
}

type IntervalsConfig struct {
	APIKey    string `toml:"api_key"`
	AthleteID string `toml:"athlete_id"`
	BaseURL   string `toml:"base_url"`
}

type NightscoutConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type AIConfig struct {
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

type AthleteConfig struct {
	LTHR      float64 `toml:"lthr"`
	MaxHR     float64 `toml:"max_hr"`
	RestingHR float64 `toml:"resting_hr"`
}

// ThresholdsConfig exposes the classification and safety policy constants.
// The defaults match the documented behavior; they are revisited as the
// observation volume grows rather than hardcoded in the engine.
type ThresholdsConfig struct {
	SlopeCutoff       float64 `toml:"slope_cutoff"`
	Hypo              float64 `toml:"hypo"`
	BGWaitBelow       float64 `toml:"bg_wait_below"`
	BGCautionBelow    float64 `toml:"bg_caution_below"`
	BGCautionAbove    float64 `toml:"bg_caution_above"`
	SlopeWaitBelow    float64 `toml:"slope_wait_below"`
	MediumConfidence  int     `toml:"medium_confidence_min"`
	HighConfidence    int     `toml:"high_confidence_min"`
	MinFuelGroups     int     `toml:"min_fuel_groups"`
	MinGroupSamples   int     `toml:"min_group_samples"`
	TSBSwapThreshold  float64 `toml:"tsb_swap_threshold"`
	RampSwapThreshold float64 `toml:"ramp_swap_threshold"`
}

type AdaptConfig struct {
	MaxEvents          int `toml:"max_events"`
	NoteTimeoutSeconds int `toml:"note_timeout_seconds"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type WatchConfig struct {
	IntervalMinutes int `toml:"interval_minutes"`
}

func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Model: "gpt-4o-mini",
		},
		Athlete: AthleteConfig{
			LTHR:      170,
			MaxHR:     190,
			RestingHR: 50,
		},
		Thresholds: ThresholdsConfig{
			SlopeCutoff:       0.3,
			Hypo:              3.9,
			BGWaitBelow:       4.5,
			BGCautionBelow:    5.5,
			BGCautionAbove:    14.0,
			SlopeWaitBelow:    -0.5,
			MediumConfidence:  5,
			HighConfidence:    10,
			MinFuelGroups:     2,
			MinGroupSamples:   3,
			TSBSwapThreshold:  -20,
			RampSwapThreshold: 8,
		},
		Adapt: AdaptConfig{
			MaxEvents:          4,
			NoteTimeoutSeconds: 30,
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			IntervalMinutes: 5,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "springa"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INTERVALS_API_KEY"); v != "" {
		cfg.Intervals.APIKey = v
	}
	if v := os.Getenv("INTERVALS_ATHLETE_ID"); v != "" {
		cfg.Intervals.AthleteID = v
	}
	if v := os.Getenv("NIGHTSCOUT_URL"); v != "" {
		cfg.Nightscout.URL = v
	}
	if v := os.Getenv("NIGHTSCOUT_TOKEN"); v != "" {
		cfg.Nightscout.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Save writes the config back to disk, creating the directory if needed.
// Used by the config command after interactive edits.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
