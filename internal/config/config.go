package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the static per-participant experiment parameters.
// The experiment never mutates it.
type Config struct {
	OutputLocation string `json:"output_location" yaml:"output_location"`
	OrderingDir    string `json:"ordering_dir" yaml:"ordering_dir"`
	ImageDir       string `json:"image_dir" yaml:"image_dir"`
	Store          string `json:"store" yaml:"store"` // "csv", "sqlite" or "both"
	DatabasePath   string `json:"database_path,omitempty" yaml:"database_path,omitempty"`

	PracticeRun bool `json:"practice_run" yaml:"practice_run"`

	NBackTask                bool     `json:"n_back_task" yaml:"n_back_task"`
	NBackBlockTotal          int      `json:"n_back_block_total" yaml:"n_back_block_total"`
	NBackStartDifficulty     int      `json:"n_back_start_difficulty" yaml:"n_back_start_difficulty"`
	NBackMaxDifficulty       int      `json:"n_back_max_difficulty" yaml:"n_back_max_difficulty"`
	NBackYoungMaxDifficulty  int      `json:"n_back_young_max_difficulty" yaml:"n_back_young_max_difficulty"`
	NBackCriticalAge         int      `json:"n_back_critical_age" yaml:"n_back_critical_age"` // 0 disables the age ceiling
	NBackMinErrorsToLower    int      `json:"n_back_min_errors_to_lower_difficulty" yaml:"n_back_min_errors_to_lower_difficulty"`
	NBackMaxErrorsToRaise    int      `json:"n_back_max_errors_to_raise_difficulty" yaml:"n_back_max_errors_to_raise_difficulty"`
	NBackDisplayTime         Duration `json:"n_back_display_time" yaml:"n_back_display_time"`
	NBackInterstimulus       Duration `json:"n_back_interstimulus_interval" yaml:"n_back_interstimulus_interval"`
	NBackPrimeLooping        bool     `json:"n_back_prime_looping" yaml:"n_back_prime_looping"`
	NBackResponseKey         string   `json:"n_back_response_key" yaml:"n_back_response_key"`
	NBackPracticeImageColumn int      `json:"n_back_practice_image_column" yaml:"n_back_practice_image_column"`
	NBackTaskImageColumn     int      `json:"n_back_task_image_column" yaml:"n_back_task_image_column"`

	PrimeTask             bool     `json:"prime_task" yaml:"prime_task"`
	PrimeImageDisplayTime Duration `json:"prime_image_display_time" yaml:"prime_image_display_time"`
	PrimeClarityLevels    int      `json:"prime_clarity_levels" yaml:"prime_clarity_levels"`
	PrimeAnswerKey        string   `json:"prime_answer_key" yaml:"prime_answer_key"`

	AbortKey    string `json:"abort_key" yaml:"abort_key"`
	ContinueKey string `json:"continue_key" yaml:"continue_key"`

	// Counterbalancing overrides; nil means derive from the participant ID.
	BlocksReversed *bool  `json:"blocks_reversed,omitempty" yaml:"blocks_reversed,omitempty"`
	PrimeListName  string `json:"prime_list_name,omitempty" yaml:"prime_list_name,omitempty"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		OutputLocation:           "data",
		OrderingDir:              "ordering",
		ImageDir:                 "images",
		Store:                    "csv",
		PracticeRun:              true,
		NBackTask:                true,
		NBackBlockTotal:          4,
		NBackStartDifficulty:     1,
		NBackMaxDifficulty:       3,
		NBackYoungMaxDifficulty:  2,
		NBackMinErrorsToLower:    5,
		NBackMaxErrorsToRaise:    3,
		NBackDisplayTime:         Duration{time.Second},
		NBackInterstimulus:       Duration{500 * time.Millisecond},
		NBackResponseKey:         "a",
		NBackPracticeImageColumn: 0,
		NBackTaskImageColumn:     2,
		PrimeTask:                true,
		PrimeImageDisplayTime:    Duration{1500 * time.Millisecond},
		PrimeClarityLevels:       8,
		PrimeAnswerKey:           "space",
		AbortKey:                 "escape",
		ContinueKey:              "space",
	}
}

// Validate checks the ranges the experiment relies on.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.NBackBlockTotal >= 1, "n_back_block_total must be >= 1, got %d", c.NBackBlockTotal)
	check(c.NBackMaxDifficulty >= 1 && c.NBackMaxDifficulty <= 3, "n_back_max_difficulty must be in [1, 3], got %d", c.NBackMaxDifficulty)
	check(c.NBackYoungMaxDifficulty >= 1 && c.NBackYoungMaxDifficulty <= 3, "n_back_young_max_difficulty must be in [1, 3], got %d", c.NBackYoungMaxDifficulty)
	check(c.NBackStartDifficulty >= 1, "n_back_start_difficulty must be >= 1, got %d", c.NBackStartDifficulty)
	check(c.NBackCriticalAge >= 0, "n_back_critical_age must be >= 0, got %d", c.NBackCriticalAge)
	check(c.NBackMinErrorsToLower >= 0, "n_back_min_errors_to_lower_difficulty must be >= 0")
	check(c.NBackMaxErrorsToRaise >= 0, "n_back_max_errors_to_raise_difficulty must be >= 0")
	check(c.NBackDisplayTime.Duration > 0, "n_back_display_time must be positive")
	check(c.NBackInterstimulus.Duration >= 0, "n_back_interstimulus_interval must not be negative")
	check(c.NBackPracticeImageColumn >= 0 && c.NBackTaskImageColumn >= 0, "image columns must not be negative")
	check(c.NBackResponseKey != "", "n_back_response_key must be set")
	check(c.PrimeImageDisplayTime.Duration > 0, "prime_image_display_time must be positive")
	check(c.PrimeClarityLevels >= 1, "prime_clarity_levels must be >= 1")
	check(c.AbortKey != "", "abort_key must be set")
	check(c.NBackResponseKey != c.AbortKey, "n_back_response_key and abort_key must differ")
	check(c.PrimeListName == "" || c.PrimeListName == "A" || c.PrimeListName == "B", "prime_list_name must be A or B, got %q", c.PrimeListName)
	switch c.Store {
	case "csv", "sqlite", "both":
	default:
		problems = append(problems, fmt.Sprintf("store must be csv, sqlite or both, got %q", c.Store))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ResolvedDatabasePath returns DatabasePath or its default under OutputLocation.
func (c *Config) ResolvedDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.OutputLocation, "lantern.db")
}

// LoadConfig reads .lantern/config.json from the specified directory.
// Missing keys keep their Default values.
func LoadConfig(dir string) (*Config, error) {
	return LoadConfigFile(filepath.Join(dir, ".lantern", "config.json"))
}

// LoadConfigFile reads a JSON or YAML config file, chosen by extension.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	lanternDir := filepath.Join(dir, ".lantern")
	if err := os.MkdirAll(lanternDir, 0755); err != nil {
		return fmt.Errorf("failed to create .lantern dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(lanternDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
