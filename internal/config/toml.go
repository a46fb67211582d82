// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Speech   SpeechConfig   `toml:"speech"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lessons   []int   `toml:"lessons"`
	Order     *string `toml:"order"`
	Mode      *string `toml:"mode"`
	Speak     *bool   `toml:"speak"`
	Save      *bool   `toml:"save"`
	WeakCount *int    `toml:"weak-count"`
}

// SpeechConfig maps the external pronunciation command.
type SpeechConfig struct {
	Command *string  `toml:"command"`
	Args    []string `toml:"args"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
