// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz   QuizConfig   `toml:"quiz"`
	Remote RemoteConfig `toml:"remote"`
}

// QuizConfig maps quiz-related settings.
type QuizConfig struct {
	RangeStart    *int     `toml:"range-start"`
	RangeEnd      *int     `toml:"range-end"`
	Count         *int     `toml:"count"`
	ChoiceRatio   *float64 `toml:"choice-ratio"`
	Interleave    *float64 `toml:"interleave"`
	Direction     *string  `toml:"direction"`
	RevealDelayMs *int     `toml:"reveal-delay-ms"`
	WordList      *string  `toml:"wordlist"`
}

// RemoteConfig maps record-service settings.
type RemoteConfig struct {
	URL      *string `toml:"url"`
	TimeoutS *int    `toml:"timeout"`
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
