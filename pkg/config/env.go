// SPDX-License-Identifier: GPL-2.0-or-later

// Package config tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flvkit/pkg/log"

	"gopkg.in/yaml.v2"
)

// Env stores tool configuration.
type Env struct {
	LogLevel  string `yaml:"logLevel"`
	LogDB     string `yaml:"logDB"`
	Overwrite bool   `yaml:"overwrite"`

	ConfigDir string `yaml:"-"`
}

// DefaultLogLevel used when logLevel is unset.
const DefaultLogLevel = "info"

// ErrOutputExists output file exists and overwrite is disabled.
var ErrOutputExists = errors.New("output file exists")

// NewEnv return new configuration from env.yaml contents.
// A relative logDB path is relative to the directory of envPath.
func NewEnv(envPath string, envYAML []byte) (*Env, error) {
	var env Env

	if err := yaml.UnmarshalStrict(envYAML, &env); err != nil {
		return nil, fmt.Errorf("unmarshal env.yaml: %w", err)
	}

	if envPath != "" {
		env.ConfigDir = filepath.Dir(envPath)
	}

	if env.LogLevel == "" {
		env.LogLevel = DefaultLogLevel
	}
	if _, err := log.ParseLevel(env.LogLevel); err != nil {
		return nil, fmt.Errorf("logLevel: %w", err)
	}

	if env.LogDB != "" && !filepath.IsAbs(env.LogDB) {
		env.LogDB = filepath.Join(env.ConfigDir, env.LogDB)
	}

	return &env, nil
}

// ReadEnv reads and parses the env file at path.
// An empty path returns the default configuration.
func ReadEnv(path string) (*Env, error) {
	if path == "" {
		return NewEnv("", nil)
	}

	envPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of env.yaml: %w", err)
	}

	envYAML, err := os.ReadFile(envPath)
	if err != nil {
		return nil, fmt.Errorf("could not read env.yaml: %w", err)
	}
	return NewEnv(envPath, envYAML)
}

// Level returns the parsed log level.
func (env Env) Level() log.Level {
	level, err := log.ParseLevel(env.LogLevel)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

// CheckOutput returns ErrOutputExists if path exists and overwrite is disabled.
func (env Env) CheckOutput(path string) error {
	if env.Overwrite {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%w: %v", ErrOutputExists, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
