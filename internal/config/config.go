// Copyright 2025 Grid Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir string `yaml:"dataDir"              split_words:"true"`
	// AdminPrincipal is the identity allowed admin operations (valid
	// meter registration, minting, reading validation)
	AdminPrincipal string `yaml:"adminPrincipal"       split_words:"true"`
	BindAddr       string `yaml:"bindAddr"             split_words:"true"`
	ApiPort        uint   `yaml:"apiPort"              split_words:"true"`
	MetricsPort    uint   `yaml:"metricsPort"          split_words:"true"`
	// BlockTime is the interval between automatic block advances as a
	// duration string. Empty or "0s" disables the internal block clock.
	BlockTime string `yaml:"blockTime"            split_words:"true"`
	// ReadingRecencyWindow is the max age (in blocks) of a validated
	// meter reading that can back an energy supply. Zero accepts any.
	ReadingRecencyWindow uint64 `yaml:"readingRecencyWindow" split_words:"true"`
	Debug                bool   `yaml:"debug"`
}

var globalConfig = &Config{
	DataDir:              ".joule",
	AdminPrincipal:       "deployer",
	BindAddr:             "0.0.0.0",
	ApiPort:              8080,
	MetricsPort:          12798,
	BlockTime:            "10s",
	ReadingRecencyWindow: 144,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.joule/joule.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".joule", "joule.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/joule/joule.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/joule/joule.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("joule", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
