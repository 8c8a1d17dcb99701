package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ledgerwallet/wallet-engine/pkg/amount"
	"github.com/ledgerwallet/wallet-engine/pkg/lifecycle"
)

// Config is the YAML configuration of the CLI.
type Config struct {
	NodeURL        string                     `yaml:"nodeURL"`
	JournalPath    string                     `yaml:"journalPath"`
	PassphraseEnv  string                     `yaml:"passphraseEnv"`
	Amount         amount.CodecConfig         `yaml:"amount"`
	Lifecycle      lifecycle.ControllerConfig `yaml:"lifecycle"`
}

func (c *Config) SetDefault() error {
	if c.NodeURL == "" {
		return fmt.Errorf("nodeURL is required")
	}
	if c.PassphraseEnv == "" {
		c.PassphraseEnv = "LWALLET_PASSPHRASE"
	}
	if c.JournalPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.JournalPath = filepath.Join(home, ".lwallet", "journal")
	}
	return nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := config.SetDefault(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) passphrase() (string, error) {
	passphrase := strings.TrimSpace(os.Getenv(c.PassphraseEnv))
	if passphrase == "" {
		return "", fmt.Errorf("set the signing passphrase in $%s", c.PassphraseEnv)
	}
	return passphrase, nil
}
