package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// fileConfig mirrors the subset of pathoram.Config a demo config file may
// override. Flags take precedence over whatever the file sets.
type fileConfig struct {
	NumItems   int    `json:"nb_items,omitempty"`
	PayloadLen int    `json:"payload_len,omitempty"`
	Cipher     string `json:"cipher,omitempty"`
}

// loadFileConfig reads a HuJSON (JSON-with-comments) config file. A
// missing path is not an error.
func loadFileConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return cfg, nil
}
