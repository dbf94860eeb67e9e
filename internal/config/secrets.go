package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSecrets reads a flat YAML key/value file and returns the value stored
// under field. A missing file yields an empty key so the client runs
// unauthenticated; a present file without the field is an error.
func LoadSecrets(path, field string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}

	var secrets map[string]string
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return "", fmt.Errorf("parse secrets yaml: %w", err)
	}

	key, ok := secrets[field]
	if !ok {
		return "", fmt.Errorf("secrets file %s has no %q field", path, field)
	}
	return key, nil
}

// ResolveAPIKey fills API.APIKey from the secrets file unless it is
// already set in the config or environment.
func (c *Config) ResolveAPIKey() error {
	if c.API.APIKey != "" || c.Secrets.Path == "" {
		return nil
	}
	key, err := LoadSecrets(c.Secrets.Path, c.Secrets.Field)
	if err != nil {
		return err
	}
	c.API.APIKey = key
	return nil
}
