package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// filePerm keeps API keys readable by the owner only.
const filePerm = 0600

// WriteTemplate writes content as a new configuration file. An existing file
// is only replaced when force is set.
func WriteTemplate(path, content string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Update sets the given dotted keys (for example "models.openai.api_key") in
// the YAML file at path and writes it back. The file is created when missing.
func Update(path string, values map[string]interface{}) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range values {
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(path, filePerm); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	return nil
}

// SetAPIKey stores key for the named model.
func SetAPIKey(path, modelName, key string) error {
	if modelName == "" {
		return &FieldError{Field: "model", Reason: "is required"}
	}
	if key == "" {
		return &FieldError{Field: "api_key", Reason: "cannot be empty"}
	}
	return Update(path, map[string]interface{}{
		ModelKey(modelName, "api_key"): key,
	})
}

// ModelKey returns the dotted key of a field of the named model.
func ModelKey(modelName, field string) string {
	return "models." + modelName + "." + field
}
