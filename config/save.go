package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bangunx/ghup/fsutil"
)

// ErrUnknownKey is returned when saving a key outside the valid key list.
var ErrUnknownKey = errors.New("unknown config key")

// Permissions for written config files. The repository file is meant to be
// committed and shared.
const (
	GlobalFilePerm os.FileMode = 0o600
	LocalFilePerm  os.FileMode = 0o644
)

// SaveConfig provides methods to save configuration values.
type SaveConfig struct {
	// GlobalConfigDir is the directory under the user config home.
	GlobalConfigDir string

	// GlobalConfigFile is the filename. Defaults to "config.yaml".
	GlobalConfigFile string

	// GlobalPath overrides the computed global config path when set.
	GlobalPath string

	// LocalConfigName is the filename for local config in git root.
	LocalConfigName string

	// ValidGlobalKeys lists keys that can be set in global config.
	ValidGlobalKeys []string

	// ValidLocalKeys lists keys that can be set in local config.
	ValidLocalKeys []string
}

func (c SaveConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

func (c SaveConfig) globalPath() (string, error) {
	if c.GlobalPath != "" {
		return c.GlobalPath, nil
	}
	if c.GlobalConfigDir == "" {
		return "", fmt.Errorf("global config directory not configured")
	}
	home := configHome()
	if home == "" {
		return "", fmt.Errorf("cannot determine config home")
	}
	return filepath.Join(home, c.GlobalConfigDir, c.globalConfigFile()), nil
}

// SaveGlobal saves a key-value pair to the global config file.
func (c SaveConfig) SaveGlobal(key, value string) error {
	if err := checkKey(c.ValidGlobalKeys, "global", key); err != nil {
		return err
	}
	path, err := c.globalPath()
	if err != nil {
		return err
	}
	return update(path, GlobalFilePerm, func(m map[string]interface{}) {
		m[key] = parseValue(value)
	})
}

// SaveLocal saves a key-value pair to the local config file in the git root.
func (c SaveConfig) SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	if err := checkKey(c.ValidLocalKeys, "local", key); err != nil {
		return err
	}
	path := filepath.Join(gitRoot, c.LocalConfigName)
	return update(path, LocalFilePerm, func(m map[string]interface{}) {
		m[key] = parseValue(value)
	})
}

// DeleteGlobalKey removes a key from the global config.
// A missing file is not an error.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	path, err := c.globalPath()
	if err != nil {
		return err
	}
	return remove(path, GlobalFilePerm, key)
}

// DeleteLocalKey removes a key from the local config in gitRoot.
// A missing file is not an error.
func (c SaveConfig) DeleteLocalKey(gitRoot, key string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	return remove(filepath.Join(gitRoot, c.LocalConfigName), LocalFilePerm, key)
}

func checkKey(valid []string, scope, key string) error {
	if len(valid) > 0 && !slices.Contains(valid, key) {
		return fmt.Errorf("%w %q for %s config (valid keys: %s)",
			ErrUnknownKey, key, scope, strings.Join(valid, ", "))
	}
	return nil
}

// update reads path, applies fn and writes the result atomically.
// A file that does not parse is reported rather than overwritten.
func update(path string, perm os.FileMode, fn func(map[string]interface{})) error {
	existing, err := readMap(path)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = make(map[string]interface{})
	}
	fn(existing)
	return writeMap(path, perm, existing)
}

func remove(path string, perm os.FileMode, key string) error {
	existing, err := readMap(path)
	if err != nil {
		return err
	}
	if _, ok := existing[key]; !ok {
		return nil
	}
	delete(existing, key)
	return writeMap(path, perm, existing)
}

func readMap(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func writeMap(path string, perm os.FileMode, m map[string]interface{}) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
