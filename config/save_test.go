package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

func readYAML(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var saved map[string]interface{}
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return saved
}

func isolateConfigHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func TestSaveConfig_SaveGlobal(t *testing.T) {
	tmpHome := isolateConfigHome(t)

	cfg := SaveConfig{
		GlobalConfigDir: AppName,
		ValidGlobalKeys: GlobalKeys,
	}
	configPath := filepath.Join(tmpHome, ".config", "ghup", "config.yaml")

	t.Run("creates config file", func(t *testing.T) {
		if err := cfg.SaveGlobal(KeySSHConfig, "/tmp/ssh_config"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved[KeySSHConfig] != "/tmp/ssh_config" {
			t.Errorf("ssh_config = %v, want /tmp/ssh_config", saved[KeySSHConfig])
		}

		if runtime.GOOS != "windows" {
			info, err := os.Stat(configPath)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm != GlobalFilePerm {
				t.Errorf("perm = %o, want %o", perm, GlobalFilePerm)
			}
		}
	})

	t.Run("updates existing config", func(t *testing.T) {
		if err := cfg.SaveGlobal(KeyNoColor, "true"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		saved := readYAML(t, configPath)
		if saved[KeySSHConfig] != "/tmp/ssh_config" {
			t.Errorf("ssh_config = %v, want /tmp/ssh_config", saved[KeySSHConfig])
		}
		if saved[KeyNoColor] != true {
			t.Errorf("no_color = %v, want true", saved[KeyNoColor])
		}
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		err := cfg.SaveGlobal("invalid_key", "value")
		if !errors.Is(err, ErrUnknownKey) {
			t.Errorf("error = %v, want ErrUnknownKey", err)
		}
	})

	t.Run("rejects repository-only key", func(t *testing.T) {
		err := cfg.SaveGlobal(KeyProfile, "work")
		if !errors.Is(err, ErrUnknownKey) {
			t.Errorf("error = %v, want ErrUnknownKey", err)
		}
	})

	t.Run("no global config dir", func(t *testing.T) {
		emptyCfg := SaveConfig{}
		if err := emptyCfg.SaveGlobal("key", "value"); err == nil {
			t.Error("expected error when GlobalConfigDir not set")
		}
	})

	t.Run("explicit path", func(t *testing.T) {
		custom := filepath.Join(t.TempDir(), "nested", "custom.yaml")
		pathCfg := SaveConfig{GlobalPath: custom}
		if err := pathCfg.SaveGlobal("any_key", "any_value"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}
		if saved := readYAML(t, custom); saved["any_key"] != "any_value" {
			t.Errorf("any_key = %v", saved["any_key"])
		}
	})

	t.Run("custom config filename", func(t *testing.T) {
		customCfg := SaveConfig{
			GlobalConfigDir:  "customfile",
			GlobalConfigFile: "settings.yaml",
		}
		if err := customCfg.SaveGlobal("key", "value"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		path := filepath.Join(tmpHome, ".config", "customfile", "settings.yaml")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected settings.yaml to be created: %v", err)
		}
	})
}

func TestSaveConfig_SaveLocal(t *testing.T) {
	cfg := SaveConfig{
		LocalConfigName: LocalConfigName,
		ValidLocalKeys:  LocalKeys,
	}

	t.Run("creates local config", func(t *testing.T) {
		tmpDir := t.TempDir()
		if err := cfg.SaveLocal(tmpDir, KeyProfile, "work"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}

		saved := readYAML(t, filepath.Join(tmpDir, LocalConfigName))
		if saved[KeyProfile] != "work" {
			t.Errorf("profile = %v, want work", saved[KeyProfile])
		}
	})

	t.Run("replaces pin and keeps foreign keys", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, LocalConfigName), "profile: old\nnote: keep me\n")

		if err := cfg.SaveLocal(tmpDir, KeyProfile, "new"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}

		saved := readYAML(t, filepath.Join(tmpDir, LocalConfigName))
		if saved[KeyProfile] != "new" {
			t.Errorf("profile = %v, want new", saved[KeyProfile])
		}
		if saved["note"] != "keep me" {
			t.Errorf("note = %v, want preserved", saved["note"])
		}
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		err := cfg.SaveLocal(t.TempDir(), KeySSHConfig, "value")
		if !errors.Is(err, ErrUnknownKey) {
			t.Errorf("error = %v, want ErrUnknownKey", err)
		}
	})

	t.Run("empty git root", func(t *testing.T) {
		if err := cfg.SaveLocal("", KeyProfile, "value"); err == nil {
			t.Error("expected error when git root empty")
		}
	})

	t.Run("no local config name", func(t *testing.T) {
		emptyCfg := SaveConfig{}
		if err := emptyCfg.SaveLocal(t.TempDir(), "key", "value"); err == nil {
			t.Error("expected error when LocalConfigName not set")
		}
	})
}

func TestSaveConfig_DeleteKeys(t *testing.T) {
	tmpHome := isolateConfigHome(t)

	cfg := SaveConfig{
		GlobalConfigDir: "testdelete",
		LocalConfigName: LocalConfigName,
	}

	t.Run("deletes existing global key", func(t *testing.T) {
		if err := cfg.SaveGlobal("key1", "value1"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}
		if err := cfg.SaveGlobal("key2", "value2"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}

		if err := cfg.DeleteGlobalKey("key1"); err != nil {
			t.Fatalf("DeleteGlobalKey() error = %v", err)
		}

		saved := readYAML(t, filepath.Join(tmpHome, ".config", "testdelete", "config.yaml"))
		if _, exists := saved["key1"]; exists {
			t.Error("key1 should have been deleted")
		}
		if saved["key2"] != "value2" {
			t.Errorf("key2 = %v, want value2", saved["key2"])
		}
	})

	t.Run("deletes local pin", func(t *testing.T) {
		root := t.TempDir()
		if err := cfg.SaveLocal(root, KeyProfile, "work"); err != nil {
			t.Fatal(err)
		}
		if err := cfg.DeleteLocalKey(root, KeyProfile); err != nil {
			t.Fatalf("DeleteLocalKey() error = %v", err)
		}
		if saved := readYAML(t, filepath.Join(root, LocalConfigName)); len(saved) != 0 {
			t.Errorf("saved = %v, want empty", saved)
		}
	})

	t.Run("no error when file doesn't exist", func(t *testing.T) {
		newCfg := SaveConfig{GlobalConfigDir: "nonexistent"}
		if err := newCfg.DeleteGlobalKey("any_key"); err != nil {
			t.Errorf("DeleteGlobalKey() error = %v, want nil", err)
		}
		if _, err := os.Stat(filepath.Join(tmpHome, ".config", "nonexistent")); !os.IsNotExist(err) {
			t.Error("delete of a missing file must not create it")
		}
	})

	t.Run("no global config dir", func(t *testing.T) {
		emptyCfg := SaveConfig{}
		if err := emptyCfg.DeleteGlobalKey("key"); err == nil {
			t.Error("expected error when GlobalConfigDir not set")
		}
	})
}

func TestSaveConfig_globalConfigFile(t *testing.T) {
	t.Run("default filename", func(t *testing.T) {
		cfg := SaveConfig{}
		if got := cfg.globalConfigFile(); got != "config.yaml" {
			t.Errorf("globalConfigFile() = %q, want %q", got, "config.yaml")
		}
	})

	t.Run("custom filename", func(t *testing.T) {
		cfg := SaveConfig{GlobalConfigFile: "custom.yaml"}
		if got := cfg.globalConfigFile(); got != "custom.yaml" {
			t.Errorf("globalConfigFile() = %q, want %q", got, "custom.yaml")
		}
	})
}

func TestSaveConfig_MalformedYAML(t *testing.T) {
	const garbage = "not: valid: yaml: [[["

	t.Run("global config left untouched", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		writeFile(t, path, garbage)

		cfg := SaveConfig{GlobalPath: path}
		if err := cfg.SaveGlobal("key", "value"); err == nil {
			t.Fatal("expected parse error")
		}
		if err := cfg.DeleteGlobalKey("key"); err == nil {
			t.Fatal("expected parse error on delete")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != garbage {
			t.Errorf("file was rewritten: %q", data)
		}
	})

	t.Run("local config left untouched", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, LocalConfigName), garbage)

		cfg := SaveConfig{LocalConfigName: LocalConfigName}
		if err := cfg.SaveLocal(root, KeyProfile, "work"); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"FALSE", false},
		{"hello", "hello"},
		{"10s", "10s"},
		{"123", "123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseValue(tt.input); got != tt.want {
				t.Errorf("parseValue(%q) = %v (%T), want %v (%T)",
					tt.input, got, got, tt.want, tt.want)
			}
		})
	}
}
