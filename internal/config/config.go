package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const appName = "shadowscan"

// LocalNames are the repo-local config file names, in lookup order.
var LocalNames = []string{".shadowscan.yml", ".shadowscan.yaml", "shadowscan.yml", "shadowscan.yaml"}

// FileConfig is the on-disk YAML configuration shape for shadowscan. Nil
// fields are unset and fall through to the next source.
type FileConfig struct {
	Include         *string  `yaml:"include,omitempty"`
	Exclude         *string  `yaml:"exclude,omitempty"`
	MaxBytes        *int64   `yaml:"max_bytes,omitempty"`
	Threads         *int     `yaml:"threads,omitempty"`
	MinScore        *float64 `yaml:"min_score,omitempty"`
	Enable          *string  `yaml:"enable,omitempty"`
	Disable         *string  `yaml:"disable,omitempty"`
	NoColor         *bool    `yaml:"no_color,omitempty"`
	DefaultExcludes *bool    `yaml:"default_excludes,omitempty"`
	FailOn          *string  `yaml:"fail_on,omitempty"`

	// Engine options
	MaxInputBytes   *int  `yaml:"max_input_bytes,omitempty"`
	Truncate        *bool `yaml:"truncate,omitempty"`
	ContextWindow   *int  `yaml:"context_window,omitempty"`
	ProximityWindow *int  `yaml:"proximity_window,omitempty"`
	Extended        *bool `yaml:"extended,omitempty"`
	StrictCards     *bool `yaml:"strict_cards,omitempty"`

	// Custom keywords and persistence
	Keywords     []string `yaml:"keywords,omitempty"`
	KeywordsFile *string  `yaml:"keywords_file,omitempty"`
	Store        *string  `yaml:"store,omitempty"`
	Tenant       *string  `yaml:"tenant,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .shadowscan.yml/.yaml and shadowscan.yml/.yaml.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	dir := GlobalDir()
	if dir == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(dir, "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// GlobalDir returns $XDG_CONFIG_HOME/shadowscan, falling back to
// ~/.config/shadowscan. It is empty when no home directory is known.
func GlobalDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/shadowscan, falling back to
// ~/.local/share/shadowscan. Report stores live here by default.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, appName)
}

// DefaultStorePath is the bbolt database used when no store is configured.
func DefaultStorePath() string {
	dir := DataDir()
	if dir == "" {
		return appName + ".db"
	}
	return filepath.Join(dir, appName+".db")
}
