package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"shotframe/model"
)

const FileName = "shotframe.config"

type Config struct {
	DataDir         string               `json:"data_dir"`
	ListenAddr      string               `json:"listen_addr"`
	AssetsDir       string               `json:"assets_dir,omitempty"` // empty: bundled assets
	ThemeFiles      []string             `json:"theme_files,omitempty"`
	DefaultTheme    string               `json:"default_theme"`
	DefaultPlatform string               `json:"default_platform"`
	DefaultFormat   model.Format         `json:"default_format"`
	Display         int                  `json:"display"`
	Schedules       []model.Schedule     `json:"schedules,omitempty"`
	LastRun         map[string]time.Time `json:"last_run,omitempty"`
}

func Default() Config {
	return Config{
		DataDir:         ".",
		ListenAddr:      ":8080",
		DefaultTheme:    "default",
		DefaultPlatform: "any",
		DefaultFormat:   model.FormatPNG,
		Schedules:       nil,
		LastRun:         make(map[string]time.Time),
	}
}

// Load reads the config from dataDir. A missing file yields the defaults.
func Load(dataDir string) (Config, error) {
	cfgPath := filepath.Join(dataDir, FileName)

	f, err := os.Open(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.DataDir = dataDir
			return cfg, nil
		}
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = def.DefaultTheme
	}
	if cfg.DefaultPlatform == "" {
		cfg.DefaultPlatform = def.DefaultPlatform
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = def.DefaultFormat
	}
	if cfg.LastRun == nil {
		cfg.LastRun = make(map[string]time.Time)
	}

	return cfg, nil
}

// Save writes cfg into cfg.DataDir through a temporary file.
func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, FileName)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
