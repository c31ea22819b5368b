package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/logcollector/internal/source"
	"github.com/five82/logcollector/internal/tags"
)

// Config captures everything the collector reads from its config file.
type Config struct {
	CaptureCommand string
	ClearCommand   string
	ClearEvery     int
	SinkPath       string // empty means SinkDir plus a default file name
	SinkDir        string
	CleanCache     bool
	Filter         []string
	Colors         []string
	Colorize       bool
	Background     string
	APIBind        string
	Categories     tags.Catalog
}

const (
	defaultConfigPath = "~/.config/logcollector/config.toml"
	defaultSinkDir    = "~/.local/share/logcollector"
	defaultAPIBind    = "127.0.0.1:7489"
	defaultCapture    = "logcat -v time"
	defaultClear      = "logcat -c"
	defaultBackground = "#FFFFFFFF"

	plainSinkName   = "logcat.txt"
	coloredSinkName = "logcat.html"
)

// fileConfig is the on-disk shape shared by the TOML and YAML decoders.
type fileConfig struct {
	CaptureCommand string          `toml:"capture_command" yaml:"capture_command"`
	ClearCommand   *string         `toml:"clear_command" yaml:"clear_command"`
	ClearEvery     *int            `toml:"clear_every" yaml:"clear_every"`
	SinkPath       string          `toml:"sink_path" yaml:"sink_path"`
	SinkDir        string          `toml:"sink_dir" yaml:"sink_dir"`
	CleanCache     bool            `toml:"clean_cache" yaml:"clean_cache"`
	Filter         []string        `toml:"filter" yaml:"filter"`
	Colors         []string        `toml:"colors" yaml:"colors"`
	Colorize       bool            `toml:"colorize" yaml:"colorize"`
	Background     string          `toml:"background" yaml:"background"`
	APIBind        string          `toml:"api_bind" yaml:"api_bind"`
	Categories     []tags.Category `toml:"categories" yaml:"categories"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		CaptureCommand: defaultCapture,
		ClearCommand:   defaultClear,
		ClearEvery:     1,
		SinkDir:        mustExpand(defaultSinkDir),
		Background:     defaultBackground,
		APIBind:        defaultAPIBind,
		Categories:     append(tags.Catalog(nil), tags.DefaultCatalog...),
	}
}

// Load locates and parses the collector config, falling back to defaults when missing.
// Files ending in .yaml or .yml are read as YAML, anything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.CaptureCommand); v != "" {
		cfg.CaptureCommand = v
	}
	if raw.ClearCommand != nil {
		cfg.ClearCommand = strings.TrimSpace(*raw.ClearCommand)
	}
	if raw.ClearEvery != nil {
		cfg.ClearEvery = *raw.ClearEvery
	}
	if v := strings.TrimSpace(raw.SinkPath); v != "" {
		cfg.SinkPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.SinkDir); v != "" {
		cfg.SinkDir = mustExpand(v)
	}
	cfg.CleanCache = raw.CleanCache
	cfg.Filter = trimAll(raw.Filter)
	cfg.Colors = raw.Colors
	cfg.Colorize = raw.Colorize
	if v := strings.TrimSpace(raw.Background); v != "" {
		cfg.Background = v
	}
	if v := strings.TrimSpace(raw.APIBind); v != "" {
		cfg.APIBind = v
	}
	if len(raw.Categories) > 0 {
		cfg.Categories = make(tags.Catalog, 0, len(raw.Categories))
		for _, c := range raw.Categories {
			name := strings.TrimSpace(c.Name)
			tag := c.Tag
			if tag == "" {
				tag = name
			}
			cfg.Categories = append(cfg.Categories, tags.Category{Name: name, Tag: tag})
		}
		if err := cfg.Categories.Validate(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	return cfg, nil
}

// Command builds the source invocation from the configured strings.
func (c Config) Command() (source.Command, error) {
	return source.ParseCommand(c.CaptureCommand, c.ClearCommand, c.ClearEvery)
}

// Colored reports whether the sink is written as colored markup: either
// colors were listed or colorize is set (every category then takes the
// fallback color).
func (c Config) Colored() bool {
	return c.Colorize || len(c.Colors) > 0
}

// ResolveSinkPath returns the configured sink path, or a file in SinkDir
// named after the output mode.
func (c Config) ResolveSinkPath(colored bool) (string, error) {
	if strings.TrimSpace(c.SinkPath) != "" {
		return expandPath(c.SinkPath)
	}
	dir := c.SinkDir
	if strings.TrimSpace(dir) == "" {
		dir = defaultSinkDir
	}
	dir, err := expandPath(dir)
	if err != nil {
		return "", err
	}
	if colored {
		return filepath.Join(dir, coloredSinkName), nil
	}
	return filepath.Join(dir, plainSinkName), nil
}

// PurgeSinks removes the sink files left by earlier runs: both the plain
// and the colored file, or the configured sink_path. Missing files are not
// an error.
func (c Config) PurgeSinks() error {
	seen := map[string]bool{}
	for _, colored := range []bool{false, true} {
		path, err := c.ResolveSinkPath(colored)
		if err != nil {
			return err
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("purge sink %s: %w", path, err)
		}
	}
	return nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
