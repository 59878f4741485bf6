package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/imgajeed76/tracktable/internal/pivot"
	"github.com/imgajeed76/tracktable/internal/util"
)

// Config represents the user's tracktable settings stored in the config
// directory. Every field has a default, so a missing file is not an error.
type Config struct {
	Table   TableConfig   `toml:"table"`
	Display DisplayConfig `toml:"display"`
	Schema  SchemaConfig  `toml:"schema"`
}

// TableConfig contains paging defaults
type TableConfig struct {
	PageSize  int   `toml:"page_size" config:"table.page_size" default:"10" min:"1" max:"1000" desc:"Rows per page when a table opens"`
	PageSizes []int `toml:"page_sizes"`
}

// DisplayConfig contains rendering settings for the interactive viewer
type DisplayConfig struct {
	ColWidth   int  `toml:"col_width" config:"display.col_width" default:"20" min:"3" max:"200" desc:"Width of a detail column"`
	GroupWidth int  `toml:"group_width" config:"display.group_width" default:"22" min:"3" max:"200" desc:"Width of the grouping column"`
	Mouse      bool `toml:"mouse" config:"display.mouse" default:"true" desc:"Enable mouse sorting, dragging and dropdown clicks"`
}

// SchemaConfig describes the dataset columns
type SchemaConfig struct {
	PrimaryKey   string         `toml:"primary_key" config:"schema.primary_key" default:"name" desc:"Field rows are grouped by"`
	PrimaryLabel string         `toml:"primary_label" config:"schema.primary_label" default:"Employee Name" desc:"Header of the grouping column"`
	Secondary    string         `toml:"secondary" config:"schema.secondary" default:"role" desc:"Field shown once under each group key"`
	Columns      []ColumnConfig `toml:"columns"`
}

// ColumnConfig is one detail column. An empty label is derived from the key.
type ColumnConfig struct {
	Key   string `toml:"key"`
	Label string `toml:"label"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	s := pivot.DefaultSchema()
	cols := make([]ColumnConfig, len(s.Details))
	for i, c := range s.Details {
		cols[i] = ColumnConfig{Key: c.Key, Label: c.Label}
	}
	return &Config{
		Table: TableConfig{
			PageSize:  pivot.DefaultPageSize,
			PageSizes: slices.Clone(pivot.DefaultPageSizes),
		},
		Display: DisplayConfig{
			ColWidth:   20,
			GroupWidth: 22,
			Mouse:      true,
		},
		Schema: SchemaConfig{
			PrimaryKey:   s.Primary.Key,
			PrimaryLabel: s.Primary.Label,
			Secondary:    s.Secondary,
			Columns:      cols,
		},
	}
}

// Path returns the path to the config file.
// TRACKTABLE_CONFIG wins; otherwise XDG Base Directory on Linux and
// platform conventions elsewhere.
func Path() string {
	if p := os.Getenv("TRACKTABLE_CONFIG"); p != "" {
		return p
	}

	var configDir string
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", "tracktable")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "tracktable")
	default: // Linux and others - follow XDG
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "tracktable")
		} else {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config", "tracktable")
		}
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. An empty path means Path().
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := DefaultConfig()
	// Slices decode by replacement, so start them empty and refill below.
	cfg.Table.PageSizes = nil
	cfg.Schema.Columns = nil

	md, err := toml.DecodeFile(path, cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, util.ConfigLoadError(path, err)
	}
	// A custom key without a label gets a derived label, not the default one.
	if md.IsDefined("schema", "primary_key") && !md.IsDefined("schema", "primary_label") {
		cfg.Schema.PrimaryLabel = ""
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Table.PageSize <= 0 {
		c.Table.PageSize = defaults.Table.PageSize
	}
	if len(c.Table.PageSizes) == 0 {
		c.Table.PageSizes = defaults.Table.PageSizes
	}
	if c.Display.ColWidth == 0 {
		c.Display.ColWidth = defaults.Display.ColWidth
	}
	if c.Display.GroupWidth == 0 {
		c.Display.GroupWidth = defaults.Display.GroupWidth
	}
	if c.Schema.PrimaryKey == "" {
		c.Schema.PrimaryKey = defaults.Schema.PrimaryKey
		c.Schema.PrimaryLabel = defaults.Schema.PrimaryLabel
	}
	if len(c.Schema.Columns) == 0 {
		c.Schema.Columns = defaults.Schema.Columns
	}
	// NOTE: Secondary is not defaulted because "" is valid (no secondary line).
	// Mouse is a bool and keeps whatever the file says.
}

// Save writes the config file to path (Path() when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// PivotSchema converts the schema section into the pipeline's schema.
func (c *Config) PivotSchema() pivot.Schema {
	label := c.Schema.PrimaryLabel
	if label == "" {
		label = util.StartCase(c.Schema.PrimaryKey)
	}
	s := pivot.Schema{
		Primary:   pivot.Column{Key: c.Schema.PrimaryKey, Label: label},
		Secondary: c.Schema.Secondary,
	}
	seen := map[string]bool{c.Schema.PrimaryKey: true}
	for _, col := range c.Schema.Columns {
		if col.Key == "" || seen[col.Key] {
			continue
		}
		seen[col.Key] = true
		l := col.Label
		if l == "" {
			l = util.StartCase(col.Key)
		}
		s.Details = append(s.Details, pivot.Column{Key: col.Key, Label: l})
	}
	return s
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
