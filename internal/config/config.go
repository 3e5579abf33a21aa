package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	InputPath  string `mapstructure:"input_path" yaml:"input_path"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	FiguresDir string `mapstructure:"figures_dir" yaml:"figures_dir" validate:"required"`
	ReportName string `mapstructure:"report_name" yaml:"report_name" validate:"required"`

	// Input parsing
	// "," and "|" must be hex-escaped inside validate tags.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,oneof=0x2C ; tab 0x7C"`
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name"`
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows" validate:"gte=0"`
	// Columns maps logical column names (gender, age, ...) to dataset header names.
	Columns map[string]string `mapstructure:"columns" yaml:"columns"`

	// Analysis
	TopN    int `mapstructure:"top_n" yaml:"top_n" validate:"gte=1,lte=1000"`
	Workers int `mapstructure:"workers" yaml:"workers" validate:"gte=1,lte=64"`

	// Output
	Charts       bool   `mapstructure:"charts" yaml:"charts"`
	ExportFormat string `mapstructure:"export_format" yaml:"export_format" validate:"omitempty,oneof=json yaml"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// DefaultColumns mirrors the header names of the public shopping trends dataset.
func DefaultColumns() map[string]string {
	return map[string]string{
		"gender":             "Gender",
		"age":                "Age",
		"category":           "Category",
		"item":               "Item Purchased",
		"size":               "Size",
		"purchase_amount":    "Purchase Amount (USD)",
		"review_rating":      "Review Rating",
		"season":             "Season",
		"shipping_type":      "Shipping Type",
		"location":           "Location",
		"purchase_frequency": "Frequency of Purchases",
	}
}

var validate = validator.New()

// Validate checks field constraints declared in struct tags.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.shoptrends/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SHOPTRENDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input_path", filepath.Join("data", "shopping_trends.csv"))
	v.SetDefault("output_dir", "output")
	v.SetDefault("figures_dir", "figures")
	v.SetDefault("report_name", "analysis_report.txt")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("max_rows", 0)
	for k, h := range DefaultColumns() {
		v.SetDefault("columns."+k, h)
	}
	v.SetDefault("top_n", 10)
	v.SetDefault("workers", 4)
	v.SetDefault("charts", true)
	v.SetDefault("export_format", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".shoptrends"), nil
}
