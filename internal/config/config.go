package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	TopN           int      `mapstructure:"top_n" yaml:"top_n" validate:"gte=1,lte=50"`
	MetricDecimals int      `mapstructure:"metric_decimals" yaml:"metric_decimals" validate:"gte=-1,lte=6"`
	DefaultFormat  string   `mapstructure:"default_format" yaml:"default_format" validate:"oneof=json chartjs markdown"`
	DefaultCharts  []string `mapstructure:"default_charts" yaml:"default_charts" validate:"dive,oneof=nutrient nutrients water irrigation disease diseases all"`
	BatchJobs      int      `mapstructure:"batch_jobs" yaml:"batch_jobs" validate:"gte=1,lte=64"`
	// ReferenceFile overrides the built-in rice reference table.
	ReferenceFile     string `mapstructure:"reference_file" yaml:"reference_file,omitempty"`
	NormalizeDiseases bool   `mapstructure:"normalize_diseases" yaml:"normalize_diseases"`

	// Palette overrides, as #rrggbb. Alpha stays as in the default palette.
	Palette PaletteConfig `mapstructure:"palette" yaml:"palette,omitempty"`
}

// PaletteConfig holds optional hex overrides for chart colors.
type PaletteConfig struct {
	Deficient   string   `mapstructure:"deficient" yaml:"deficient,omitempty" validate:"omitempty,hexcolor"`
	Optimal     string   `mapstructure:"optimal" yaml:"optimal,omitempty" validate:"omitempty,hexcolor"`
	Excessive   string   `mapstructure:"excessive" yaml:"excessive,omitempty" validate:"omitempty,hexcolor"`
	LowLine     string   `mapstructure:"low_line" yaml:"low_line,omitempty" validate:"omitempty,hexcolor"`
	HighLine    string   `mapstructure:"high_line" yaml:"high_line,omitempty" validate:"omitempty,hexcolor"`
	Probability string   `mapstructure:"probability" yaml:"probability,omitempty" validate:"omitempty,hexcolor"`
	Water       []string `mapstructure:"water" yaml:"water,omitempty" validate:"omitempty,len=3,dive,hexcolor"`
}

// Dir returns ~/.soilviz.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".soilviz"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.soilviz/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
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
// Precedence: env > config file > defaults. An explicit cfgFile must exist.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SOILVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("top_n", chart.DefaultTopN)
	v.SetDefault("metric_decimals", chart.DefaultMetricDecimals)
	v.SetDefault("default_format", "json")
	v.SetDefault("default_charts", []string{"nutrient", "water", "disease"})
	v.SetDefault("batch_jobs", 4)
	v.SetDefault("reference_file", "")
	v.SetDefault("normalize_diseases", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Global {
	return &Global{
		TopN:           chart.DefaultTopN,
		MetricDecimals: chart.DefaultMetricDecimals,
		DefaultFormat:  "json",
		DefaultCharts:  []string{"nutrient", "water", "disease"},
		BatchJobs:      4,
	}
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Key, e.Reason)
}

var validate = validator.New()

// Validate checks value ranges and palette syntax.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	fe := verrs[0]
	return &ConfigError{Key: fe.Namespace(), Reason: fmt.Sprintf("failed %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value())}
}

// Targets turns DefaultCharts into render targets.
func (c *Global) Targets() chart.Targets {
	return ParseTargets(c.DefaultCharts)
}

// ParseTargets maps chart names to targets; unknown names are ignored.
func ParseTargets(names []string) chart.Targets {
	var t chart.Targets
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "nutrient", "nutrients":
			t.Nutrient = true
		case "water", "irrigation":
			t.Water = true
		case "disease", "diseases":
			t.Disease = true
		case "all":
			t = chart.AllTargets()
		}
	}
	return t
}

// ChartOptions builds assembly options with palette overrides applied.
func (c *Global) ChartOptions() (chart.Options, error) {
	o := chart.DefaultOptions()
	o.TopN = c.TopN
	o.MetricDecimals = c.MetricDecimals
	p := &o.Palette
	for _, e := range []struct {
		key string
		hex string
		dst *chart.Color
	}{
		{"palette.deficient", c.Palette.Deficient, &p.Deficient},
		{"palette.optimal", c.Palette.Optimal, &p.Optimal},
		{"palette.excessive", c.Palette.Excessive, &p.Excessive},
		{"palette.low_line", c.Palette.LowLine, &p.LowLine},
		{"palette.high_line", c.Palette.HighLine, &p.HighLine},
		{"palette.probability", c.Palette.Probability, &p.Probability},
	} {
		if err := override(e.key, e.hex, e.dst); err != nil {
			return chart.Options{}, err
		}
	}
	for i, hex := range c.Palette.Water {
		if i >= len(p.Water) {
			break
		}
		if err := override(fmt.Sprintf("palette.water[%d]", i), hex, &p.Water[i]); err != nil {
			return chart.Options{}, err
		}
	}
	return o, nil
}

func override(key, hex string, dst *chart.Color) error {
	if hex == "" {
		return nil
	}
	col, err := chart.ParseHexColor(hex)
	if err != nil {
		return &ConfigError{Key: key, Reason: err.Error()}
	}
	*dst = col.WithAlpha(dst.A)
	return nil
}
