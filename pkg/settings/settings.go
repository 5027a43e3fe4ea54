package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/telemetry"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CONNECT_UTIL"

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "connect-util.yaml"

// Settings is the full CLI configuration.
type Settings struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	// OutputDir is where generate writes files given by relative path.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	Tracing  TracingSettings  `mapstructure:"tracing" yaml:"tracing"`
	Metrics  MetricsSettings  `mapstructure:"metrics" yaml:"metrics"`
	Policy   PolicySettings   `mapstructure:"policy" yaml:"policy"`
	Generate GenerateSettings `mapstructure:"generate" yaml:"generate"`
}

// TracingSettings selects the span exporter.
type TracingSettings struct {
	Exporter     string  `mapstructure:"exporter" yaml:"exporter" validate:"oneof=none stdout otlp"`
	Endpoint     string  `mapstructure:"endpoint" yaml:"endpoint" validate:"required_if=Exporter otlp"`
	SamplingRate float64 `mapstructure:"sampling_rate" yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// MetricsSettings configures the metrics textfile.
type MetricsSettings struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// PolicySettings configures policy evaluation during validate.
type PolicySettings struct {
	Paths   []string `mapstructure:"paths" yaml:"paths"`
	Builtin bool     `mapstructure:"builtin" yaml:"builtin"`
}

// GenerateSettings holds generate defaults.
type GenerateSettings struct {
	// DefaultOutputFormat replaces each connector's own default output
	// format when set.
	DefaultOutputFormat string `mapstructure:"default_output_format" yaml:"default_output_format" validate:"omitempty,oneof=AVRO JSON JSON_SR PROTOBUF PARQUET"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		LogLevel:  "warn",
		LogFormat: "console",
		OutputDir: ".",
		Tracing: TracingSettings{
			Exporter:     "none",
			SamplingRate: 1.0,
		},
		Policy: PolicySettings{
			Paths:   []string{},
			Builtin: true,
		},
	}
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML file. It must exist when set.
	ConfigFile string

	// SearchDir is searched for DefaultFileName when ConfigFile is empty.
	SearchDir string

	// EnvFile is a dotenv file loaded into the process environment before
	// reading variables. A missing file is ignored.
	EnvFile string
}

// Load reads and validates the settings.
func Load(opts Options) (*Settings, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Overload(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(apperr.KindConfig, "failed to load "+opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.Wrap(apperr.KindConfig, "failed to read config file "+opts.ConfigFile, err)
		}
	} else {
		dir := opts.SearchDir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, apperr.Wrap(apperr.KindConfig, "failed to read config file", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "failed to decode settings", err)
	}
	s.normalize()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.sampling_rate", d.Tracing.SamplingRate)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("policy.paths", d.Policy.Paths)
	v.SetDefault("policy.builtin", d.Policy.Builtin)
	v.SetDefault("generate.default_output_format", d.Generate.DefaultOutputFormat)
}

func (s *Settings) normalize() {
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.LogFormat = strings.ToLower(s.LogFormat)
	s.Tracing.Exporter = strings.ToLower(s.Tracing.Exporter)
	if f, err := catalog.ParseDataFormat(s.Generate.DefaultOutputFormat); err == nil {
		s.Generate.DefaultOutputFormat = string(f)
	}
}

// Validate checks the settings against their struct tags.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.New(apperr.KindConfig,
				fmt.Sprintf("invalid setting %s: %v", fe.Namespace(), fe.Value())).WithField(fe.Field())
		}
		return apperr.Wrap(apperr.KindConfig, "invalid settings", err)
	}
	return nil
}

// Telemetry converts the settings into a telemetry configuration.
func (s *Settings) Telemetry(version string) *telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Logging.Level = s.LogLevel
	cfg.Logging.Format = s.LogFormat
	cfg.Tracing.Exporter = s.Tracing.Exporter
	cfg.Tracing.Endpoint = s.Tracing.Endpoint
	cfg.Tracing.SamplingRate = s.Tracing.SamplingRate
	cfg.Metrics.Textfile = s.Metrics.Textfile
	return cfg
}

// DataFormat returns the configured default output format, or empty when
// connectors keep their own default.
func (s *Settings) DataFormat() catalog.DataFormat {
	return catalog.DataFormat(s.Generate.DefaultOutputFormat)
}
