package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"haplocheck/app"
	"haplocheck/domain/dataset"
	"haplocheck/internal/errors"
	"haplocheck/internal/scanner"
)

// EnvPrefix prefixes every environment override, e.g. HAPLO_ANALYSIS_ALPHA
const EnvPrefix = "HAPLO"

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AnalysisConfig holds the haplotype comparison thresholds
type AnalysisConfig struct {
	MinIntersection int                   `mapstructure:"min_intersection"`
	Alpha           float64               `mapstructure:"alpha"`
	Workers         int                   `mapstructure:"workers"`
	GroupSize       int                   `mapstructure:"group_size"`
	AllowPartial    bool                  `mapstructure:"allow_partial"`
	Exclusion       dataset.ExclusionRule `mapstructure:"exclusion"`
}

// DatasetConfig describes the input table layout
type DatasetConfig struct {
	Schema dataset.Schema `mapstructure:",squash"`
	Sheet  string         `mapstructure:"sheet"`
}

// ScanConfig holds the single-marker scan settings
type ScanConfig struct {
	MinCohort      int                   `mapstructure:"min_cohort"`
	Tolerance      float64               `mapstructure:"tolerance"`
	MediatorPrefix string                `mapstructure:"mediator_prefix"`
	Exclusion      dataset.ExclusionRule `mapstructure:"exclusion"`
}

// OutputConfig controls where reports are written
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
	Base      string `mapstructure:"base"`
	Format    string `mapstructure:"format"`
}

// DatabaseConfig holds database connection settings. An empty URL disables storage.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port              string `mapstructure:"port"`
	DataDir           string `mapstructure:"data_dir"`
	MaxConcurrentRuns int64  `mapstructure:"max_concurrent_runs"`
}

// LoggingConfig selects the log level and format
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load reads haplocheck.yaml (or file, when given), HAPLO_* environment
// variables and the built-in defaults, in increasing order of precedence
// for the environment.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("haplocheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read config file"))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to decode configuration"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	run := app.DefaultRunConfig()
	v.SetDefault("analysis.min_intersection", run.MinIntersection)
	v.SetDefault("analysis.alpha", run.Alpha)
	v.SetDefault("analysis.workers", run.Workers)
	v.SetDefault("analysis.group_size", run.GroupSize)
	v.SetDefault("analysis.allow_partial", false)
	v.SetDefault("analysis.exclusion.row", "")
	v.SetDefault("analysis.exclusion.value", "")

	schema := dataset.DefaultSchema()
	v.SetDefault("dataset.identifier_column", schema.IdentifierColumn)
	v.SetDefault("dataset.chromosome_column", schema.ChromosomeColumn)
	v.SetDefault("dataset.name_column", schema.NameColumn)
	v.SetDefault("dataset.time_sentinel", schema.TimeSentinel)
	v.SetDefault("dataset.metadata_columns", schema.MetadataColumns)
	v.SetDefault("dataset.sheet", "Sheet1")

	scan := app.DefaultScanConfig()
	v.SetDefault("scan.min_cohort", scan.Criteria.MinCohort)
	v.SetDefault("scan.tolerance", scan.Criteria.Tolerance)
	v.SetDefault("scan.mediator_prefix", scan.MediatorPrefix)
	v.SetDefault("scan.exclusion.row", scan.Exclusion.Row)
	v.SetDefault("scan.exclusion.value", scan.Exclusion.Value)

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.base", "haplotypes")
	v.SetDefault("output.format", "csv")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.data_dir", "")
	v.SetDefault("server.max_concurrent_runs", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
}

// Validate checks the settings that do not depend on a dataset
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case "csv", "xlsx":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("output format must be csv or xlsx, got %q", c.Output.Format))
	}
	if c.Dataset.Schema.MetadataColumns < 3 {
		return errors.ConfigInvalid(fmt.Sprintf("dataset.metadata_columns must be at least 3, got %d", c.Dataset.Schema.MetadataColumns))
	}
	if c.Server.MaxConcurrentRuns < 1 {
		return errors.ConfigInvalid("server.max_concurrent_runs must be at least 1")
	}
	if err := c.RunConfig().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// RunConfig builds the pipeline configuration; markers and parameters are filled per run
func (c *Config) RunConfig() app.RunConfig {
	return app.RunConfig{
		MinIntersection:        c.Analysis.MinIntersection,
		Alpha:                  c.Analysis.Alpha,
		Workers:                c.Analysis.Workers,
		GroupSize:              c.Analysis.GroupSize,
		AllowPartialParameters: c.Analysis.AllowPartial,
		Exclusion:              c.Analysis.Exclusion,
	}
}

// ScanConfig builds the scan configuration
func (c *Config) ScanConfig() app.ScanConfig {
	return app.ScanConfig{
		MediatorPrefix:         c.Scan.MediatorPrefix,
		Criteria:               scanner.Criteria{MinCohort: c.Scan.MinCohort, Tolerance: c.Scan.Tolerance},
		Alpha:                  c.Analysis.Alpha,
		Workers:                c.Analysis.Workers,
		AllowPartialParameters: c.Analysis.AllowPartial,
		Exclusion:              c.Scan.Exclusion,
	}
}
