package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dataforge/dataforge-cli/internal/engine"
	"github.com/dataforge/dataforge-cli/internal/quality"
	"github.com/dataforge/dataforge-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig    `yaml:"store" mapstructure:"store"`
	Engine  engine.Config  `yaml:"engine" mapstructure:"engine"`
	Quality quality.Config `yaml:"quality" mapstructure:"quality"`
	Size    SizeConfig     `yaml:"size" mapstructure:"size"`
	QA      QAConfig       `yaml:"qa" mapstructure:"qa"`
	Export  ExportConfig   `yaml:"export" mapstructure:"export"`
	Server  ServerConfig   `yaml:"server" mapstructure:"server"`
	Log     LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// SizeConfig configures business size classification.
type SizeConfig struct {
	// TablePath optionally points to a YAML file overlaying the built-in
	// thresholds and NAICS size standards.
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// QAConfig configures output validation.
type QAConfig struct {
	GeocodeEnabled bool `yaml:"geocode_enabled" mapstructure:"geocode_enabled"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the preview API server.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DATAFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "dataforge.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.format", "csv")
	v.SetDefault("qa.geocode_enabled", false)

	eng := engine.DefaultConfig()
	v.SetDefault("engine.merge_threshold", eng.MergeThreshold)
	v.SetDefault("engine.business_weights.domain", eng.Business.Domain)
	v.SetDefault("engine.business_weights.phone", eng.Business.Phone)
	v.SetDefault("engine.business_weights.name", eng.Business.Name)
	v.SetDefault("engine.business_weights.address", eng.Business.Address)
	v.SetDefault("engine.rfp_weights.title", eng.RFP.Title)
	v.SetDefault("engine.rfp_weights.agency", eng.RFP.Agency)
	v.SetDefault("engine.rfp_weights.posted_date", eng.RFP.PostedDate)
	v.SetDefault("engine.source_priority", eng.SourcePriority)
	v.SetDefault("engine.name_prefix_len", eng.NamePrefixLen)
	v.SetDefault("engine.street_threshold", eng.StreetThreshold)

	q := quality.DefaultConfig()
	v.SetDefault("quality.business.domain", q.Business.Domain)
	v.SetDefault("quality.business.phone", q.Business.Phone)
	v.SetDefault("quality.business.email", q.Business.Email)
	v.SetDefault("quality.business.address", q.Business.Address)
	v.SetDefault("quality.business.industry", q.Business.Industry)
	v.SetDefault("quality.business.size_inputs", q.Business.SizeInputs)
	v.SetDefault("quality.rfp.title", q.RFP.Title)
	v.SetDefault("quality.rfp.agency", q.RFP.Agency)
	v.SetDefault("quality.rfp.close_date", q.RFP.CloseDate)
	v.SetDefault("quality.rfp.contact_email", q.RFP.ContactEmail)
	v.SetDefault("quality.rfp.estimated_value", q.RFP.EstimatedValue)
	v.SetDefault("quality.bonus.county_fips", q.Bonus.CountyFIPS)
	v.SetDefault("quality.bonus.valid_email", q.Bonus.ValidEmail)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
