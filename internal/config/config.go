// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Date      string          `mapstructure:"date"`
	Region    string          `mapstructure:"region"`
	StationID int64           `mapstructure:"station_id"` // NPC station the strategy trades from
	DataDir   string          `mapstructure:"data_dir"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Strategy  StrategyConfig  `mapstructure:"strategy"`
}

// ProvidersConfig holds external data provider settings.
type ProvidersConfig struct {
	ArchiveURL  string `mapstructure:"archive_url"` // order-book snapshot archive
	ESIURL      string `mapstructure:"esi_url"`     // market history
	Concurrency int    `mapstructure:"concurrency"` // max in-flight provider requests
}

// StrategyConfig holds the refine-arbitrage strategy parameters.
type StrategyConfig struct {
	Efficiency     float64       `mapstructure:"efficiency"`       // realized refine yield fraction (0..1]
	TaxRate        float64       `mapstructure:"tax_rate"`         // sales tax fraction
	BrokerFee      float64       `mapstructure:"broker_fee"`       // broker fee fraction (limit orders)
	StationTax     float64       `mapstructure:"station_tax"`      // refinery station tax fraction
	VolumeLimit    float64       `mapstructure:"volume_limit"`     // fraction of daily volume usable for limit orders
	DedupWindow    time.Duration `mapstructure:"dedup_window"`     // collapse opportunities closer than this
	SourceGroupIDs []int32       `mapstructure:"source_group_ids"` // SDE group IDs of refinable sources (ores, ice)
}

// TaxRateDecimal returns the sales tax as decimal.Decimal.
func (s *StrategyConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.TaxRate)
}

// BrokerFeeDecimal returns the broker fee as decimal.Decimal.
func (s *StrategyConfig) BrokerFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.BrokerFee)
}

// StationTaxDecimal returns the station tax as decimal.Decimal.
func (s *StrategyConfig) StationTaxDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.StationTax)
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("backtest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("REFARB")
	v.AutomaticEnv()
	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars + defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("date", "REFARB_DATE")
	v.BindEnv("region", "REFARB_REGION")
	v.BindEnv("station_id", "REFARB_STATION_ID")
	v.BindEnv("data_dir", "REFARB_DATA_DIR")

	v.BindEnv("providers.archive_url", "REFARB_ARCHIVE_URL")
	v.BindEnv("providers.esi_url", "REFARB_ESI_URL")
	v.BindEnv("providers.concurrency", "REFARB_PROVIDER_CONCURRENCY")

	v.BindEnv("strategy.efficiency", "REFARB_EFFICIENCY")
	v.BindEnv("strategy.tax_rate", "REFARB_TAX_RATE")
	v.BindEnv("strategy.broker_fee", "REFARB_BROKER_FEE")
	v.BindEnv("strategy.station_tax", "REFARB_STATION_TAX")
	v.BindEnv("strategy.volume_limit", "REFARB_VOLUME_LIMIT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("region", "The Forge")
	// Jita IV - Moon 4 - Caldari Navy Assembly Plant
	v.SetDefault("station_id", 60003760)
	v.SetDefault("data_dir", "data")

	v.SetDefault("providers.archive_url", "https://market-archive.evetools.dev")
	v.SetDefault("providers.esi_url", "https://esi.evetech.net/latest")
	v.SetDefault("providers.concurrency", 10)

	v.SetDefault("strategy.efficiency", 0.70)
	v.SetDefault("strategy.tax_rate", 0.01)
	v.SetDefault("strategy.broker_fee", 0.025)
	v.SetDefault("strategy.station_tax", 0.05)
	v.SetDefault("strategy.volume_limit", 0.1)
	v.SetDefault("strategy.dedup_window", "5m")
	// 465: ice, 450-462: asteroid ore groups
	v.SetDefault("strategy.source_group_ids", []int32{450, 451, 452, 453, 454, 455, 456, 457, 458, 459, 460, 461, 462, 465})
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	s := &c.Strategy
	if s.Efficiency <= 0 || s.Efficiency > 1 {
		return fmt.Errorf("strategy.efficiency must be in (0, 1], got %v", s.Efficiency)
	}
	if s.TaxRate < 0 || s.BrokerFee < 0 || s.StationTax < 0 {
		return fmt.Errorf("fee fractions must be non-negative")
	}
	if s.TaxRate+s.BrokerFee >= 1 {
		return fmt.Errorf("tax_rate + broker_fee must be < 1, got %v", s.TaxRate+s.BrokerFee)
	}
	if s.VolumeLimit < 0 || s.VolumeLimit > 1 {
		return fmt.Errorf("strategy.volume_limit must be in [0, 1], got %v", s.VolumeLimit)
	}
	if s.DedupWindow < 0 {
		return fmt.Errorf("strategy.dedup_window must be non-negative")
	}
	if c.Providers.Concurrency <= 0 {
		return fmt.Errorf("providers.concurrency must be positive")
	}
	if c.StationID <= 0 {
		return fmt.Errorf("station_id must be positive")
	}
	return nil
}
