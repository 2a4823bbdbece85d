// Package config handles simulator configuration using Viper.
package config

import (
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// Strategy names used in the strategies/allocation blocks.
const (
	StrategyWheel   = "wheel"
	StrategyRotator = "rotator"
)

// Data modes.
const (
	DataModeMock   = "mock"
	DataModeLive   = "live"
	DataModeHybrid = "hybrid"
)

const allocationTolerance = 0.01

// Config is the validated simulator configuration. It is read once at startup
// and passed explicitly into every component that needs it.
type Config struct {
	InitialCapital float64            `mapstructure:"initial_capital"`
	Strategies     map[string]bool    `mapstructure:"strategies"`
	Allocation     map[string]float64 `mapstructure:"allocation"`
	WheelSymbols   []string           `mapstructure:"wheel_symbols"`
	RotatorSymbols []string           `mapstructure:"rotator_symbols"`
	DataMode       string             `mapstructure:"data_mode"`

	Wheel      WheelConfig      `mapstructure:"wheel_strategy"`
	Simulation SimulationConfig `mapstructure:"simulation"`

	// CryptoIDs maps rotator symbols to data-source identifiers
	// (e.g. BTC -> bitcoin for CoinGecko).
	CryptoIDs map[string]string `mapstructure:"crypto_ids"`

	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WheelConfig holds the per-trade tuning knobs of the wheel strategy.
type WheelConfig struct {
	PutStrikePct   float64 `mapstructure:"put_strike_pct"`
	CallStrikePct  float64 `mapstructure:"call_strike_pct"`
	PutPremiumPct  float64 `mapstructure:"put_premium_pct"`
	CallPremiumPct float64 `mapstructure:"call_premium_pct"`
}

// SimulationConfig controls the weekly loop and the mock data generator.
type SimulationConfig struct {
	Weeks         int   `mapstructure:"weeks_to_simulate"`
	Deterministic bool  `mapstructure:"enable_deterministic_mode"`
	MockSeed      int64 `mapstructure:"mock_seed"`
}

// TelegramConfig holds the optional run-completion notifier settings.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

// Load reads a YAML configuration file, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("WHEELHOUSE")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("initial_capital", 100000.0)
	v.SetDefault("strategies", map[string]bool{
		StrategyWheel:   true,
		StrategyRotator: true,
	})
	v.SetDefault("allocation", map[string]float64{
		StrategyWheel:   0.5,
		StrategyRotator: 0.5,
	})
	v.SetDefault("wheel_symbols", []string{"SPY", "QQQ", "IWM"})
	v.SetDefault("rotator_symbols", []string{"BTC", "ETH", "SOL"})
	v.SetDefault("data_mode", DataModeMock)
	v.SetDefault("wheel_strategy.put_strike_pct", 0.95)
	v.SetDefault("wheel_strategy.call_strike_pct", 1.05)
	v.SetDefault("wheel_strategy.put_premium_pct", 0.02)
	v.SetDefault("wheel_strategy.call_premium_pct", 0.015)
	v.SetDefault("simulation.weeks_to_simulate", 8)
	v.SetDefault("simulation.enable_deterministic_mode", true)
	v.SetDefault("simulation.mock_seed", 42)
	v.SetDefault("crypto_ids", map[string]string{
		"BTC": "bitcoin",
		"ETH": "ethereum",
		"SOL": "solana",
	})
}

// Validate checks the configuration before any strategy runs. Errors name the
// offending field.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.2f", c.InitialCapital)
	}

	switch c.DataMode {
	case DataModeMock, DataModeLive, DataModeHybrid:
	default:
		return fmt.Errorf("data_mode must be one of mock, live, hybrid; got %q", c.DataMode)
	}

	enabled := c.EnabledStrategies()
	if len(enabled) == 0 {
		return fmt.Errorf("strategies: at least one strategy must be enabled")
	}

	if c.Enabled(StrategyWheel) && len(c.WheelSymbols) == 0 {
		return fmt.Errorf("wheel_symbols must not be empty when the wheel strategy is enabled")
	}

	if c.Enabled(StrategyRotator) && len(c.RotatorSymbols) == 0 {
		return fmt.Errorf("rotator_symbols must not be empty when the rotator strategy is enabled")
	}

	// The allocation block only binds when more than one strategy is enabled;
	// a single enabled strategy always receives 100% of capital.
	if len(enabled) > 1 {
		sum := 0.0
		for _, name := range enabled {
			sum += c.Allocation[name]
		}
		if math.Abs(sum-1.0) > allocationTolerance {
			return fmt.Errorf("allocation for enabled strategies must sum to 1.0, got %.4f", sum)
		}
	}

	return nil
}

// Enabled reports whether the named strategy is switched on.
func (c *Config) Enabled(name string) bool {
	return c.Strategies[name]
}

// EnabledStrategies returns enabled strategy names in a fixed order
// (wheel before rotator), never in map iteration order.
func (c *Config) EnabledStrategies() []string {
	var names []string
	for _, name := range []string{StrategyWheel, StrategyRotator} {
		if c.Strategies[name] {
			names = append(names, name)
		}
	}
	return names
}

// AllocationFor returns the capital fraction for an enabled strategy,
// applying the single-strategy 100% rule.
func (c *Config) AllocationFor(name string) float64 {
	enabled := c.EnabledStrategies()
	if len(enabled) == 1 && enabled[0] == name {
		return 1.0
	}
	return c.Allocation[name]
}

// Weeks returns the configured simulation length, defaulting to 52 when the
// configuration does not set one.
func (c *Config) Weeks() int {
	if c.Simulation.Weeks <= 0 {
		return 52
	}
	return c.Simulation.Weeks
}

// CryptoID maps a rotator symbol to its data-source identifier.
func (c *Config) CryptoID(symbol string) string {
	if id, ok := c.CryptoIDs[symbol]; ok {
		return id
	}
	return symbol
}
