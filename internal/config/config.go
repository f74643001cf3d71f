// Package config loads server configuration from a TOML file and applies
// environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/ratepolicy"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Auth    AuthConfig    `toml:"auth"`
	Finance FinanceConfig `toml:"finance"`
	Caps    CapsConfig    `toml:"caps"`
	Cache   CacheConfig   `toml:"cache"`
}

type ServerConfig struct {
	Port   int    `toml:"port"`
	DBPath string `toml:"db_path"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type AuthConfig struct {
	// Secret signs actor tokens. Empty disables token verification.
	Secret string `toml:"secret"`
}

type FinanceConfig struct {
	DefaultMarket string             `toml:"default_market"`
	Targets       map[string]float64 `toml:"targets"`
	PremiumsBps   map[string]int     `toml:"premiums_bps"`
	ToleranceBps  int                `toml:"irr_tolerance_bps"`
}

type CapsConfig struct {
	ActiveThreshold   float64 `toml:"active_threshold"`
	FreezeMaxPct      float64 `toml:"freeze_max_pct"`
	FreezeMaxMonths   int     `toml:"freeze_max_months"`
	RescueCapPerMonth float64 `toml:"rescue_cap_per_month"`
}

type CacheConfig struct {
	GridSize int `toml:"grid_size"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	policy := ratepolicy.Default()
	caps := models.DefaultCaps()
	return &Config{
		Server: ServerConfig{Port: 8080, DBPath: "./data/tandas.db"},
		Log:    LogConfig{Level: slog.LevelInfo, Format: "text"},
		Finance: FinanceConfig{
			DefaultMarket: policy.DefaultMarket,
			Targets:       policy.Targets,
			PremiumsBps:   policy.PremiumsBps,
			ToleranceBps:  policy.ToleranceBps,
		},
		Caps: CapsConfig{
			ActiveThreshold:   caps.ActiveThreshold,
			FreezeMaxPct:      caps.FreezeMaxPct,
			FreezeMaxMonths:   caps.FreezeMaxMonths,
			RescueCapPerMonth: caps.RescueCapPerMonth,
		},
		Cache: CacheConfig{GridSize: 128},
	}
}

// LoadConfig reads path over the defaults, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to open config: %w", err)
		default:
			defer file.Close()
			if err := toml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}

	setInt("PORT", &cfg.Server.Port)
	if v := getenv("DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	setFloat("TANDA_RESCUE_CAP_PER_MONTH", &cfg.Caps.RescueCapPerMonth)
	setFloat("TANDA_FREEZE_MAX_PCT", &cfg.Caps.FreezeMaxPct)
	setInt("TANDA_FREEZE_MAX_MONTHS", &cfg.Caps.FreezeMaxMonths)
	setFloat("TANDA_ACTIVE_THRESHOLD", &cfg.Caps.ActiveThreshold)
	setInt("IRR_TOLERANCE_BPS", &cfg.Finance.ToleranceBps)

	return errors.Join(errs...)
}

// RatePolicy builds the rate policy described by the finance section.
func (c *Config) RatePolicy() *ratepolicy.Policy {
	targets := make(map[string]float64, len(c.Finance.Targets))
	for market, rate := range c.Finance.Targets {
		targets[strings.ToLower(market)] = rate
	}
	premiums := make(map[string]int, len(c.Finance.PremiumsBps))
	for eco, bps := range c.Finance.PremiumsBps {
		premiums[eco] = bps
	}
	return &ratepolicy.Policy{
		DefaultMarket: strings.ToLower(c.Finance.DefaultMarket),
		Targets:       targets,
		PremiumsBps:   premiums,
		ToleranceBps:  c.Finance.ToleranceBps,
	}
}

// SimulationCaps returns the caps section as simulator caps.
func (c *Config) SimulationCaps() models.Caps {
	return models.Caps{
		ActiveThreshold:   c.Caps.ActiveThreshold,
		FreezeMaxPct:      c.Caps.FreezeMaxPct,
		FreezeMaxMonths:   c.Caps.FreezeMaxMonths,
		RescueCapPerMonth: c.Caps.RescueCapPerMonth,
	}
}
