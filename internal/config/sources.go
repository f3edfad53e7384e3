package config

import (
	"fmt"
	"os"
	"strings"
)

// SettingSource represents where a resolved setting comes from.
type SettingSource string

const (
	SourceEnv    SettingSource = "env"
	SourceConfig SettingSource = "config" // config file or built-in default
)

// SettingStatus describes one resolved setting for the status command.
type SettingStatus struct {
	Key    string        `json:"key"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
	EnvVar string        `json:"env_var"`
}

// CheckSettings returns the effective value and origin of the settings that
// change valuation output or where it is stored.
func CheckSettings(cfg *Config) []SettingStatus {
	seed := "random"
	if cfg.Valuation.Seed != 0 {
		seed = fmt.Sprintf("%d", cfg.Valuation.Seed)
	}
	return []SettingStatus{
		checkSetting("valuation.seed", seed),
		checkSetting("valuation.iterations", fmt.Sprintf("%d", cfg.Valuation.Iterations)),
		checkSetting("valuation.growth_volatility", fmt.Sprintf("%.4f", cfg.Valuation.GrowthVolatility)),
		checkSetting("valuation.discount_volatility", fmt.Sprintf("%.4f", cfg.Valuation.DiscountVolatility)),
		checkSetting("batch.workers", fmt.Sprintf("%d", cfg.Batch.Workers)),
		checkSetting("history.enabled", fmt.Sprintf("%t", cfg.History.Enabled)),
		checkSetting("history.path", cfg.History.Path),
		checkSetting("report.format", cfg.Report.Format),
		checkSetting("logging.level", cfg.Logging.Level),
	}
}

// EnvVar returns the environment variable that overrides a dotted key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func checkSetting(key, value string) SettingStatus {
	env := EnvVar(key)
	status := SettingStatus{Key: key, Value: value, Source: SourceConfig, EnvVar: env}
	if _, ok := os.LookupEnv(env); ok {
		status.Source = SourceEnv
	}
	return status
}
