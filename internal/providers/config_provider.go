package providers

import (
	"epd/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("emergency.healthLatencyBudget", 100*time.Millisecond)
	viper.SetDefault("emergency.probeInterval", 30*time.Second)
	viper.SetDefault("emergency.maxContacts", 10)
	viper.SetDefault("cache.ttl", 2*time.Second)

	viper.BindEnv("logger.level", "EPD_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "EPD_SAVE_INTERVAL")
	viper.BindEnv("persistence.dir", "EPD_DATA_DIR")
	viper.BindEnv("cache.enabled", "EPD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "EPD_CACHE_SIZE")
	viper.BindEnv("emergency.healthLatencyBudget", "EPD_HEALTH_LATENCY_BUDGET")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "EmergencyProfileDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
