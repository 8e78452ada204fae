/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the dashboard-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort              string  `mapstructure:"SERVER_PORT"`
	BankAPIBaseURL          string  `mapstructure:"BANK_API_BASE_URL"`
	BankAPIUsername         string  `mapstructure:"BANK_API_USERNAME"`
	FallbackCurrency        string  `mapstructure:"FALLBACK_CURRENCY"`
	MinTransferAmount       float64 `mapstructure:"MIN_TRANSFER_AMOUNT"`
	EligibleStatuses        string  `mapstructure:"ELIGIBLE_ACCOUNT_STATUSES"`
	SnapshotRefreshSchedule string  `mapstructure:"SNAPSHOT_REFRESH_SCHEDULE"`
	RabbitMQURL             string  `mapstructure:"RABBITMQ_URL"`
	TransferEventExchange   string  `mapstructure:"TRANSFER_EVENT_EXCHANGE"`
	TransferEventRoutingKey string  `mapstructure:"TRANSFER_EVENT_ROUTING_KEY"`
	CORSAllowedOrigins      string  `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("BANK_API_BASE_URL", "https://sbfserver.site")
	viper.SetDefault("BANK_API_USERNAME", "test")
	viper.SetDefault("FALLBACK_CURRENCY", "NGN")
	viper.SetDefault("MIN_TRANSFER_AMOUNT", 1.00)
	// Preserves the shipped frontend behavior; set to "ACTIVE" to tighten the policy.
	viper.SetDefault("ELIGIBLE_ACCOUNT_STATUSES", "ACTIVE,PENDING")
	viper.SetDefault("SNAPSHOT_REFRESH_SCHEDULE", "@every 5m")
	viper.SetDefault("TRANSFER_EVENT_EXCHANGE", "sbf.events")
	viper.SetDefault("TRANSFER_EVENT_ROUTING_KEY", "transfer.internal.completed")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("BANK_API_BASE_URL")
	_ = viper.BindEnv("BANK_API_USERNAME")
	_ = viper.BindEnv("FALLBACK_CURRENCY")
	_ = viper.BindEnv("MIN_TRANSFER_AMOUNT")
	_ = viper.BindEnv("ELIGIBLE_ACCOUNT_STATUSES")
	_ = viper.BindEnv("SNAPSHOT_REFRESH_SCHEDULE")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("TRANSFER_EVENT_EXCHANGE")
	_ = viper.BindEnv("TRANSFER_EVENT_ROUTING_KEY")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.BankAPIBaseURL = strings.TrimSuffix(strings.TrimSpace(config.BankAPIBaseURL), "/")
	config.BankAPIUsername = strings.TrimSpace(config.BankAPIUsername)
	config.FallbackCurrency = strings.ToUpper(strings.TrimSpace(config.FallbackCurrency))
	if config.FallbackCurrency == "" {
		config.FallbackCurrency = "NGN"
	}

	if config.MinTransferAmount < 0 {
		log.Printf("level=warn component=config msg=\"negative minimum transfer amount configured; coercing to zero\" min_amount=%f", config.MinTransferAmount)
		config.MinTransferAmount = 0
	}

	config.EligibleStatuses = strings.TrimSpace(config.EligibleStatuses)
	if config.EligibleStatuses == "" {
		config.EligibleStatuses = "ACTIVE,PENDING"
	}

	if strings.TrimSpace(config.SnapshotRefreshSchedule) == "" {
		config.SnapshotRefreshSchedule = "@every 5m"
	}

	return
}

// EligibleStatusList splits the configured status list into normalized,
// uppercase status names.
func (c Config) EligibleStatusList() []string {
	parts := strings.Split(c.EligibleStatuses, ",")
	statuses := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s != "" {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// CORSOriginList splits the configured origin list.
func (c Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		o := strings.TrimSpace(p)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
