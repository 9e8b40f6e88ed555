package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                      string `mapstructure:"PORT"`
	DatabasePath              string `mapstructure:"DATABASE_PATH"`
	JWTSecret                 string `mapstructure:"JWT_SECRET"`
	CancellationTokenTTLHours int    `mapstructure:"CANCELLATION_TOKEN_TTL_HOURS"`
	TxTimeoutSeconds          int    `mapstructure:"TX_TIMEOUT_SECONDS"`
	GoogleClientID            string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret        string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL         string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendURL               string `mapstructure:"FRONTEND_URL"`
	DiscordBotToken           string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordAlertsChannelID    string `mapstructure:"DISCORD_ALERTS_CHANNEL_ID"`
	LogDevelopment            bool   `mapstructure:"LOG_DEVELOPMENT"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "reservations.db")
	viper.SetDefault("CANCELLATION_TOKEN_TTL_HOURS", 72)
	viper.SetDefault("TX_TIMEOUT_SECONDS", 10)
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://127.0.0.1:8080/auth/google/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("CANCELLATION_TOKEN_TTL_HOURS")
	viper.BindEnv("TX_TIMEOUT_SECONDS")
	viper.BindEnv("GOOGLE_CLIENT_ID")
	viper.BindEnv("GOOGLE_CLIENT_SECRET")
	viper.BindEnv("GOOGLE_REDIRECT_URL")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_ALERTS_CHANNEL_ID")
	viper.BindEnv("LOG_DEVELOPMENT")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
