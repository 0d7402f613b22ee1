package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Env struct {
	Port string `env:"PORT" env-default:"1323"`

	LogFormat string `env:"LOG_FORMAT" env-default:"json"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`

	OTLPEndpoint string `env:"OTLP_ENDPOINT"`

	StoreBackend string `env:"STORE_BACKEND" env-default:"redis"`
	StoreTable   string `env:"STORE_TABLE" env-default:"artists"`
	RedisURL     string `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
	SQLitePath   string `env:"SQLITE_PATH" env-default:"music-tonight.db"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRateLimited  bool   `env:"SPOTIFY_RATE_LIMITED" env-default:"false"`

	DeezerURL         string `env:"DEEZER_URL"`
	DeezerRateLimited bool   `env:"DEEZER_RATE_LIMITED" env-default:"true"`

	BandsintownURL   string `env:"BANDSINTOWN_URL"`
	BandsintownAppID string `env:"BANDSINTOWN_APP_ID" env-default:"music-tonight"`
	DefaultLocation  string `env:"DEFAULT_LOCATION" env-default:"40.7436300,-73.9906270"`

	RateLimitRPS      int           `env:"RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" env-default:"5"`
	LookupConcurrency int           `env:"LOOKUP_CONCURRENCY" env-default:"8"`
	BuildTimeout      time.Duration `env:"BUILD_TIMEOUT" env-default:"30s"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" env-default:"10s"`
}

var env Env

func LoadEnv() error {
	err := godotenv.Load()
	if err != nil {
		logrus.WithError(err).Warn("Failed to load env variables from file")
	}

	return cleanenv.ReadEnv(&env)
}

func GetEnv() *Env {
	return &env
}

func setupLogging(config *Env) *logrus.Logger {
	logger := logrus.StandardLogger()

	if strings.EqualFold(config.LogFormat, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logger.WithError(err).WithField("level", config.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if level < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	return logger
}
