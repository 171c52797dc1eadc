package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig lists the environment variables understood by the server.
// Names follow the conventions of the web client's deployment (PORT,
// DATABASE_URL, JWT_SECRET, NODE_ENV, ...). Unset variables stay nil.
type EnvConfig struct {
	Port                    *string        `env:"PORT"`
	HTTPAddress             *string        `env:"HTTP_ADDRESS"`
	DatabaseDSN             *string        `env:"DATABASE_URL"`
	SecretKey               *string        `env:"JWT_SECRET"`
	TokenValidityDuration   *time.Duration `env:"JWT_EXPIRES_IN"`
	RefreshWindow           *time.Duration `env:"JWT_REFRESH_WINDOW"`
	NodeEnv                 *string        `env:"NODE_ENV"`
	CORSOrigin              *string        `env:"CORS_ORIGIN"`
	S3RootUser              *string        `env:"S3_ACCESS_KEY"`
	S3RootPassword          *string        `env:"S3_SECRET_KEY"`
	S3Bucket                *string        `env:"S3_BUCKET"`
	S3Region                *string        `env:"S3_REGION"`
	S3BaseEndpoint          *string        `env:"S3_ENDPOINT"`
	PresignValidityDuration *time.Duration `env:"S3_PRESIGN_EXPIRES_IN"`
	UploadDir               *string        `env:"UPLOAD_DIR"`
	MaxUploadSize           *int64         `env:"MAX_UPLOAD_SIZE"`
	LogLevel                *string        `env:"LOG_LEVEL"`
}

// dotenvFiles are loaded, when present, before reading the environment.
// Variables already set in the process win over the file.
var dotenvFiles = []string{".env"}

// parseEnv overlays values from the environment. A malformed value
// (e.g. JWT_EXPIRES_IN=soon) panics.
func parseEnv(config *Config) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	c := &EnvConfig{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *EnvConfig) apply(config *Config) {
	if c.Port != nil {
		config.HTTPAddress = ":" + *c.Port
	}
	setIf(&config.HTTPAddress, c.HTTPAddress)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.TokenValidityDuration, c.TokenValidityDuration)
	setIf(&config.RefreshWindow, c.RefreshWindow)
	setIf(&config.CORSOrigin, c.CORSOrigin)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.PresignValidityDuration, c.PresignValidityDuration)
	setIf(&config.UploadDir, c.UploadDir)
	setIf(&config.MaxUploadSize, c.MaxUploadSize)
	setIf(&config.LogLevel, c.LogLevel)

	if c.NodeEnv != nil {
		config.Production = *c.NodeEnv == "production"
	}
}
