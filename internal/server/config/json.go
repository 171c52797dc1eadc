package config

import (
	"encoding/json"
	"os"

	"github.com/tijori/tijori/internal/flagx"
	"github.com/tijori/tijori/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Every field
// is optional; absent fields leave the current value untouched.
type JsonConfig struct {
	HTTPAddress             *string         `json:"http_address"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	TokenValidityDuration   *timex.Duration `json:"token_validity_duration"`
	RefreshWindow           *timex.Duration `json:"refresh_window"`
	Production              *bool           `json:"production"`
	CORSOrigin              *string         `json:"cors_origin"`
	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	PresignValidityDuration *timex.Duration `json:"presign_validity_duration"`
	UploadDir               *string         `json:"upload_dir"`
	MaxUploadSize           *int64          `json:"max_upload_size"`
	LogLevel                *string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config (or
// TIJORI_CONFIG). No path means nothing to do; an unreadable or invalid
// file panics, since the server cannot start with a broken config.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.HTTPAddress, c.HTTPAddress)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.Production, c.Production)
	setIf(&config.CORSOrigin, c.CORSOrigin)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.UploadDir, c.UploadDir)
	setIf(&config.MaxUploadSize, c.MaxUploadSize)
	setIf(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.RefreshWindow != nil {
		config.RefreshWindow = c.RefreshWindow.Duration
	}
	if c.PresignValidityDuration != nil {
		config.PresignValidityDuration = c.PresignValidityDuration.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
