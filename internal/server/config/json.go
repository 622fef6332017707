package config

import (
	"encoding/json"
	"os"
	"time"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Durations are given in seconds. Empty fields leave
// the current value untouched.
type JsonConfig struct {
	DeploymentMode     *string `json:"deployment_mode"`
	DatabaseURL        *string `json:"database_url"`
	TokenSecret        *string `json:"token_secret"`
	SecretKey          *string `json:"secret_key"`
	WorkspaceRoot      *string `json:"workspace_root"`
	SessionIdleSecs    *int    `json:"session_idle_secs"`
	ReaperIntervalSecs *int    `json:"reaper_interval_secs"`
	DBMaxConns         *int    `json:"db_max_conns"`
	S3AccessKey        *string `json:"s3_access_key"`
	S3SecretKey        *string `json:"s3_secret_key"`
	S3Bucket           *string `json:"s3_bucket"`
	S3Region           *string `json:"s3_region"`
	S3BaseEndpoint     *string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the file named by the CONFIG
// environment variable. If the variable is unset, no file is loaded. An
// unreadable or malformed file panics: starting with half a config is
// worse than not starting.
func parseJson(config *Config) {
	path := os.Getenv("CONFIG")
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.DeploymentMode, c.DeploymentMode)
	setString(&config.DatabaseURL, c.DatabaseURL)
	setString(&config.TokenSecret, c.TokenSecret)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.WorkspaceRoot, c.WorkspaceRoot)
	setSeconds(&config.SessionIdle, c.SessionIdleSecs)
	setSeconds(&config.ReaperInterval, c.ReaperIntervalSecs)
	if c.DBMaxConns != nil {
		config.DBMaxConns = *c.DBMaxConns
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setSeconds(dst *time.Duration, src *int) {
	if src != nil {
		*dst = time.Duration(*src) * time.Second
	}
}
