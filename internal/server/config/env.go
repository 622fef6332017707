package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays environment variables on the Config. Unset variables
// leave the current value untouched; unparsable numbers panic.
//
// Recognised variables:
//
//	DEPLOYMENT_MODE        "single" or "multi"
//	DATABASE_URL           PostgreSQL URL
//	TOKEN_SECRET           JWT HMAC secret
//	SECRET_KEY             vault key material
//	WORKSPACE_ROOT         sandbox root directory
//	SESSION_IDLE_SECS      idle threshold, seconds
//	REAPER_INTERVAL_SECS   sweep cadence, seconds
//	DB_MAX_CONN            open connection cap
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	envString(&config.DeploymentMode, "DEPLOYMENT_MODE")
	envString(&config.DatabaseURL, "DATABASE_URL")
	envString(&config.TokenSecret, "TOKEN_SECRET")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.WorkspaceRoot, "WORKSPACE_ROOT")
	envSeconds(&config.SessionIdle, "SESSION_IDLE_SECS")
	envSeconds(&config.ReaperInterval, "REAPER_INTERVAL_SECS")
	envInt(&config.DBMaxConns, "DB_MAX_CONN")
	envString(&config.S3AccessKey, "S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v, ok := os.LookupEnv(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(name + ": " + err.Error())
		}
		*dst = n
	}
}

func envSeconds(dst *time.Duration, name string) {
	if v, ok := os.LookupEnv(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(name + ": " + err.Error())
		}
		*dst = time.Duration(n) * time.Second
	}
}
