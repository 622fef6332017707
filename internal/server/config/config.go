// Package config handles configuration for the workbench server,
// including defaults, an optional JSON overlay, and environment variables.
package config

import "time"

// Config holds runtime settings for the workbench server.
//
// Fields:
//   - DeploymentMode: "single" or "multi"; empty means auto-detect from
//     DatabaseURL.
//   - DatabaseURL: PostgreSQL URL (pgx).
//   - TokenSecret: HMAC secret for verifying JWTs (HS256).
//   - SecretKey: key material for the credential vault (64-char hex or a
//     passphrase).
//   - WorkspaceRoot: directory under which every user sandbox lives.
//   - SessionIdle / ReaperInterval: idle threshold and sweep cadence.
//   - DBMaxConns: cap on open database connections.
//   - S3*: object storage settings for process log archival; an empty
//     bucket disables S3 and logs stay in the database.
type Config struct {
	DeploymentMode string
	DatabaseURL    string
	TokenSecret    string
	SecretKey      string
	WorkspaceRoot  string
	SessionIdle    time.Duration
	ReaperInterval time.Duration
	DBMaxConns     int
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DeploymentMode = ""
	c.DatabaseURL = ""
	c.TokenSecret = "secretKey"
	c.SecretKey = "secretKey"
	c.WorkspaceRoot = "/var/lib/workbench"
	c.SessionIdle = 1800 * time.Second
	c.ReaperInterval = 300 * time.Second
	c.DBMaxConns = 10
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from environment variables.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	return cfg
}
