// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds runtime settings for the Skullkeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST endpoint.
//   - Backend / StorePath: which store to open and where its data lives.
//     StorePath is ignored by the memory backend.
//   - Users: users served in addition to those discovered under StorePath.
//   - SecretKey: HMAC secret for verifying JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: lifetime of tokens issued by the CLI.
//   - CORSOrigin: value for Access-Control-Allow-Origin, unset when empty.
//   - LogLevel: debug, info, warn or error.
//   - MaxBodyBytes: request body limit.
type Config struct {
	EndpointAddrHTTP            string
	Backend                     string
	StorePath                   string
	Users                       []string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	CORSOrigin                  string
	LogLevel                    string
	MaxBodyBytes                int64
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.Backend = BackendMemory
	c.StorePath = ""
	c.Users = []string{}
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.CORSOrigin = ""
	c.LogLevel = "info"
	c.MaxBodyBytes = 1024
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
