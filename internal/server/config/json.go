package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/skullkeeper/internal/flagx"
	"github.com/dmitrijs2005/skullkeeper/internal/timex"
)

// JsonConfig is the JSON file shape. Duration fields use timex.Duration so
// that both "90m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	Backend                     string          `json:"backend"`
	StorePath                   string          `json:"store_path"`
	Users                       []string        `json:"users"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	CORSOrigin                  string          `json:"cors_origin"`
	LogLevel                    string          `json:"log_level"`
	MaxBodyBytes                int64           `json:"max_body_bytes"`
}

// parseJson overlays the JSON file named by -c or -config onto config.
// Keys missing from the file keep their current values. An unreadable or
// invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.Backend, c.Backend)
	setString(&config.StorePath, c.StorePath)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.LogLevel, c.LogLevel)

	if c.Users != nil {
		config.Users = c.Users
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.MaxBodyBytes != 0 {
		config.MaxBodyBytes = c.MaxBodyBytes
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
