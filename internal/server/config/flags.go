package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   store backend: memory, file or sqlite
//	-p string   store directory
//	-u string   comma-separated users
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o string   CORS origin
//	-l string   log level
//	-m int      request body limit, bytes
//
// os.Args is first filtered with flagx.FilterArgs so that flags owned by
// other components (-c) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-p", "-u", "-s", "-t", "-o", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.Backend, "b", config.Backend, "store backend (memory, file, sqlite)")
	fs.StringVar(&config.StorePath, "p", config.StorePath, "store directory")
	users := fs.String("u", strings.Join(config.Users, ","), "comma-separated users")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.StringVar(&config.CORSOrigin, "o", config.CORSOrigin, "CORS origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.Int64Var(&config.MaxBodyBytes, "m", config.MaxBodyBytes, "request body limit (bytes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.Users = flagx.SplitList(*users)
	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
