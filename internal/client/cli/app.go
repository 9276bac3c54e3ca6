// Package cli implements the token tool: it signs a bearer token naming a
// store user with the server's secret key.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/server/auth"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
)

const defaultValidity = 24 * time.Hour

var errNoSecret = errors.New("secret key is empty")

// Options are the parsed command-line settings.
type Options struct {
	User     string
	Secret   string
	Validity time.Duration
}

// ParseArgs parses -u user, -s secret and -t minutes.
func ParseArgs(args []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &Options{}
	fs.StringVar(&opts.User, "u", "", "store user the token acts for")
	fs.StringVar(&opts.Secret, "s", "", "secret key (prompted when omitted)")
	minutes := fs.Int("t", int(defaultValidity.Minutes()), "token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := store.ValidateUser(opts.User); err != nil {
		return nil, err
	}
	if *minutes <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %d", *minutes)
	}
	opts.Validity = time.Duration(*minutes) * time.Minute
	return opts, nil
}

// secret returns the flag value, or prompts on a terminal, or reads one
// line from stdin.
func (o *Options) secret(stdin io.Reader, stderr io.Writer) ([]byte, error) {
	if o.Secret != "" {
		return []byte(o.Secret), nil
	}

	var secret []byte
	if isTerminal(int(os.Stdin.Fd())) {
		s, err := GetSecret(stderr)
		if err != nil {
			return nil, err
		}
		secret = s
	} else {
		line, err := ReadLine(stdin)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		secret = []byte(line)
	}

	if len(secret) == 0 {
		return nil, errNoSecret
	}
	return secret, nil
}

// Run executes the tool and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := ParseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	secret, err := opts.secret(stdin, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer clear(secret)

	token, err := auth.GenerateToken(opts.User, secret, opts.Validity)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintln(stdout, token)
	return 0
}
