package shared

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Credentials is the credential bundle for one account.
//
// Either the OAuth 1.0a four-tuple or a bearer token must be present.
type Credentials struct {
	ConsumerKey       string `env:"CONSUMER_KEY"`
	ConsumerSecret    string `env:"CONSUMER_SECRET"`
	AccessTokenKey    string `env:"ACCESS_TOKEN_KEY"`
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET"`
	BearerToken       string `env:"BEARER_TOKEN"`
}

// UsesBearer reports whether the bundle authenticates with an OAuth 2 bearer token.
func (c Credentials) UsesBearer() bool {
	return c.BearerToken != ""
}

// Validate reports which variables are missing for the OAuth 1.0a four-tuple.
func (c Credentials) Validate(suffix string) error {
	if c.UsesBearer() {
		return nil
	}

	var missing []string
	for name, value := range map[string]string{
		"CONSUMER_KEY":        c.ConsumerKey,
		"CONSUMER_SECRET":     c.ConsumerSecret,
		"ACCESS_TOKEN_KEY":    c.AccessTokenKey,
		"ACCESS_TOKEN_SECRET": c.AccessTokenSecret,
	} {
		if value == "" {
			missing = append(missing, name+"_"+suffix)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// LoadDotEnv loads variables from a .env file without overriding ones already set.
//
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadCredentials decodes the credential bundle whose variables end in _<suffix>.
//
// environ uses the [os.Environ] format; nil reads the process environment.
func LoadCredentials(suffix string, environ []string) (Credentials, error) {
	if environ == nil {
		environ = os.Environ()
	}

	tail := "_" + suffix
	vars := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasSuffix(key, tail) {
			continue
		}
		vars[strings.TrimSuffix(key, tail)] = value
	}

	var creds Credentials
	if err := env.ParseWithOptions(&creds, env.Options{Environment: vars}); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := creds.Validate(suffix); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// LoadAllCredentials loads one bundle per configured account, in order.
func LoadAllCredentials(accounts []AccountConfig, environ []string) ([]Credentials, error) {
	bundles := make([]Credentials, 0, len(accounts))
	for _, acct := range accounts {
		creds, err := LoadCredentials(acct.EnvSuffix, environ)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", acct.Label, err)
		}
		bundles = append(bundles, creds)
	}
	return bundles, nil
}
