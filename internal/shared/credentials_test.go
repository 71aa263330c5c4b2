package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCredentials(t *testing.T) {
	environ := []string{
		"CONSUMER_KEY_1=ck1",
		"CONSUMER_SECRET_1=cs1",
		"ACCESS_TOKEN_KEY_1=at1",
		"ACCESS_TOKEN_SECRET_1=as1",
		"CONSUMER_KEY_2=ck2",
		"BEARER_TOKEN_2=bearer2",
		"CONSUMER_KEY_12=other",
		"PATH=/usr/bin",
	}

	t.Run("four-tuple", func(t *testing.T) {
		creds, err := LoadCredentials("1", environ)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.ConsumerKey != "ck1" || creds.ConsumerSecret != "cs1" {
			t.Errorf("unexpected consumer pair: %+v", creds)
		}
		if creds.AccessTokenKey != "at1" || creds.AccessTokenSecret != "as1" {
			t.Errorf("unexpected access pair: %+v", creds)
		}
		if creds.UsesBearer() {
			t.Error("four-tuple bundle should not use bearer auth")
		}
	})

	t.Run("bearer token", func(t *testing.T) {
		creds, err := LoadCredentials("2", environ)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !creds.UsesBearer() {
			t.Error("expected bearer auth")
		}
	})

	t.Run("suffix must match exactly", func(t *testing.T) {
		_, err := LoadCredentials("3", environ)
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		for _, name := range []string{"CONSUMER_KEY_3", "ACCESS_TOKEN_SECRET_3"} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("expected error to name %s, got %v", name, err)
			}
		}
	})

	t.Run("all accounts", func(t *testing.T) {
		bundles, err := LoadAllCredentials(DefaultConfig().Accounts, environ)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bundles) != 2 {
			t.Fatalf("expected 2 bundles, got %d", len(bundles))
		}

		_, err = LoadAllCredentials([]AccountConfig{{Label: "ghost", EnvSuffix: "9"}}, environ)
		if err == nil || !strings.Contains(err.Error(), "ghost") {
			t.Errorf("expected error naming the account, got %v", err)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("missing .env should be ignored, got %v", err)
		}
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("LSX_DOTENV_PROBE=from-file\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("LSX_DOTENV_PROBE", "")
		os.Unsetenv("LSX_DOTENV_PROBE")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("LSX_DOTENV_PROBE"); got != "from-file" {
			t.Errorf("expected from-file, got %q", got)
		}
	})
}
