// @license
// Copyright (C) 2025  Dinko Korunic
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkorunic/hse-app-search/fetch"
)

const testConfig = `
[user]
username = "iipetrov@edu.hse.ru"
password = "p3tr0v_pa$$w0rd"
client_id = "01234567-89ab-cdef-0123-456789abcdef"

[api]
auth_mode = "direct"
timeout = "15s"
search_url = "https://api.example.org/v2/dump/search/"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "hse-app.toml")
	if err := os.WriteFile(name, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return name
}

// clearEnv makes sure credentials from the test environment do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	t.Setenv(EnvClientID, "")
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	// Test with a valid config file.
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfig() with valid config failed: %v", err)
	}

	fc := cfg.ClientConfig()
	if fc.Username != "iipetrov@edu.hse.ru" || fc.ClientID != "01234567-89ab-cdef-0123-456789abcdef" {
		t.Errorf("unexpected credentials: %+v", fc.Credentials)
	}

	if fc.AuthMode != fetch.AuthModeDirect {
		t.Errorf("expected direct auth mode, got %q", fc.AuthMode)
	}

	if fc.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", fc.Timeout)
	}

	if fc.Endpoints.SearchURL != "https://api.example.org/v2/dump/search/" || fc.Endpoints.TokenURL != "" {
		t.Errorf("unexpected endpoints: %+v", fc.Endpoints)
	}

	// Test with an invalid config file.
	if _, err := LoadConfig(writeConfig(t, "invalid toml")); err == nil {
		t.Fatal("LoadConfig() with invalid config should have failed")
	}

	// Test with a non-existent config file and no environment.
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv(EnvUsername, "aashishkov@edu.hse.ru")
	t.Setenv(EnvPassword, "secret")
	t.Setenv(EnvClientID, "fedcba98-7654-3210-fedc-ba9876543210")

	// environment alone is enough
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() with environment failed: %v", err)
	}

	if cfg.User.Username != "aashishkov@edu.hse.ru" || cfg.User.Password != "secret" {
		t.Errorf("unexpected user: %+v", cfg.User)
	}

	// environment wins over file
	cfg, err = LoadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.User.ClientID != "fedcba98-7654-3210-fedc-ba9876543210" {
		t.Errorf("expected client ID from environment, got %q", cfg.User.ClientID)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	clearEnv(t)

	testCases := []struct {
		name     string
		content  string
		expected error
	}{
		{
			name:     "NoPassword",
			content:  "[user]\nusername = \"a@edu.hse.ru\"\nclient_id = \"x\"\n",
			expected: ErrNoUser,
		},
		{
			name:     "BadUsername",
			content:  "[user]\nusername = \"iipetrov\"\npassword = \"p\"\nclient_id = \"x\"\n",
			expected: ErrInvalidUsername,
		},
		{
			name:     "BadAuthMode",
			content:  "[user]\nusername = \"a@edu.hse.ru\"\npassword = \"p\"\nclient_id = \"x\"\n[api]\nauth_mode = \"saml\"\n",
			expected: ErrInvalidAuthMode,
		},
		{
			name:     "BadURL",
			content:  "[user]\nusername = \"a@edu.hse.ru\"\npassword = \"p\"\nclient_id = \"x\"\n[api]\ntoken_url = \"auth.hse.ru/token\"\n",
			expected: ErrInvalidURL,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.content)); !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	t.Parallel()

	// isValidUserAtDomain
	if !isValidUserAtDomain("iipetrov@edu.hse.ru") {
		t.Error("isValidUserAtDomain() failed with a valid user@domain")
	}
	if isValidUserAtDomain("iipetrov") {
		t.Error("isValidUserAtDomain() passed with an invalid user@domain")
	}

	// isHSEMail
	if !isHSEMail("iipetrov@edu.hse.ru") || !isHSEMail("ivanov@HSE.ru") {
		t.Error("isHSEMail() failed with a valid HSE address")
	}
	if isHSEMail("iipetrov@nothse.ru") || isHSEMail("iipetrov") {
		t.Error("isHSEMail() passed with a foreign address")
	}

	// isValidClientID
	if !isValidClientID("01234567-89ab-cdef-0123-456789abcdef") {
		t.Error("isValidClientID() failed with a valid UUID")
	}
	if isValidClientID("ru.hse.pf") {
		t.Error("isValidClientID() passed with an invalid UUID")
	}

	// isValidAuthMode
	if !isValidAuthMode("") || !isValidAuthMode("ADFS") || !isValidAuthMode("direct") {
		t.Error("isValidAuthMode() failed with a valid mode")
	}
	if isValidAuthMode("saml") {
		t.Error("isValidAuthMode() passed with an invalid mode")
	}

	// isValidURL
	if !isValidURL("https://api.hseapp.ru/v2/dump/search/") || !isValidURL("http://127.0.0.1:8080/token") {
		t.Error("isValidURL() failed with a valid URL")
	}
	if isValidURL("ru.hse.pf://auth.hse.ru/callback/") || isValidURL("/v2/dump/search/") {
		t.Error("isValidURL() passed with an invalid URL")
	}
}
