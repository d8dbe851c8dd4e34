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
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dkorunic/hse-app-search/fetch"
	"github.com/dkorunic/hse-app-search/logger"
)

const (
	EnvUsername = "HSE_USERNAME" // corporate e-mail, i.e. iipetrov@edu.hse.ru
	EnvPassword = "HSE_PASSWORD" // corporate password
	EnvClientID = "CLIENT_ID"    // Android app ID

	hseDomain = "hse.ru"
)

var (
	ErrNoUser          = errors.New("configuration error: username, password and client_id are required")
	ErrInvalidUsername = errors.New("configuration error: username not in proper user@domain format")
	ErrInvalidAuthMode = errors.New("configuration error: unknown auth_mode")
	ErrInvalidURL      = errors.New("configuration error: not an absolute http(s) URL")
)

// LoadConfig attempts to load and decode configuration file in TOML format, applies environment overrides for
// credentials and does a minimal sanity checking, optionally returning an error. A missing file is not an error as
// long as credentials come from the environment.
func LoadConfig(file string) (TomlConfig, error) {
	var config TomlConfig

	if file != "" {
		if _, err := toml.DecodeFile(file, &config); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return config, err
			}

			logger.Debug().Msgf("Configuration file %v not found, using environment only", file)
		}
	}

	applyEnv(&config)

	if err := checkUserConf(config); err != nil {
		return config, err
	}

	if err := checkAPIConf(config); err != nil {
		return config, err
	}

	return config, nil
}

// ClientConfig converts configuration into the client library configuration.
func (c TomlConfig) ClientConfig() fetch.Config {
	return fetch.Config{
		Credentials: fetch.Credentials{
			Username: c.User.Username,
			Password: c.User.Password,
			ClientID: c.User.ClientID,
		},
		Endpoints: fetch.Endpoints{
			AuthorizeURL: c.API.AuthorizeURL,
			TokenURL:     c.API.TokenURL,
			SearchURL:    c.API.SearchURL,
			EmailURL:     c.API.EmailURL,
			RedirectURI:  c.API.RedirectURI,
		},
		AuthMode:  fetch.AuthMode(strings.ToLower(c.API.AuthMode)),
		UserAgent: c.API.UserAgent,
		Timeout:   c.API.Timeout,
	}
}

// applyEnv overrides credentials with HSE_USERNAME, HSE_PASSWORD and CLIENT_ID when they are set.
func applyEnv(config *TomlConfig) {
	if v, ok := os.LookupEnv(EnvUsername); ok && v != "" {
		config.User.Username = v
	}

	if v, ok := os.LookupEnv(EnvPassword); ok && v != "" {
		config.User.Password = v
	}

	if v, ok := os.LookupEnv(EnvClientID); ok && v != "" {
		config.User.ClientID = v
	}
}

// checkUserConf does a minimal sanity check on the User configuration block, ensuring that:
//
// 1. username, password and client ID are all defined
//
// 2. username is in proper user@domain format
//
// Usernames outside of hse.ru and client IDs which are not UUIDs only produce a warning, as the backend is the
// final judge.
func checkUserConf(config TomlConfig) error {
	u := config.User

	if u.Username == "" || u.Password == "" || u.ClientID == "" {
		return ErrNoUser
	}

	if !isValidUserAtDomain(u.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, u.Username)
	}

	if !isHSEMail(u.Username) {
		logger.Warn().Msgf("Configuration issue: username not ending with @edu.hse.ru or @hse.ru: %q", u.Username)
	}

	if !isValidClientID(u.ClientID) {
		logger.Warn().Msgf("Configuration issue: client_id is not an UUID: %q", u.ClientID)
	}

	return nil
}

// checkAPIConf validates optional API overrides: auth mode must be known and every overridden endpoint must be an
// absolute http(s) URL.
func checkAPIConf(config TomlConfig) error {
	a := config.API

	if !isValidAuthMode(a.AuthMode) {
		return fmt.Errorf("%w: %q", ErrInvalidAuthMode, a.AuthMode)
	}

	for _, u := range []string{a.AuthorizeURL, a.TokenURL, a.SearchURL, a.EmailURL} {
		if u != "" && !isValidURL(u) {
			return fmt.Errorf("%w: %q", ErrInvalidURL, u)
		}
	}

	if a.AuthMode != "" {
		logger.Info().Msgf("Configuration: using %v authentication", strings.ToLower(a.AuthMode))
	}

	return nil
}
