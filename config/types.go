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

import "time"

// User struct holds a single HSE account used to log into the mobile app backend.
type User struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	ClientID string `toml:"client_id"`
}

// API struct holds optional backend overrides. Empty values fall back to the production endpoints.
type API struct {
	AuthMode     string        `toml:"auth_mode"`
	UserAgent    string        `toml:"user_agent"`
	Timeout      time.Duration `toml:"timeout"`
	AuthorizeURL string        `toml:"authorize_url"`
	TokenURL     string        `toml:"token_url"`
	SearchURL    string        `toml:"search_url"`
	EmailURL     string        `toml:"email_url"`
	RedirectURI  string        `toml:"redirect_uri"`
}

// TomlConfig struct holds all other configuration structures.
type TomlConfig struct {
	User User `toml:"user"`
	API  API  `toml:"api"`
}
