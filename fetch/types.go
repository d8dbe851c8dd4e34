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

package fetch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// AuthMode selects how Auth obtains a bearer token.
type AuthMode string

const (
	AuthModeADFS   AuthMode = "adfs"   // ADFS authorization code flow used by the mobile app
	AuthModeDirect AuthMode = "direct" // single credentials POST to the token endpoint
)

// Scope is a search entity type recognized by the backend.
type Scope string

const (
	ScopeAll           Scope = ""
	ScopeStudent       Scope = "student"
	ScopeStaff         Scope = "staff"
	ScopeExternalStaff Scope = "external_staff"
	ScopeAuditorium    Scope = "auditorium"
	ScopeGroup         Scope = "group"
	ScopeCourse        Scope = "course"
	ScopeService       Scope = "service"
)

// Scopes lists all known scopes in the order the mobile app sends them.
var Scopes = []Scope{
	ScopeStudent,
	ScopeStaff,
	ScopeExternalStaff,
	ScopeAuditorium,
	ScopeGroup,
	ScopeCourse,
	ScopeService,
}

// Credentials holds the login of a single HSE user.
type Credentials struct {
	Username string // corporate e-mail, i.e. iipetrov@edu.hse.ru
	Password string
	ClientID string // application ID issued to the mobile app
}

// Endpoints holds all backend URLs. Empty fields fall back to defaults.
type Endpoints struct {
	AuthorizeURL string
	TokenURL     string
	SearchURL    string
	EmailURL     string
	RedirectURI  string
}

// Config is everything needed to construct a Client.
type Config struct {
	Credentials
	Endpoints Endpoints
	AuthMode  AuthMode
	UserAgent string
	Timeout   time.Duration

	// HTTPClient, if set, is used for API requests and its Transport is shared by the login flow.
	HTTPClient *http.Client

	// Logger receives debug traces. Nil disables logging.
	Logger *zerolog.Logger
}

// Client structure holds all HTTP Client related fields.
//
//nolint:containedctx
type Client struct {
	httpClient *http.Client
	ctx        context.Context
	log        zerolog.Logger
	creds      Credentials
	endpoints  Endpoints
	oauthConf  *oauth2.Config
	authMode   AuthMode
	userAgent  string

	mu    sync.RWMutex
	token *oauth2.Token
}

// Result is a single search record. ID and FullName are always present in search results, every other backend
// field is kept untouched in Extra.
type Result struct {
	ID       string
	FullName string
	Extra    map[string]any
}

// Results is a slice of Result structure.
type Results []Result
