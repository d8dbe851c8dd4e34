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
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	Timeout            = 60 * time.Second // ADFS can get really slow sometimes
	DefaultSearchCount = 5

	AuthorizeURL = "https://auth.hse.ru/adfs/oauth2/authorize/"
	TokenURL     = "https://auth.hse.ru/adfs/oauth2/token/"
	SearchURL    = "https://api.hseapp.ru/v2/dump/search/"
	EmailURL     = "https://api.hseapp.ru/v2/dump/email/"
	RedirectURI  = "ru.hse.pf://auth.hse.ru/adfs/oauth2/android/ru.hse.pf/callback/"

	AppUA = "HSE App X/1.18.1; release (SM-A515F; Android/11; ru_RU; 1080x2400)" // AppUA mimics the official Android app.
)

// NewClientWithContext creates new *Client from cfg, filling in default endpoints, timeout and User-Agent. Username,
// password and client ID are all required.
func NewClientWithContext(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: username, password and client ID are required", ErrInvalidArgument)
	}

	switch cfg.AuthMode {
	case "":
		cfg.AuthMode = AuthModeADFS
	case AuthModeADFS, AuthModeDirect:
	default:
		return nil, fmt.Errorf("%w: unknown auth mode %q", ErrInvalidArgument, cfg.AuthMode)
	}

	ep := withDefaultEndpoints(cfg.Endpoints)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = Timeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = AppUA
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	c := &Client{
		httpClient: httpClient,
		ctx:        ctx,
		log:        log,
		creds:      cfg.Credentials,
		endpoints:  ep,
		authMode:   cfg.AuthMode,
		userAgent:  ua,
		oauthConf: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: ep.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthorizeURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}

	return c, nil
}

// Auth obtains a fresh bearer token using stored credentials and replaces the current session with it. On failure
// the previous session, if any, is left untouched.
func (c *Client) Auth() error {
	var (
		tok *oauth2.Token
		err error
	)

	switch c.authMode {
	case AuthModeDirect:
		tok, err = c.doDirectLogin()
	default:
		tok, err = c.doADFSLogin()
	}

	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	c.log.Debug().Msgf("Auth success for %v", c.creds.Username)

	return nil
}

// IsAuthenticated reports whether a bearer token has been obtained.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token != nil
}

// Search runs a fuzzy search for query limited to scope, returning at most count results in backend order. Empty
// scope searches all scopes and zero count means DefaultSearchCount.
func (c *Client) Search(query string, scope Scope, count int) (Results, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidArgument)
	}

	types, err := scopeParam(scope)
	if err != nil {
		return nil, err
	}

	switch {
	case count < 0:
		return nil, fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidArgument, count)
	case count == 0:
		count = DefaultSearchCount
	}

	params := url.Values{
		"q":     {query},
		"type":  {types},
		"count": {strconv.Itoa(count)},
	}

	body, err := c.getAPI(c.endpoints.SearchURL, params)
	if err != nil {
		return nil, err
	}

	res, err := decodeResults(body)
	if err != nil {
		return nil, err
	}

	// backend usually honours count, but do not rely on it
	if len(res) > count {
		res = res[:count]
	}

	return res, nil
}

// SearchByEmail fetches the extended record of the person owning the given corporate e-mail.
func (c *Client) SearchByEmail(email string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Result{}, fmt.Errorf("%w: empty e-mail", ErrInvalidArgument)
	}

	body, err := c.getAPI(c.endpoints.EmailURL+url.PathEscape(email), nil)
	if err != nil {
		return Result{}, err
	}

	return decodeResult(body)
}

// CloseConnections closes all connections on its transport.
func (c *Client) CloseConnections() {
	c.httpClient.CloseIdleConnections()
}

// ParseScope converts s to a Scope, accepting an empty string or "all" for all scopes.
func ParseScope(s string) (Scope, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return ScopeAll, nil
	}

	if !slices.Contains(Scopes, Scope(s)) {
		return ScopeAll, fmt.Errorf("%w: type must be one of %v, got %q", ErrInvalidArgument, Scopes, s)
	}

	return Scope(s), nil
}

// scopeParam renders scope as the backend type parameter.
func scopeParam(scope Scope) (string, error) {
	if scope == ScopeAll {
		s := make([]string, 0, len(Scopes))
		for _, x := range Scopes {
			s = append(s, string(x))
		}

		return strings.Join(s, ","), nil
	}

	if !slices.Contains(Scopes, scope) {
		return "", fmt.Errorf("%w: type must be one of %v, got %q", ErrInvalidArgument, Scopes, scope)
	}

	return string(scope), nil
}

func withDefaultEndpoints(ep Endpoints) Endpoints {
	if ep.AuthorizeURL == "" {
		ep.AuthorizeURL = AuthorizeURL
	}

	if ep.TokenURL == "" {
		ep.TokenURL = TokenURL
	}

	if ep.SearchURL == "" {
		ep.SearchURL = SearchURL
	}

	if ep.EmailURL == "" {
		ep.EmailURL = EmailURL
	}

	if !strings.HasSuffix(ep.EmailURL, "/") {
		ep.EmailURL += "/"
	}

	if ep.RedirectURI == "" {
		ep.RedirectURI = RedirectURI
	}

	return ep
}
