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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
	"github.com/dustin/go-humanize"
	"golang.org/x/oauth2"
)

var (
	ErrNetwork          = errors.New("network error")
	ErrAuthentication   = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated, call Auth() first")
	ErrQuery            = errors.New("query failed")
	ErrInvalidArgument  = errors.New("invalid argument")

	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrMissingLocation  = errors.New("redirect without location")
	ErrMissingCode      = errors.New("could not find authorization code")
	ErrMissingToken     = errors.New("could not find bearer token")
	ErrMissingField     = errors.New("record is missing a required field")
)

// tokenResponse covers both the ADFS token endpoint (access_token) and simpler backends (token).
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// loginClient returns a fresh non-redirecting HTTP client with its own Cookie Jar, sharing the API transport.
func (c *Client) loginClient() (*http.Client, error) {
	// Cookie Jar needed for ADFS MSISAuth cookies between authorize steps
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: c.httpClient.Transport,
		Timeout:   c.httpClient.Timeout,
		Jar:       jar,
		// redirect_uri has a custom scheme which can't be followed, so all redirects are walked manually
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// doADFSLogin goes through ADFS forms authentication, authorization code redirect and code for token exchange.
func (c *Client) doADFSLogin() (*oauth2.Token, error) {
	hc, err := c.loginClient()
	if err != nil {
		return nil, err
	}

	// random browser User-Agent per login dialog
	ua := uarand.GetRandom()

	loc, err := c.postCredentials(hc, ua)
	if err != nil {
		return nil, err
	}

	code, err := c.getAuthCode(hc, ua, loc)
	if err != nil {
		return nil, err
	}

	data := url.Values{
		"code":         {code},
		"client_id":    {c.creds.ClientID},
		"redirect_uri": {c.endpoints.RedirectURI},
		"grant_type":   {"authorization_code"},
	}

	return c.postToken(hc, ua, data)
}

// doDirectLogin posts credentials straight to the token endpoint.
func (c *Client) doDirectLogin() (*oauth2.Token, error) {
	hc, err := c.loginClient()
	if err != nil {
		return nil, err
	}

	data := url.Values{
		"username":  {c.creds.Username},
		"password":  {c.creds.Password},
		"client_id": {c.creds.ClientID},
	}

	return c.postToken(hc, c.userAgent, data)
}

// postCredentials submits the ADFS login form and returns the redirect location carrying client-request-id.
func (c *Client) postCredentials(hc *http.Client, ua string) (*url.URL, error) {
	// POST data struct corresponding to ADFS login form fields
	data := url.Values{
		"UserName":   {c.creds.Username},
		"Password":   {c.creds.Password},
		"AuthMethod": {"FormsAuthentication"},
	}

	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.oauthConf.AuthCodeURL(""),
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.do(hc, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusFound:
		// drain rest of the body
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
	case http.StatusOK:
		// ADFS renders login page again on wrong credentials or client ID
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, loginPageError(resp.Body))
	default:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck

		return nil, fmt.Errorf("%w: %w: %v, check credentials and client ID", ErrAuthentication,
			ErrUnexpectedStatus, resp.StatusCode)
	}

	loc, err := resp.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, ErrMissingLocation)
	}

	return loc, nil
}

// getAuthCode follows the first ADFS redirect and extracts the authorization code from the redirect to the app
// callback, which is never followed.
func (c *Client) getAuthCode(hc *http.Client, ua string, loc *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.do(hc, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// drain rest of the body
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("%w: %w: %v", ErrAuthentication, ErrUnexpectedStatus, resp.StatusCode)
	}

	cb, err := resp.Location()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, ErrMissingLocation)
	}

	code := cb.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, ErrMissingCode)
	}

	return code, nil
}

// postToken posts form data to the token endpoint and decodes the bearer token from the JSON response.
func (c *Client) postToken(hc *http.Client, ua string, data url.Values) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.endpoints.TokenURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", ua)

	resp, err := c.do(hc, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck

		return nil, fmt.Errorf("%w: %w: %v", ErrAuthentication, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrAuthentication, ErrMissingToken, err)
	}

	// TokenType stays empty so SetAuthHeader always sends Bearer
	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}

	if tok.AccessToken == "" {
		tok.AccessToken = tr.Token
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, ErrMissingToken)
	}

	// informational only, tokens are never refreshed
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return tok, nil
}

// getAPI does an authorized GET against the API and returns the raw body.
func (c *Client) getAPI(base string, params url.Values) ([]byte, error) {
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()

	if tok == nil {
		return nil, ErrNotAuthenticated
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	// keep any query already present in a configured endpoint
	if params != nil {
		q := u.Query()
		for k, v := range params {
			q[k] = v
		}

		u.RawQuery = q.Encode()
	}

	c.log.Debug().Msgf("Querying %v with params %v", u.Path, params)

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	tok.SetAuthHeader(req)
	req.Header.Set("Accept-Language", "ru-RU")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck

		return nil, fmt.Errorf("%w: token rejected: %w: %v", ErrAuthentication, ErrUnexpectedStatus,
			resp.StatusCode)
	default:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck

		return nil, fmt.Errorf("%w: %w: %v", ErrQuery, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	c.log.Debug().Msgf("Received %v from %v", humanize.Bytes(uint64(len(body))), u.Path) //nolint:gosec

	return body, nil
}

// do sends req, mapping every transport failure (including cancellation) to ErrNetwork.
func (c *Client) do(hc *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		select {
		case <-c.ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNetwork, c.ctx.Err())
		default:
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}

	return resp, nil
}

// loginPageError extracts error text ADFS places on the re-rendered login page.
func loginPageError(r io.Reader) string {
	const fallback = "login form rejected, check credentials and client ID"

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fallback
	}

	// drain rest of the body
	io.Copy(io.Discard, r) //nolint:errcheck

	msg := strings.TrimSpace(doc.Find("#errorText").First().Text())
	if msg == "" {
		return fallback
	}

	return msg
}
