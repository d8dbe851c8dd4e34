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

//nolint:godot
package config

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/dkorunic/hse-app-search/fetch"
	"github.com/google/uuid"
)

var userAtDomainRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// isValidUserAtDomain checks if the given string is a valid username at domain
// (User@domain.tld).
//
// Parameters:
// - User: the username at domain to validate
//
// Returns:
// - true if the username at domain is valid, false otherwise
func isValidUserAtDomain(user string) bool {
	return userAtDomainRegex.MatchString(user)
}

// isHSEMail checks if the given e-mail belongs to hse.ru or one of its subdomains (edu.hse.ru).
func isHSEMail(mail string) bool {
	_, domain, ok := strings.Cut(strings.ToLower(mail), "@")
	if !ok {
		return false
	}

	return domain == hseDomain || strings.HasSuffix(domain, "."+hseDomain)
}

// isValidClientID checks if the given string is an UUID, which is how mobile app IDs look like.
func isValidClientID(id string) bool {
	_, err := uuid.Parse(id)

	return err == nil
}

// isValidAuthMode checks if the given auth mode is empty (default) or known to the client.
func isValidAuthMode(mode string) bool {
	switch fetch.AuthMode(strings.ToLower(mode)) {
	case "", fetch.AuthModeADFS, fetch.AuthModeDirect:
		return true
	}

	return false
}

// isValidURL checks if the given string is an absolute http or https URL.
//
// Parameters:
// - s: the URL to validate
//
// Returns:
// - true if URL is valid, false otherwise
func isValidURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
