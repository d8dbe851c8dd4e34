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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/avast/retry-go/v5"
	"github.com/dkorunic/hse-app-search/fetch"
	"github.com/dkorunic/hse-app-search/format"
	"github.com/dkorunic/hse-app-search/logger"
	"github.com/google/renameio/v2/maybe"
	"go.uber.org/ratelimit"
)

var (
	ErrNoHits  = errors.New("no search hits to take an e-mail from")
	ErrNoEmail = errors.New("first search hit has no e-mail")
)

// searcher is the part of fetch.Client the query runner depends on.
type searcher interface {
	Search(query string, scope fetch.Scope, count int) (fetch.Results, error)
	SearchByEmail(email string) (fetch.Result, error)
}

// authenticator is the part of fetch.Client used for logging in.
type authenticator interface {
	Auth() error
}

type queryResult struct {
	Query   string        `json:"query"`
	Results fetch.Results `json:"results"`
}

// report is everything a single run produced.
type report struct {
	Queries []queryResult `json:"queries"`
	Email   *fetch.Result `json:"email,omitempty"`
}

// authWithRetry logs in, retrying only on network errors. Rejected credentials are never retried.
func authWithRetry(ctx context.Context, c authenticator, attempts uint) error {
	return retry.New(
		retry.Attempts(attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, fetch.ErrNetwork)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Msgf("Authentication attempt %v failed, retrying: %v", n+1, err)
		}),
	).Do(
		func() error {
			return c.Auth()
		},
	)
}

// runQueries runs all queries in order, paced by rl. A failed query is logged and skipped, and all errors are
// returned joined together once every query was tried.
func runQueries(ctx context.Context, c searcher, rl ratelimit.Limiter, qs []string, scope fetch.Scope,
	n int,
) ([]queryResult, error) {
	out := make([]queryResult, 0, len(qs))

	var errs []error

	for _, q := range qs {
		select {
		case <-ctx.Done():
			return out, errors.Join(append(errs, ctx.Err())...)
		default:
		}

		rl.Take()

		res, err := c.Search(q, scope, n)
		if err != nil {
			logger.Error().Msgf("Error searching for %q: %v", q, err)

			errs = append(errs, fmt.Errorf("%q: %w", q, err))

			continue
		}

		logger.Debug().Msgf("Search for %q returned %v result(s)", q, len(res))

		out = append(out, queryResult{Query: q, Results: res})
	}

	return out, errors.Join(errs...)
}

// lookupEmail fetches the extended record for addr. When addr is "first", the e-mail of the first hit of the first
// query is used.
func lookupEmail(c searcher, addr string, qr []queryResult) (*fetch.Result, error) {
	if strings.EqualFold(addr, EmailFirst) {
		if len(qr) == 0 || len(qr[0].Results) == 0 {
			return nil, ErrNoHits
		}

		first := qr[0].Results[0]

		addr = first.Email()
		if addr == "" {
			return nil, fmt.Errorf("%w: %v", ErrNoEmail, first.ID)
		}
	}

	r, err := c.SearchByEmail(addr)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// writeReport prints the report as plain text or JSON.
func writeReport(w io.Writer, rep report, asJSON bool) error {
	if asJSON {
		b, err := format.JSON(rep)
		if err != nil {
			return err
		}

		_, err = w.Write(b)

		return err
	}

	var sb strings.Builder

	for i, q := range rep.Queries {
		if i > 0 {
			sb.WriteString(format.Delimiter)
		}

		sb.WriteString(format.PlainResults(q.Query, q.Results))
	}

	if rep.Email != nil {
		if sb.Len() > 0 {
			sb.WriteString(format.Delimiter)
		}

		sb.WriteString(format.PlainResult(*rep.Email))
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// saveReport atomically writes the report as JSON to path.
func saveReport(path string, rep report) error {
	b, err := format.JSON(rep)
	if err != nil {
		return err
	}

	return maybe.WriteFile(path, b, 0o600)
}
