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
	"errors"
	"fmt"
	"os"

	"github.com/dkorunic/hse-app-search/logger"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

const (
	DefaultConfFile = ".hse-app.toml" // default configuration filename
	DefaultRetries  = 3               // default Auth() attempts on network errors
	DefaultRate     = 2               // default queries per second
	EmailFirst      = "first"         // --email value selecting the first search hit
	envPrefix       = "HSE_APP"
)

var (
	debug, colorLogs, jsonOutput        *bool
	confFile, scopeName, email, outFile *string
	count, rate                         *int
	retries                             *uint
	queries                             []string
)

// parseFlags parses input arguments and flags, also reading HSE_APP_ prefixed environment variables.
func parseFlags() {
	fs := ff.NewFlagSet("hse-app-search")

	debug = fs.Bool('v', "verbose", "enable verbose/debug log level")
	colorLogs = fs.Bool('l', "colorlogs", "enable colorized console logs")
	jsonOutput = fs.Bool('j', "json", "print results as JSON")
	confFile = fs.String('f', "conffile", DefaultConfFile, "configuration file (in TOML)")
	scopeName = fs.String('t', "type", "", "search scope: student, staff, external_staff, auditorium, group, "+
		"course, service (default all)")
	email = fs.String('e', "email", "", "look up a person by e-mail, or \"first\" for the first search hit")
	outFile = fs.String('o', "output", "", "also write JSON results to a file")
	count = fs.Int('n', "count", 0, "maximum results per query (default 5)")
	rate = fs.IntLong("rate", DefaultRate, "maximum queries per second, 0 for unlimited")
	retries = fs.Uint('r', "retries", DefaultRetries, "authentication attempts on network errors")

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix(envPrefix)); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))

		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	queries = fs.GetArgs()

	if len(queries) == 0 && *email == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		logger.Fatal().Msg("Nothing to do: give at least one search query or --email")
	}

	if *retries == 0 {
		*retries = 1
	}
}
