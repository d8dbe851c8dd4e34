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
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dkorunic/hse-app-search/config"
	"github.com/dkorunic/hse-app-search/fetch"
	"github.com/dkorunic/hse-app-search/logger"
	"github.com/dkorunic/hse-app-search/version"
	"github.com/hako/durafmt"
	"go.uber.org/ratelimit"
)

var (
	exitWithError atomic.Bool
	GitTag        = ""
	GitCommit     = ""
	GitDirty      = ""
	BuildTime     = ""
)

// fatalIfErrors checks if any errors were encountered during the run.
//
// If exitWithError is set, it logs a fatal message and exits with an exit code of 1. Otherwise it logs an info
// message and returns normally.
func fatalIfErrors(start time.Time) {
	elapsed := durafmt.Parse(time.Since(start).Round(time.Millisecond)).String()

	if exitWithError.Load() {
		logger.Fatal().Msgf("Exiting after %v, during run some errors were encountered.", elapsed)
	}

	logger.Info().Msgf("Exiting with a success after %v.", elapsed)
}

// main is the entry point of the application.
//
// It parses flags, sets the global log level, sets up a context with signal integration, loads the TOML config,
// logs in to the HSE App backend, runs every search query, optionally looks up a person by e-mail and prints
// or saves the results.
func main() {
	start := time.Now()

	parseFlags()

	initLog()

	if GitTag == "" {
		GitTag = version.MainVersion()
	}

	logger.Info().Msgf("hse-app-search %v %v%v, built on %v, with %v", GitTag, GitCommit, GitDirty,
		BuildTime, runtime.Version())
	logger.Debug().Msgf("Using %v", version.ReadVersion("golang.org/x/oauth2"))

	scope, err := fetch.ParseScope(*scopeName)
	if err != nil {
		logger.Fatal().Msgf("Error parsing search type: %v", err)
	}

	// context with signal integration
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// load TOML config
	cfg, err := config.LoadConfig(*confFile)
	if err != nil {
		logger.Fatal().Msgf("Error loading configuration: %v", err)
	}

	clientConf := cfg.ClientConfig()
	clientConf.Logger = &logger.Logger

	client, err := fetch.NewClientWithContext(ctx, clientConf)
	if err != nil {
		logger.Fatal().Msgf("Error creating client: %v", err)
	}
	defer client.CloseConnections()

	if err := authWithRetry(ctx, client, *retries); err != nil {
		logger.Fatal().Msgf("Error authenticating as %v: %v", cfg.User.Username, err)
	}

	logger.Info().Msgf("Authenticated as %v", cfg.User.Username)

	rl := ratelimit.NewUnlimited()
	if *rate > 0 {
		rl = ratelimit.New(*rate)
	}

	var rep report

	rep.Queries, err = runQueries(ctx, client, rl, queries, scope, *count)
	if err != nil {
		exitWithError.Store(true)
	}

	if *email != "" {
		rl.Take()

		rep.Email, err = lookupEmail(client, *email, rep.Queries)
		if err != nil {
			logger.Error().Msgf("Error looking up e-mail %v: %v", *email, err)
			exitWithError.Store(true)
		}
	}

	if err := writeReport(os.Stdout, rep, *jsonOutput); err != nil {
		logger.Error().Msgf("Error writing results: %v", err)
		exitWithError.Store(true)
	}

	if *outFile != "" {
		if err := saveReport(*outFile, rep); err != nil {
			logger.Error().Msgf("Error saving results to %v: %v", *outFile, err)
			exitWithError.Store(true)
		} else {
			logger.Info().Msgf("Results saved to %v", *outFile)
		}
	}

	fatalIfErrors(start)
}
