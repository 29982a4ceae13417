// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/promtui/promtui/logger"
	"github.com/promtui/promtui/pkg/buildinfo"
	"github.com/promtui/promtui/pkg/scrape"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	opt := parseCLI()

	if opt.Version {
		fmt.Printf("promtui, version: %s\n", buildinfo.Version)
		return
	}

	cfg, err := buildScrapeConfig(opt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Level.SetByName(opt.LogLevel)
	log := logger.New()

	scraper, err := scrape.New(cfg)
	if err != nil {
		log.Errorf("init scraper: %v", err)
		os.Exit(1)
	}

	log.Infof("reading metrics from endpoint: %s", cfg.URL)
	log.Infof("scrape interval is: %s", cfg.Interval)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go scraper.Run(ctx)

	runViewer(ctx, cancel, scraper)
}

func parseCLI() *Option {
	opt, err := parseOptions(os.Args[1:])
	if err != nil {
		if isHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	return opt
}
