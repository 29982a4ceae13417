// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"github.com/jessevdk/go-flags"
)

// Option defines command line options.
type Option struct {
	Endpoint string `short:"e" long:"endpoint" env:"PROM_ENDPOINT" default:"http://localhost:8080/metrics" description:"prometheus endpoint to scrape"`
	Port     int    `short:"p" long:"port" env:"PROM_PORT" description:"port override for the endpoint URL"`
	Interval int    `short:"i" long:"interval" env:"PROM_SCRAPE_INTERVAL" default:"10" description:"scrape interval in seconds"`
	LogLevel string `short:"l" long:"loglevel" env:"LOG_LEVEL" default:"info" description:"logging level (error, warn, info, debug)"`
	ConfFile string `short:"c" long:"config" description:"config file to read"`
	Version  bool   `short:"v" long:"version" description:"display the version and exit"`
}

// parseOptions returns parsed command-line flags in Option struct.
func parseOptions(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Name = "promtui"
	parser.Usage = "[OPTIONS]"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	return opt, nil
}

func isHelp(err error) bool {
	return flags.WroteHelp(err)
}
