// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/promtui/promtui/pkg/confopt"
	"github.com/promtui/promtui/pkg/scrape"

	"gopkg.in/yaml.v2"
)

// fileConfig is the optional YAML configuration. Values set in the file take
// precedence over command line flags and their defaults.
type fileConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Port          int    `yaml:"port"`
	LogLevel      string `yaml:"log_level"`
	scrape.Config `yaml:",inline"`
}

var rePort = regexp.MustCompile(`:(\d{2,5})/`)

// buildScrapeConfig resolves flags and the optional config file into the
// scraper configuration. The port option rewrites the ':NNNN/' part of the
// endpoint URL.
func buildScrapeConfig(opt *Option) (scrape.Config, error) {
	cfg := scrape.Config{
		Interval: confopt.Duration(time.Duration(opt.Interval) * time.Second),
	}
	cfg.URL = opt.Endpoint
	cfg.Timeout = confopt.Duration(time.Second * 10)

	port := opt.Port

	if opt.ConfFile != "" {
		fileCfg, err := loadConfig(opt.ConfFile)
		if err != nil {
			return scrape.Config{}, err
		}
		if fileCfg.Endpoint != "" {
			cfg.URL = fileCfg.Endpoint
		}
		if fileCfg.Port != 0 {
			port = fileCfg.Port
		}
		if fileCfg.Interval != 0 {
			cfg.Interval = fileCfg.Interval
		}
		if fileCfg.Timeout != 0 {
			cfg.Timeout = fileCfg.Timeout
		}
		if fileCfg.LogLevel != "" {
			opt.LogLevel = fileCfg.LogLevel
		}
		cfg.RequestConfig.Username = fileCfg.RequestConfig.Username
		cfg.RequestConfig.Password = fileCfg.RequestConfig.Password
		cfg.RequestConfig.Headers = fileCfg.RequestConfig.Headers
		cfg.ClientConfig.ProxyURL = fileCfg.ClientConfig.ProxyURL
		cfg.ClientConfig.NotFollowRedirect = fileCfg.ClientConfig.NotFollowRedirect
		cfg.ClientConfig.TLSSkipVerify = fileCfg.ClientConfig.TLSSkipVerify
	}

	if port != 0 {
		cfg.URL = rePort.ReplaceAllString(cfg.URL, fmt.Sprintf(":%d/", port))
	}

	return cfg, nil
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %v", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file '%s': %v", path, err)
	}

	return &cfg, nil
}
