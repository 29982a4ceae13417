// SPDX-License-Identifier: GPL-3.0-or-later

package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/promtui/promtui/logger"
	"github.com/promtui/promtui/pkg/confopt"
	"github.com/promtui/promtui/pkg/prometheus"
	"github.com/promtui/promtui/pkg/web"
)

// Config is the scraper configuration.
type Config struct {
	// Interval is the time between the end of one scrape cycle and the start
	// of the next. A slow endpoint stretches the effective period.
	Interval       confopt.Duration `yaml:"scrape_interval" json:"scrape_interval"`
	web.HTTPConfig `yaml:",inline" json:""`
}

// Scraper periodically fetches, decodes and merges one endpoint's metrics
// into an in-memory history. It is the sole writer; readers observe the
// history and the last-error slot through the same lock.
type Scraper struct {
	*logger.Logger

	interval time.Duration
	client   prometheus.Client

	mux     sync.RWMutex
	history *prometheus.History
	lastErr string
}

// New creates a Scraper and validates the configuration.
func New(cfg Config) (*Scraper, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	httpClient, err := web.NewHTTPClient(cfg.ClientConfig)
	if err != nil {
		return nil, fmt.Errorf("init HTTP client: %v", err)
	}

	return &Scraper{
		Logger:   logger.New().With("endpoint", cfg.URL),
		interval: cfg.Interval.Duration(),
		client:   prometheus.NewClient(httpClient, cfg.RequestConfig),
		history:  prometheus.NewHistory(),
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.URL == "" {
		return errors.New("empty URL")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return fmt.Errorf("malformed URL '%s': %v", cfg.URL, err)
	}
	if cfg.Interval.Duration() <= 0 {
		return fmt.Errorf("non-positive scrape interval (%s)", cfg.Interval)
	}
	return nil
}

// Run drives the fetch-decode-merge loop until ctx is cancelled. Cycles are
// strictly sequential, at most one scrape is ever in flight. The first cycle
// starts immediately, each subsequent one an interval after the previous
// cycle finished.
func (s *Scraper) Run(ctx context.Context) {
	s.Infof("started, scrape interval %s", s.interval)
	defer func() { s.Info("stopped") }()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.runOnce()
		timer.Reset(s.interval)
	}
}

// runOnce performs one scrape cycle. On transport failure the history is left
// untouched and the failure is recorded; a decode failure of one block drops
// that block only. A fully clean cycle clears the error slot.
func (s *Scraper) runOnce() {
	snaps, err := s.client.Scrape(time.Now())

	s.mux.Lock()
	defer s.mux.Unlock()

	for _, snap := range snaps {
		s.history.Merge(snap)
	}

	if err != nil {
		s.lastErr = err.Error()
		s.Warningf("scrape: %v", err)
		return
	}
	s.lastErr = ""
	s.Debugf("scrape: merged %d metric families", len(snaps))
}

// Headers returns all known metric names in stable lexicographic order.
func (s *Scraper) Headers() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.history.Headers()
}

// Metric returns a copy of the accumulated metric family with the given name.
// The copy stays valid after the read section ends.
func (s *Scraper) Metric(name string) (*prometheus.Metric, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	mx, ok := s.history.Get(name)
	if !ok {
		return nil, false
	}
	return mx.Clone(), true
}

// LabelKeys returns the label-keys of the named metric in stable
// lexicographic order.
func (s *Scraper) LabelKeys(name string) []string {
	s.mux.RLock()
	defer s.mux.RUnlock()

	mx, ok := s.history.Get(name)
	if !ok {
		return nil
	}
	return mx.LabelKeys()
}

// LastError returns the failure description of the most recent cycle, or an
// empty string after a clean cycle.
func (s *Scraper) LastError() string {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.lastErr
}
