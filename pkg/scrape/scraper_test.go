// SPDX-License-Identifier: GPL-3.0-or-later

package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/promtui/promtui/pkg/confopt"

	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = `# HELP m Desc
# TYPE m gauge
m{shard="0"} 10.5
`

const testPayloadNext = `# HELP m Desc
# TYPE m gauge
m{shard="0"} 11.0
`

func TestNewValidatesConfig(t *testing.T) {
	tests := map[string]Config{
		"empty URL":     testConfig("", time.Second),
		"zero interval": testConfig("http://127.0.0.1:38001/metrics", 0),
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			scraper, err := New(cfg)

			assert.Error(t, err)
			assert.Nil(t, scraper)
		})
	}
}

func TestScraperCycle(t *testing.T) {
	var fail atomic.Bool
	var payload atomic.Value
	payload.Store(testPayload)

	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(payload.Load().(string)))
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	scraper := newTestScraper(t, srv.URL+"/metrics")

	// first cycle populates the history
	scraper.runOnce()

	assert.Equal(t, []string{"m"}, scraper.Headers())
	assert.Empty(t, scraper.LastError())

	mx, ok := scraper.Metric("m")
	require.True(t, ok)
	assert.Equal(t, model.MetricTypeGauge, mx.Details.Type)
	require.Len(t, mx.Series[`shard="0"`].Samples, 1)

	// second cycle appends to the existing series
	payload.Store(testPayloadNext)
	scraper.runOnce()

	mx, ok = scraper.Metric("m")
	require.True(t, ok)
	assert.Len(t, mx.Series[`shard="0"`].Samples, 2)

	// transport failure records the error and leaves the history untouched
	fail.Store(true)
	scraper.runOnce()

	assert.NotEmpty(t, scraper.LastError())
	assert.Equal(t, []string{"m"}, scraper.Headers())
	mx, ok = scraper.Metric("m")
	require.True(t, ok)
	assert.Len(t, mx.Series[`shard="0"`].Samples, 2)

	// a clean cycle clears the error slot
	fail.Store(false)
	scraper.runOnce()

	assert.Empty(t, scraper.LastError())
	mx, ok = scraper.Metric("m")
	require.True(t, ok)
	assert.Len(t, mx.Series[`shard="0"`].Samples, 3)
}

func TestScraperDecodeFailureKeepsGoodBlocks(t *testing.T) {
	payload := `# HELP good Good metric
# TYPE good gauge
good 1
# HELP bad Bad metric
# TYPE bad weird
bad 1
`
	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	scraper := newTestScraper(t, srv.URL+"/metrics")
	scraper.runOnce()

	assert.Equal(t, []string{"good"}, scraper.Headers())
	assert.Contains(t, scraper.LastError(), "invalid metric type")
}

func TestScraperRunStopsOnCancel(t *testing.T) {
	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testPayload))
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	scraper := newTestScraper(t, srv.URL+"/metrics")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scraper.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(scraper.Headers()) == 1
	}, time.Second*5, time.Millisecond*10)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second * 5):
		t.Fatal("scraper did not stop on context cancellation")
	}
}

func TestScraperConcurrentReads(t *testing.T) {
	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testPayload))
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	scraper := newTestScraper(t, srv.URL+"/metrics")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scraper.Run(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = scraper.Headers()
			_, _ = scraper.Metric("m")
			_ = scraper.LabelKeys("m")
			_ = scraper.LastError()
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second * 10):
		t.Fatal("readers did not finish")
	}
}

func newTestScraper(t *testing.T, url string) *Scraper {
	t.Helper()

	scraper, err := New(testConfig(url, time.Millisecond*10))
	require.NoError(t, err)

	return scraper
}

func testConfig(url string, interval time.Duration) Config {
	var cfg Config
	cfg.URL = url
	cfg.Timeout = confopt.Duration(time.Second * 5)
	cfg.Interval = confopt.Duration(interval)
	return cfg
}
