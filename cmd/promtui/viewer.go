// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/promtui/promtui/pkg/browse"
	"github.com/promtui/promtui/pkg/prometheus"
	"github.com/promtui/promtui/pkg/scrape"
)

const redrawEvery = time.Second

// runViewer drives the presentation loop: it redraws the current selection on
// its own cadence and applies navigation commands read from stdin
// (j/k to move, tab to switch pane, q to quit). It observes the scraper only
// through the read surface.
func runViewer(ctx context.Context, cancel context.CancelFunc, scraper *scrape.Scraper) {
	app := browse.New(scraper)

	commands := make(chan string)
	go readCommands(ctx, commands)

	ticker := time.NewTicker(redrawEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-commands:
			switch cmd {
			case "j", "down":
				app.OnDown()
			case "k", "up":
				app.OnUp()
			case "tab", "t":
				app.OnTab()
			case "q", "quit":
				cancel()
				return
			}
		case <-ticker.C:
		}
		app.Sync()
		draw(os.Stdout, app, scraper)
	}
}

func readCommands(ctx context.Context, commands chan<- string) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		select {
		case commands <- strings.TrimSpace(sc.Text()):
		case <-ctx.Done():
			return
		}
	}
}

func draw(w *os.File, app *browse.App, scraper *scrape.Scraper) {
	var b strings.Builder

	b.WriteString("== metrics ==\n")
	for _, name := range scraper.Headers() {
		marker := "  "
		if name == app.SelectedMetric() {
			marker = "> "
		}
		b.WriteString(marker + name + "\n")
	}

	if name := app.SelectedMetric(); name != "" {
		if mx, ok := scraper.Metric(name); ok {
			fmt.Fprintf(&b, "\n%s (%s) %s\n", mx.Details.Name, mx.Details.Type, mx.Details.Help)
			for _, key := range mx.LabelKeys() {
				marker := "  "
				if key == app.SelectedLabel() {
					marker = "> "
				}
				series := mx.Series[key]
				latest := series.Samples[len(series.Samples)-1]
				fmt.Fprintf(&b, "%s%s: %s (%d samples)\n", marker, key, formatSample(latest), len(series.Samples))
			}
		}
	}

	if errMsg := app.LastError(); errMsg != "" {
		fmt.Fprintf(&b, "\nlast error: %s\n", errMsg)
	}

	fmt.Fprint(w, b.String())
}

func formatSample(sample prometheus.Sample) string {
	switch v := sample.(type) {
	case prometheus.GaugeSample:
		return fmt.Sprintf("%g", v.Value)
	case prometheus.CounterSample:
		return fmt.Sprintf("%g", v.Value)
	case prometheus.HistogramSample:
		parts := make([]string, 0, len(v.Buckets))
		for _, b := range v.Buckets {
			parts = append(parts, fmt.Sprintf("le=%s:%d", b.UpperBound, b.CumulativeCount))
		}
		return fmt.Sprintf("buckets[%s] sum=%g count=%d", strings.Join(parts, " "), v.Sum, v.Count)
	case prometheus.SummarySample:
		parts := make([]string, 0, len(v.Quantiles))
		for _, q := range v.Quantiles {
			parts = append(parts, fmt.Sprintf("q%s:%g", q.Name, q.Value))
		}
		return fmt.Sprintf("quantiles[%s] sum=%g count=%d", strings.Join(parts, " "), v.Sum, v.Count)
	default:
		return fmt.Sprintf("%v", sample)
	}
}
