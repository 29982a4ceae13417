// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"sort"
)

// History accumulates metric families across scrapes. It is not safe for
// concurrent use, callers serialize access (see pkg/scrape).
type History struct {
	metrics map[string]*Metric
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{metrics: make(map[string]*Metric)}
}

// Merge applies one decoded snapshot. The metric family is created on first
// sight with its declared kind and docstring fixed; a different kind reported
// by a later scrape is ignored and samples keep accumulating as originally
// declared. Each sample is appended to its series, series are created lazily.
func (h *History) Merge(snap *Snapshot) {
	mx, ok := h.metrics[snap.Name]
	if !ok {
		mx = &Metric{
			Details: MetricDetails{Name: snap.Name, Help: snap.Help, Type: snap.Type},
			Series:  make(map[string]*TimeSeries),
		}
		h.metrics[snap.Name] = mx
	}

	for key, sample := range snap.Samples {
		if series, ok := mx.Series[key]; ok {
			series.Samples = append(series.Samples, sample)
			continue
		}
		mx.Series[key] = newTimeSeries(key, sample)
	}
}

// Headers returns all known metric names in lexicographic order.
// Repeated calls with no intervening merge return identical sequences.
func (h *History) Headers() []string {
	headers := make([]string, 0, len(h.metrics))
	for name := range h.metrics {
		headers = append(headers, name)
	}
	sort.Strings(headers)
	return headers
}

// Get returns the accumulated metric family with the given name.
func (h *History) Get(name string) (*Metric, bool) {
	mx, ok := h.metrics[name]
	return mx, ok
}

// Len returns the number of known metric families.
func (h *History) Len() int {
	return len(h.metrics)
}

// LabelKeys returns the label-keys of all series in lexicographic order.
func (m *Metric) LabelKeys() []string {
	keys := make([]string, 0, len(m.Series))
	for key := range m.Series {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the metric. Samples are immutable once
// appended, so the sample slice contents are shared.
func (m *Metric) Clone() *Metric {
	series := make(map[string]*TimeSeries, len(m.Series))
	for key, ts := range m.Series {
		series[key] = &TimeSeries{
			Labels:  ts.Labels.Copy(),
			Samples: append([]Sample(nil), ts.Samples...),
		}
	}
	return &Metric{Details: m.Details, Series: series}
}

func newTimeSeries(key string, sample Sample) *TimeSeries {
	ts := &TimeSeries{Samples: []Sample{sample}}
	if key != NoLabelsKey {
		ts.Labels = ParseLabels(key)
	}
	return ts
}
