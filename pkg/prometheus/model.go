// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"time"

	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/model/labels"
)

// NoLabelsKey is the series identity used for a metric sample without labels.
const NoLabelsKey = "single-value-with-no-labels"

type (
	// Sample is a single observation of one label combination of one metric.
	// It is a closed set: GaugeSample, CounterSample, HistogramSample, SummarySample.
	Sample interface {
		// Time returns the scrape time of the observation.
		Time() time.Time

		isSample()
	}

	// GaugeSample is an instantaneous value, it may rise or fall.
	GaugeSample struct {
		Timestamp time.Time
		Value     float64
	}

	// CounterSample is a monotonic value. Monotonicity is not enforced,
	// the decoder only tags the kind.
	CounterSample struct {
		Timestamp time.Time
		Value     float64
	}

	// HistogramSample is a set of cumulative buckets with a sum and a count.
	HistogramSample struct {
		Timestamp time.Time
		Buckets   []Bucket
		Sum       float64
		Count     uint64
	}

	// SummarySample is a set of quantiles with a sum and a count.
	SummarySample struct {
		Timestamp time.Time
		Quantiles []Quantile
		Sum       float64
		Count     uint64
	}
)

// Bucket is a (upper bound, cumulative count) pair of a histogram sample.
// The upper bound is kept as text, "+Inf" denotes the unbounded top bucket.
type Bucket struct {
	UpperBound      string
	CumulativeCount uint64
}

// Quantile is a (quantile designator, value) pair of a summary sample.
type Quantile struct {
	Name  string
	Value float64
}

func (s GaugeSample) Time() time.Time     { return s.Timestamp }
func (s CounterSample) Time() time.Time   { return s.Timestamp }
func (s HistogramSample) Time() time.Time { return s.Timestamp }
func (s SummarySample) Time() time.Time   { return s.Timestamp }

func (GaugeSample) isSample()     {}
func (CounterSample) isSample()   {}
func (HistogramSample) isSample() {}
func (SummarySample) isSample()   {}

// TimeSeries is the sample sequence of one label combination, oldest first.
// All samples share the variant of the owning metric's declared kind.
type TimeSeries struct {
	Labels  labels.Labels
	Samples []Sample
}

// MetricDetails is the identity of a metric family: name, docstring and
// declared kind. Fixed on first sight, never updated by later scrapes.
type MetricDetails struct {
	Name string
	Help string
	Type model.MetricType
}

// Metric is an accumulated metric family: its details plus one TimeSeries
// per label combination, keyed by the raw label text (or NoLabelsKey).
// Series are created lazily and never removed.
type Metric struct {
	Details MetricDetails
	Series  map[string]*TimeSeries
}

// Snapshot is the decoded result of one scrape for one metric family.
// Samples are keyed by the raw label text (or NoLabelsKey).
type Snapshot struct {
	Name    string
	Help    string
	Type    model.MetricType
	Samples map[string]Sample
}
