// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/model/labels"
)

const (
	helpPrefix = "# HELP "
	typePrefix = "# TYPE "
)

// SplitBlocks splits a raw exposition payload into blocks of lines, one block
// per metric family. A block ends on a sample line immediately followed by a
// comment line, or on end of input. Splitting is load-bearing for decoding:
// histogram and summary grouping assumes a block covers exactly one family.
func SplitBlocks(payload []byte) [][]string {
	text := strings.ReplaceAll(string(payload), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var blocks [][]string
	var block []string

	for i, line := range lines {
		if len(block) > 0 &&
			(i+1 == len(lines) || (!strings.HasPrefix(line, "#") && strings.HasPrefix(lines[i+1], "#"))) {
			block = append(block, line)
			blocks = append(blocks, block)
			block = nil
			continue
		}
		block = append(block, line)
	}

	return blocks
}

// DecodeBlock decodes one block of lines describing exactly one metric family
// into a snapshot stamped with the given scrape time. Any malformed line fails
// the whole block, no partial family is returned.
func DecodeBlock(lines []string, ts time.Time) (*Snapshot, error) {
	var docName, docstring, typeName string
	var typ model.MetricType

	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, helpPrefix):
			docName, docstring = splitNameText(line[len(helpPrefix):])
		case strings.HasPrefix(line, typePrefix):
			name, kind := splitNameText(line[len(typePrefix):])
			v, err := parseMetricType(kind)
			if err != nil {
				return nil, err
			}
			typeName, typ = name, v
		case line == "" || strings.HasPrefix(line, "#"):
		default:
			return nil, fmt.Errorf("sample line before TYPE: '%s'", line)
		}
		if typeName != "" {
			i++
			break
		}
	}

	if typeName == "" {
		return nil, fmt.Errorf("no TYPE line in block (%d lines)", len(lines))
	}

	name := docName
	if name == "" {
		name = typeName
	}

	snap := &Snapshot{
		Name:    name,
		Help:    docstring,
		Type:    typ,
		Samples: make(map[string]Sample),
	}

	samples := skipBlank(lines[i:])

	switch typ {
	case model.MetricTypeGauge, model.MetricTypeCounter:
		for _, line := range samples {
			key, _, err := extractLabels(line)
			if err != nil {
				return nil, err
			}
			value, err := extractValue(line)
			if err != nil {
				return nil, err
			}
			if typ == model.MetricTypeGauge {
				snap.Samples[key] = GaugeSample{Timestamp: ts, Value: value}
			} else {
				snap.Samples[key] = CounterSample{Timestamp: ts, Value: value}
			}
		}
	case model.MetricTypeHistogram:
		if err := decodeGroups(snap, samples, ts, true); err != nil {
			return nil, err
		}
	case model.MetricTypeSummary:
		if err := decodeGroups(snap, samples, ts, false); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// decodeGroups decodes the `_count`-terminated line groups of a histogram or
// summary family. A group is zero or more bucket/quantile lines, one `_sum`
// line and one `_count` line; the `_count` line carries the series identity.
func decodeGroups(snap *Snapshot, lines []string, ts time.Time, histogram bool) error {
	groups, err := splitSampleGroups(lines)
	if err != nil {
		return err
	}

	for _, group := range groups {
		if len(group) < 2 {
			return fmt.Errorf("metric '%s': group of %d lines, want at least sum and count", snap.Name, len(group))
		}

		countLine := group[len(group)-1]
		key, _, err := extractLabels(countLine)
		if err != nil {
			return err
		}
		count, err := extractValue(countLine)
		if err != nil {
			return err
		}
		sum, err := extractValue(group[len(group)-2])
		if err != nil {
			return err
		}

		if histogram {
			sample := HistogramSample{Timestamp: ts, Sum: sum, Count: uint64(count)}
			for _, line := range group[:len(group)-2] {
				b, err := extractBound(line, "le")
				if err != nil {
					return err
				}
				v, err := extractValue(line)
				if err != nil {
					return err
				}
				sample.Buckets = append(sample.Buckets, Bucket{UpperBound: b, CumulativeCount: uint64(v)})
			}
			snap.Samples[key] = sample
		} else {
			sample := SummarySample{Timestamp: ts, Sum: sum, Count: uint64(count)}
			for _, line := range group[:len(group)-2] {
				q, err := extractBound(line, "quantile")
				if err != nil {
					return err
				}
				v, err := extractValue(line)
				if err != nil {
					return err
				}
				sample.Quantiles = append(sample.Quantiles, Quantile{Name: q, Value: v})
			}
			snap.Samples[key] = sample
		}
	}

	return nil
}

// splitSampleGroups splits the sample lines of a histogram or summary family
// into per-series groups, each terminated by its `_count` line.
func splitSampleGroups(lines []string) ([][]string, error) {
	var groups [][]string
	var group []string

	for _, line := range lines {
		group = append(group, line)
		if strings.Contains(line, "_count{") || strings.Contains(line, "_count ") {
			groups = append(groups, group)
			group = nil
		}
	}
	if len(group) > 0 {
		return nil, fmt.Errorf("%d trailing lines not terminated by a _count line", len(group))
	}

	return groups, nil
}

// ParseLabels decodes raw label text (the part between '{' and '}') into a
// label set. Malformed pairs are skipped. `a="1",b="2"` decodes to {a:1, b:2}.
func ParseLabels(raw string) labels.Labels {
	var lbls []labels.Label
	for _, pair := range strings.Split(raw, ",") {
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		lbls = append(lbls, labels.Label{Name: name, Value: strings.ReplaceAll(value, `"`, "")})
	}
	return labels.New(lbls...)
}

// extractLabels returns the raw label text of a sample line and whether the
// line had any. The raw text is the series identity; NoLabelsKey otherwise.
// Unbalanced braces are a malformed sample line.
func extractLabels(line string) (string, bool, error) {
	open := strings.IndexByte(line, '{')
	end := strings.IndexByte(line, '}')
	if open == -1 && end == -1 {
		return NoLabelsKey, false, nil
	}
	if open == -1 || end < open {
		return "", false, fmt.Errorf("unbalanced braces on line '%s'", line)
	}
	return line[open+1 : end], true, nil
}

// extractBound returns the value of the grouping label (`le` or `quantile`)
// of a bucket or quantile line.
func extractBound(line, label string) (string, error) {
	raw, ok, err := extractLabels(line)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no '%s' label on line '%s'", label, line)
	}
	if v := ParseLabels(raw).Get(label); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no '%s' label on line '%s'", label, line)
}

func extractValue(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value on empty line")
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable value on line '%s': %v", line, err)
	}
	return v, nil
}

func parseMetricType(s string) (model.MetricType, error) {
	switch typ := model.MetricType(s); typ {
	case model.MetricTypeGauge, model.MetricTypeCounter, model.MetricTypeHistogram, model.MetricTypeSummary:
		return typ, nil
	default:
		return "", fmt.Errorf("invalid metric type '%s'", s)
	}
}

// splitNameText splits "name rest of the text" after a HELP/TYPE prefix.
func splitNameText(s string) (string, string) {
	name, text, _ := strings.Cut(s, " ")
	return name, strings.TrimSpace(text)
}

func skipBlank(lines []string) []string {
	keep := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			keep = append(keep, line)
		}
	}
	return keep
}
