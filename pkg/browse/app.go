// SPDX-License-Identifier: GPL-3.0-or-later

// Package browse holds the navigation state of the interactive browser: which
// pane has focus and which metric and label-key the cursor is on. Selection is
// positional against the sorted read surface, which is why the surface
// guarantees stable ordering between merges.
package browse

// View is the read-only query surface the navigation state is driven by.
// *scrape.Scraper implements it.
type View interface {
	Headers() []string
	LabelKeys(metric string) []string
	LastError() string
}

// Focus is the pane the cursor moves in.
type Focus int

const (
	FocusHeaders Focus = iota
	FocusLabels
)

// App is the navigation state machine. It is not safe for concurrent use, a
// single presentation loop owns it.
type App struct {
	view View

	focus     Focus
	metricIdx int
	labelIdx  int

	selectedMetric string
	selectedLabel  string
}

// New creates an App focused on the metric headers pane with nothing selected.
func New(view View) *App {
	return &App{view: view, metricIdx: -1, labelIdx: -1}
}

func (a *App) Focus() Focus           { return a.focus }
func (a *App) SelectedMetric() string { return a.selectedMetric }
func (a *App) SelectedLabel() string  { return a.selectedLabel }
func (a *App) LastError() string      { return a.view.LastError() }

// OnTab switches focus between the headers pane and the labels pane.
func (a *App) OnTab() {
	if a.focus == FocusHeaders {
		a.focus = FocusLabels
	} else {
		a.focus = FocusHeaders
	}
}

// OnDown moves the cursor of the focused pane one item down, wrapping around.
func (a *App) OnDown() { a.move(1) }

// OnUp moves the cursor of the focused pane one item up, wrapping around.
func (a *App) OnUp() { a.move(-1) }

// Sync re-reads the surface and repairs the selection after new metrics or
// label-keys appeared, keeping the cursor on a valid position.
func (a *App) Sync() {
	headers := a.view.Headers()
	if len(headers) == 0 {
		a.metricIdx, a.selectedMetric = -1, ""
		a.labelIdx, a.selectedLabel = -1, ""
		return
	}
	if a.metricIdx == -1 {
		a.selectMetric(headers, 0)
		return
	}
	if a.metricIdx >= len(headers) || headers[a.metricIdx] != a.selectedMetric {
		// the sorted list shifted under the cursor, follow the name
		a.selectMetric(headers, indexOf(headers, a.selectedMetric))
	}
}

func (a *App) move(delta int) {
	switch a.focus {
	case FocusHeaders:
		headers := a.view.Headers()
		if len(headers) == 0 {
			return
		}
		a.selectMetric(headers, wrap(a.metricIdx, delta, len(headers)))
	case FocusLabels:
		if a.selectedMetric == "" {
			return
		}
		keys := a.view.LabelKeys(a.selectedMetric)
		if len(keys) == 0 {
			return
		}
		a.labelIdx = wrap(a.labelIdx, delta, len(keys))
		a.selectedLabel = keys[a.labelIdx]
	}
}

// selectMetric moves the metric cursor and, when the selection changed,
// resets the label cursor to the first label-key of the new metric.
func (a *App) selectMetric(headers []string, idx int) {
	next := headers[idx]
	different := next != a.selectedMetric
	a.metricIdx, a.selectedMetric = idx, next

	if !different {
		return
	}
	if keys := a.view.LabelKeys(next); len(keys) > 0 {
		a.labelIdx, a.selectedLabel = 0, keys[0]
	} else {
		a.labelIdx, a.selectedLabel = -1, ""
	}
}

func wrap(idx, delta, length int) int {
	if idx == -1 {
		return 0
	}
	idx += delta
	if idx < 0 {
		return length - 1
	}
	if idx >= length {
		return 0
	}
	return idx
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}
