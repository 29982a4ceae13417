// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/promtui/promtui/pkg/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient404(t *testing.T) {
	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	client := NewClient(http.DefaultClient, web.RequestConfig{URL: srv.URL + "/metrics"})
	snaps, err := client.Scrape(time.Now())

	assert.Error(t, err)
	assert.Nil(t, snaps)
}

func TestClientPlain(t *testing.T) {
	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(dataAllTypes)
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	client := NewClient(http.DefaultClient, web.RequestConfig{URL: srv.URL + "/metrics"})
	snaps, err := client.Scrape(time.Now())

	require.NoError(t, err)
	verifyAllTypes(t, snaps)
}

func TestClientGzip(t *testing.T) {
	tsMux := http.NewServeMux()
	tsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(200)
		gz := new(bytes.Buffer)
		ww := gzip.NewWriter(gz)
		_, _ = ww.Write(dataAllTypes)
		_ = ww.Close()
		_, _ = gz.WriteTo(w)
	})
	srv := httptest.NewServer(tsMux)
	defer srv.Close()

	client := NewClient(http.DefaultClient, web.RequestConfig{URL: srv.URL + "/metrics"})

	for i := 0; i < 2; i++ {
		snaps, err := client.Scrape(time.Now())
		require.NoError(t, err)
		verifyAllTypes(t, snaps)
	}
}

func TestClientReadFromFile(t *testing.T) {
	client := NewClient(http.DefaultClient, web.RequestConfig{URL: "file://testdata/all-types.txt"})

	for i := 0; i < 2; i++ {
		snaps, err := client.Scrape(time.Now())
		require.NoError(t, err)
		verifyAllTypes(t, snaps)
	}
}

func TestClientPartialDecodeFailure(t *testing.T) {
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

	client := NewClient(http.DefaultClient, web.RequestConfig{URL: srv.URL + "/metrics"})
	snaps, err := client.Scrape(time.Now())

	// the well-formed block survives, the failure is reported
	assert.Error(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "good", snaps[0].Name)
}

func verifyAllTypes(t *testing.T, snaps []*Snapshot) {
	t.Helper()

	require.Len(t, snaps, 5)

	names := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		names = append(names, snap.Name)
	}
	want := []string{
		"test_gauge_metric_1",
		"test_counter_metric_1",
		"incoming_requests",
		"response_time",
		"rpc_duration_seconds",
	}
	assert.Equal(t, want, names)
}
