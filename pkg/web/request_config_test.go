// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"net/http"
	"testing"
	"time"

	"github.com/promtui/promtui/pkg/confopt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPRequest(t *testing.T) {
	tests := map[string]struct {
		cfg    RequestConfig
		verify func(t *testing.T, req *http.Request)
	}{
		"defaults to GET": {
			cfg: RequestConfig{URL: "http://127.0.0.1:19999/metrics"},
			verify: func(t *testing.T, req *http.Request) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.NotEmpty(t, req.Header.Get("User-Agent"))
			},
		},
		"basic auth": {
			cfg: RequestConfig{URL: "http://127.0.0.1:19999/metrics", Username: "user", Password: "pass"},
			verify: func(t *testing.T, req *http.Request) {
				user, pass, ok := req.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "user", user)
				assert.Equal(t, "pass", pass)
			},
		},
		"custom headers and host": {
			cfg: RequestConfig{
				URL:     "http://127.0.0.1:19999/metrics",
				Headers: map[string]string{"X-Api-Key": "secret", "Host": "example.com"},
			},
			verify: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "secret", req.Header.Get("X-Api-Key"))
				assert.Equal(t, "example.com", req.Host)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := NewHTTPRequest(test.cfg)

			require.NoError(t, err)
			test.verify(t, req)
		})
	}
}

func TestRequestConfigCopy(t *testing.T) {
	orig := RequestConfig{
		URL:     "http://127.0.0.1:19999/metrics",
		Headers: map[string]string{"X-Api-Key": "secret"},
	}

	cp := orig.Copy()
	cp.Headers["X-Api-Key"] = "changed"

	assert.Equal(t, "secret", orig.Headers["X-Api-Key"])
}

func TestNewHTTPClient(t *testing.T) {
	client, err := NewHTTPClient(ClientConfig{
		Timeout:       confopt.Duration(time.Second * 5),
		TLSSkipVerify: true,
	})

	require.NoError(t, err)
	assert.Equal(t, time.Second*5, client.Timeout)
}

func TestNewHTTPClientBadProxy(t *testing.T) {
	_, err := NewHTTPClient(ClientConfig{ProxyURL: "http://\x00bad"})

	assert.Error(t, err)
}
