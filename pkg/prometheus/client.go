// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/promtui/promtui/pkg/web"
)

const acceptHeader = `text/plain;version=0.0.4;q=1,*/*;q=0.1`

type (
	// Client fetches and decodes prometheus format metrics.
	Client interface {
		// Fetch returns one raw exposition payload. The returned bytes are
		// valid until the next Fetch call.
		Fetch() ([]byte, error)
		// Scrape fetches one payload and decodes it block by block. Snapshots
		// of well-formed blocks are returned even when sibling blocks fail,
		// the error describes every failed block.
		Scrape(ts time.Time) ([]*Snapshot, error)
		HTTPClient() *http.Client
	}

	client struct {
		httpClient *http.Client
		request    web.RequestConfig
		filepath   string

		buf     *bytes.Buffer
		gzipr   *gzip.Reader
		bodyBuf *bufio.Reader
	}
)

// NewClient creates a Client. A file:// URL reads the payload from disk
// instead of the network.
func NewClient(httpClient *http.Client, request web.RequestConfig) Client {
	c := &client{
		httpClient: httpClient,
		request:    request,
		buf:        bytes.NewBuffer(make([]byte, 0, 16000)),
	}

	if v, err := url.Parse(request.URL); err == nil && v.Scheme == "file" {
		c.filepath = filepath.Join(v.Host, v.Path)
	}

	return c
}

func (c *client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *client) Fetch() ([]byte, error) {
	c.buf.Reset()

	if err := c.fetch(c.buf); err != nil {
		return nil, err
	}

	return c.buf.Bytes(), nil
}

func (c *client) Scrape(ts time.Time) ([]*Snapshot, error) {
	payload, err := c.Fetch()
	if err != nil {
		return nil, err
	}

	var snaps []*Snapshot
	var errs []error

	for _, block := range SplitBlocks(payload) {
		snap, err := DecodeBlock(block, ts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		snaps = append(snaps, snap)
	}

	return snaps, joinErrors(errs)
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func (c *client) fetch(w io.Writer) error {
	if c.filepath != "" {
		f, err := os.Open(c.filepath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		_, err = io.Copy(w, f)

		return err
	}

	req, err := web.NewHTTPRequest(c.request)
	if err != nil {
		return err
	}

	req.Header.Add("Accept", acceptHeader)
	req.Header.Add("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer web.CloseBody(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server '%s' returned HTTP status code %d (%s)", req.URL, resp.StatusCode, resp.Status)
	}

	if resp.Header.Get("Content-Encoding") != "gzip" {
		_, err = io.Copy(w, resp.Body)
		return err
	}

	if c.gzipr == nil {
		c.bodyBuf = bufio.NewReader(resp.Body)
		c.gzipr, err = gzip.NewReader(c.bodyBuf)
		if err != nil {
			return err
		}
	} else {
		c.bodyBuf.Reset(resp.Body)
		_ = c.gzipr.Reset(c.bodyBuf)
	}

	_, err = io.Copy(w, c.gzipr)
	_ = c.gzipr.Close()

	return err
}
