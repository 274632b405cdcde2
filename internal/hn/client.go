package hn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Hacker News Firebase API root.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

// ErrDecode marks responses that arrived but could not be decoded.
// Errors from Client methods that do not match it are transport or
// status failures.
var ErrDecode = errors.New("hn: decode response")

// FetchError describes one failed API call.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("hn: fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Item carries the raw fields of one API item. Every key except id is
// optional on the wire, so absent keys decode to zero values and the
// caller picks fallbacks.
type Item struct {
	ID          uint64 `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
}

// Client reads the Hacker News JSON API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient returns a client rooted at baseURL. The timeout bounds each
// request end to end; per-call contexts can cut it shorter.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Stories returns the ranked identifier list for the given feed.
func (c *Client) Stories(ctx context.Context, feed Feed) ([]uint64, error) {
	var ids []uint64
	if err := c.getJSON(ctx, feed.endpoint(), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Item returns the raw item for one identifier.
func (c *Client) Item(ctx context.Context, id uint64) (Item, error) {
	var item Item
	if err := c.getJSON(ctx, fmt.Sprintf("item/%d.json", id), &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	url := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	// The API answers "null" for ids that do not resolve to an item.
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return &FetchError{Endpoint: endpoint, Err: fmt.Errorf("%w: null body", ErrDecode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Endpoint: endpoint, Err: fmt.Errorf("%w: %v", ErrDecode, err)}
	}
	return nil
}
