// Package remote implements the HTTP content fetcher for a remote log
// server exposing a directory-listing endpoint.
package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/embertail-io/embertail/internal/models"
)

// CategoryProfiler selects the profiler-specific listing endpoint.
const CategoryProfiler = "profiler"

// Options tunes the HTTP transport. Loaded from EMBERTAIL_* environment
// variables so operators can adjust timeouts without touching profiles.
type Options struct {
	Timeout            time.Duration `default:"15s"`
	ErrorLimit         int           `split_words:"true" default:"5"`
	InsecureSkipVerify bool          `split_words:"true"`
}

// Client fetches listing documents and log content over HTTP.
type Client struct {
	httpClient *http.Client
	errorLimit int
	errorCount atomic.Int64
}

// NewClient creates a client with options from the environment.
func NewClient() (*Client, error) {
	var opts Options
	if err := envconfig.Process("embertail", &opts); err != nil {
		return nil, fmt.Errorf("read transport options: %w", err)
	}
	return NewClientWithOptions(opts), nil
}

// NewClientWithOptions creates a client with explicit options.
func NewClientWithOptions(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.ErrorLimit <= 0 {
		opts.ErrorLimit = 5
	}
	transport := http.DefaultTransport
	if opts.InsecureSkipVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: transport},
		errorLimit: opts.ErrorLimit,
	}
}

// ErrorCount returns the rolling fetch error count.
func (c *Client) ErrorCount() int { return int(c.errorCount.Load()) }

// ResetErrorCount clears the rolling fetch error count.
func (c *Client) ResetErrorCount() { c.errorCount.Store(0) }

// ErrorLimit returns the configured error budget.
func (c *Client) ErrorLimit() int { return c.errorLimit }

// FetchList retrieves the listing document for the profile. An empty
// category fetches the main log listing; CategoryProfiler fetches the
// profiler CSV listing.
func (c *Client) FetchList(ctx context.Context, profile *models.Profile, category string) (string, error) {
	url := baseURL(profile) + "/logs/"
	if category != "" {
		url += category + "/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create listing request: %w", err)
	}
	c.setAuth(req, profile)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.errorCount.Add(1)
		return "", fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.errorCount.Add(1)
		return "", fmt.Errorf("listing returned %d for %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.errorCount.Add(1)
		return "", fmt.Errorf("read listing: %w", err)
	}
	return string(body), nil
}

// FetchContent retrieves bytes past the descriptor's watermark. A ranged
// request is used when the watermark is positive; the descriptor itself
// is not modified.
func (c *Client) FetchContent(ctx context.Context, profile *models.Profile, d *models.LogDescriptor) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL(profile, d), nil)
	if err != nil {
		return nil, fmt.Errorf("create content request: %w", err)
	}
	c.setAuth(req, profile)
	if d.Offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", d.Offset))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.errorCount.Add(1)
		return nil, fmt.Errorf("fetch %s: %w", d.Name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.errorCount.Add(1)
			return nil, fmt.Errorf("read %s: %w", d.Name, err)
		}
		return body, nil
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.errorCount.Add(1)
			return nil, fmt.Errorf("read %s: %w", d.Name, err)
		}
		// Server (or a proxy) ignored the Range header: drop the prefix
		// already seen so nothing is emitted twice.
		if d.Offset > 0 {
			if int64(len(body)) <= d.Offset {
				return nil, nil
			}
			return body[d.Offset:], nil
		}
		return body, nil
	case http.StatusRequestedRangeNotSatisfiable:
		// Nothing new past the watermark.
		return nil, nil
	default:
		c.errorCount.Add(1)
		return nil, fmt.Errorf("fetch %s returned %d", d.Name, resp.StatusCode)
	}
}

// ProbeSize returns the current remote size of the log without fetching
// its content.
func (c *Client) ProbeSize(ctx context.Context, profile *models.Profile, d *models.LogDescriptor) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, contentURL(profile, d), nil)
	if err != nil {
		return 0, fmt.Errorf("create probe request: %w", err)
	}
	c.setAuth(req, profile)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.errorCount.Add(1)
		return 0, fmt.Errorf("probe %s: %w", d.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.errorCount.Add(1)
		return 0, fmt.Errorf("probe %s returned %d", d.Name, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("probe %s: no Content-Length in response", d.Name)
	}
	return resp.ContentLength, nil
}

// Authorize exchanges the profile's credentials for a fresh token and
// stores it on the profile. This is the only profile field the client
// writes.
func (c *Client) Authorize(ctx context.Context, profile *models.Profile) error {
	payload, err := json.Marshal(map[string]string{
		"username": profile.Username,
		"password": profile.Password,
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	url := baseURL(profile) + "/auth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authorize against %s: %w", profile.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authorization returned %d for %s", resp.StatusCode, profile.Host)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if body.Token == "" {
		return fmt.Errorf("authorization for %s returned an empty token", profile.Host)
	}
	profile.Token = body.Token
	return nil
}

func (c *Client) setAuth(req *http.Request, profile *models.Profile) {
	if profile.Token != "" {
		req.Header.Set("Authorization", "Bearer "+profile.Token)
	}
}

func baseURL(profile *models.Profile) string {
	if strings.Contains(profile.Host, "://") {
		return strings.TrimRight(profile.Host, "/")
	}
	return "https://" + strings.TrimRight(profile.Host, "/")
}

func contentURL(profile *models.Profile, d *models.LogDescriptor) string {
	if strings.HasSuffix(d.Name, ".csv") {
		return baseURL(profile) + "/logs/" + CategoryProfiler + "/" + d.Name
	}
	return baseURL(profile) + "/logs/" + d.Name
}
