package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

const (
	createPath = "/v1/avatars"
	statusPath = "/v1/avatars/%s"

	// AssetFilename is the name the model is saved and served under
	AssetFilename = "avatar.glb"
	// ContentType is the media type of a binary glTF model
	ContentType = "model/gltf-binary"
)

// Client drives the Ready Player Me avatar API
type Client struct {
	apiURL         string
	apiKey         string
	httpClient     *http.Client
	downloadClient *http.Client
	pollInterval   time.Duration
	pollTimeout    time.Duration
	rateLimiter    *ratelimit.MultiLimiter
	log            *logger.Logger
}

// NewClient creates a new avatar client
func NewClient(cfg config.AvatarConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	download := cfg.DownloadTimeout
	if download <= 0 {
		download = 120 * time.Second
	}

	return &Client{
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		downloadClient: &http.Client{
			Timeout: download,
		},
		pollInterval: interval,
		pollTimeout:  timeout,
		rateLimiter:  limiter,
		log:          log.WithComponent("avatar"),
	}
}

// Configured reports whether the API URL is set
func (c *Client) Configured() bool {
	return c.apiURL != ""
}

// Create submits an avatar job for a public image URL and returns the raw
// response. A rejected request is retried once without the platform query.
func (c *Client) Create(ctx context.Context, imageURL string) ([]byte, error) {
	if err := config.Require(c.apiURL, "avatar.api_url", "READY_PLAYER_ME_API_URL"); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"imageUrl": imageURL})
	if err != nil {
		return nil, err
	}

	status, body, err := c.send(ctx, http.MethodPost, c.apiURL+createPath+"?platform=web", payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		c.log.Debug().Int("status", status).Msg("Create rejected, retrying without platform")
		status, body, err = c.send(ctx, http.MethodPost, c.apiURL+createPath, payload)
		if err != nil {
			return nil, err
		}
	}
	if status >= 400 {
		return nil, fmt.Errorf("create avatar failed (status %d): %s", status, string(body))
	}
	return body, nil
}

// Status fetches the current job document
func (c *Client) Status(ctx context.Context, id string) ([]byte, error) {
	status, body, err := c.send(ctx, http.MethodGet, c.apiURL+fmt.Sprintf(statusPath, id), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("avatar status failed (status %d): %s", status, string(body))
	}
	return body, nil
}

// Resolve creates a job and polls it until it reaches a terminal state.
// The returned job is Ready on success; Failed and TimedOut jobs come back
// with ErrFailed or ErrTimedOut.
func (c *Client) Resolve(ctx context.Context, imageURL string) (*Job, error) {
	body, err := c.Create(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	job := &Job{State: StateCreated}
	id, assetURL := ExtractJob(body)
	switch {
	case assetURL != "":
		job.State, job.AssetURL = StateReady, assetURL
		c.log.Info().Str("url", assetURL).Msg("Create returned a finished model")
		return job, nil
	case id == "":
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedResponse, string(body))
	}

	job.ID = id
	return job, c.poll(ctx, job)
}

// poll advances job from Polling until a terminal state
func (c *Client) poll(ctx context.Context, job *Job) error {
	job.State = StatePolling
	start := time.Now()

	c.log.Info().Str("avatar_id", job.ID).Dur("interval", c.pollInterval).Msg("Polling avatar job")

	for {
		body, err := c.Status(ctx, job.ID)
		if err != nil {
			return err
		}
		job.Polls++
		job.LastStatus = ExtractStatus(body)

		state, assetURL := Evaluate(body)
		switch state {
		case StateReady:
			job.State, job.AssetURL = StateReady, assetURL
			c.log.Info().Str("avatar_id", job.ID).Int("polls", job.Polls).Msg("Avatar ready")
			return nil
		case StateFailed:
			job.State = StateFailed
			return fmt.Errorf("%w: %s", ErrFailed, string(body))
		}

		if time.Since(start) > c.pollTimeout {
			job.State = StateTimedOut
			return fmt.Errorf("%w after %s (last status %q)", ErrTimedOut, c.pollTimeout, job.LastStatus)
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Asset is a downloaded model in a scratch directory. Close removes it.
type Asset struct {
	Path string
	Size int64
	dir  string
}

// Open opens the model file for reading
func (a *Asset) Open() (*os.File, error) {
	return os.Open(a.Path)
}

// Close removes the scratch directory
func (a *Asset) Close() error {
	return os.RemoveAll(a.dir)
}

// Download saves the model at assetURL into a new scratch directory. The
// directory is removed again when the download fails.
func (c *Client) Download(ctx context.Context, assetURL string) (asset *Asset, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	dir, err := os.MkdirTemp("", "rpm_")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dir)
		}
	}()

	path := filepath.Join(dir, AssetFilename)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create model file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	c.log.Debug().Int64("size_bytes", n).Msg("Avatar downloaded")
	return &Asset{Path: path, Size: n, dir: dir}, nil
}

// FromImageURL resolves and downloads the avatar for imageURL
func (c *Client) FromImageURL(ctx context.Context, imageURL string) (*Asset, error) {
	job, err := c.Resolve(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	return c.Download(ctx, job.AssetURL)
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterReadyPlayerMe); err != nil {
		return 0, nil, fmt.Errorf("rate limit error: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
