package gradio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

// ErrNoEvent is returned when a result stream ends without a complete event
var ErrNoEvent = errors.New("gradio stream ended without a result")

// Gradio 5 serves its API under /gradio_api; older Spaces serve it at the root
var apiPrefixes = []string{"/gradio_api", ""}

// FileData references a file previously uploaded to the Space
type FileData struct {
	Path string            `json:"path"`
	URL  string            `json:"url,omitempty"`
	Meta map[string]string `json:"meta"`
}

// NewFileData wraps an uploaded server path
func NewFileData(path string) FileData {
	return FileData{Path: path, Meta: map[string]string{"_type": "gradio.FileData"}}
}

// SpaceURL returns the direct URL of a Hugging Face Space, e.g.
// "stabilityai/TripoSR" on hf.space is https://stabilityai-triposr.hf.space
func SpaceURL(space, host string) string {
	sub := strings.ToLower(space)
	sub = strings.NewReplacer("/", "-", ".", "-", "_", "-").Replace(sub)
	return "https://" + sub + "." + host
}

// Client calls the HTTP API of a single Gradio app
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger

	mu     sync.Mutex
	prefix *string
}

// NewClient creates a client for the Gradio app at baseURL. token, when
// set, is sent as a Hugging Face bearer token.
func NewClient(baseURL, token string, timeout time.Duration, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: limiter,
		log:         log.WithComponent("gradio"),
	}
}

// BaseURL returns the app URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a file to the app and returns a reference usable as a
// Predict argument
func (c *Client) Upload(ctx context.Context, data []byte, filename string) (FileData, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filename)
	if err != nil {
		return FileData{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return FileData{}, err
	}
	if err := w.Close(); err != nil {
		return FileData{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/upload", body.Bytes(), w.FormDataContentType())
	if err != nil {
		return FileData{}, fmt.Errorf("upload failed: %w", err)
	}

	var paths []string
	if err := json.Unmarshal(resp, &paths); err != nil || len(paths) == 0 {
		return FileData{}, fmt.Errorf("unexpected upload response: %s", string(resp))
	}
	return NewFileData(paths[0]), nil
}

// Predict calls the named endpoint with positional args and waits for the
// result. The returned value is the "data" array of the complete event.
func (c *Client) Predict(ctx context.Context, apiName string, args ...interface{}) (gjson.Result, error) {
	apiName = strings.TrimPrefix(apiName, "/")
	if args == nil {
		args = []interface{}{}
	}

	payload, err := json.Marshal(map[string]interface{}{"data": args})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to encode arguments: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/call/"+apiName, payload, "application/json")
	if err != nil {
		return gjson.Result{}, fmt.Errorf("call %s failed: %w", apiName, err)
	}

	eventID := gjson.GetBytes(resp, "event_id").String()
	if eventID == "" {
		return gjson.Result{}, fmt.Errorf("call %s returned no event id: %s", apiName, string(resp))
	}

	c.log.Debug().Str("api", apiName).Str("event_id", eventID).Msg("Waiting for result")

	return c.result(ctx, "/call/"+apiName+"/"+eventID)
}

// result reads the server-sent event stream until complete or error
func (c *Client) result(ctx context.Context, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.apiPrefix()+path, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return gjson.Result{}, fmt.Errorf("gradio error (status %d): %s", resp.StatusCode, string(body))
	}

	return ReadEvents(resp.Body)
}

// ReadEvents scans an event stream and returns the data of the first
// complete event. An error event fails with its data as the message.
func ReadEvents(r io.Reader) (gjson.Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				return gjson.Parse(data), nil
			case "error":
				if data == "" || data == "null" {
					data = "unknown error"
				}
				return gjson.Result{}, fmt.Errorf("gradio app error: %s", data)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read event stream: %w", err)
	}
	return gjson.Result{}, ErrNoEvent
}

// FileURLs collects every downloadable file in a result, in order.
// File objects without a url are resolved against the app.
func (c *Client) FileURLs(output gjson.Result) []string {
	var urls []string
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsArray():
			v.ForEach(func(_, item gjson.Result) bool {
				walk(item)
				return true
			})
		case v.IsObject():
			if u := v.Get("url"); u.Type == gjson.String && u.String() != "" {
				urls = append(urls, u.String())
				return
			}
			if p := v.Get("path"); p.Type == gjson.String && p.String() != "" {
				urls = append(urls, c.baseURL+c.apiPrefix()+"/file="+p.String())
				return
			}
			v.ForEach(func(_, item gjson.Result) bool {
				walk(item)
				return true
			})
		case v.Type == gjson.String:
			s := v.String()
			if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
				urls = append(urls, s)
			}
		}
	}
	walk(output)
	return urls
}

// Download fetches a file produced by the app
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	if strings.HasPrefix(fileURL, c.baseURL) {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded file is empty")
	}
	return data, nil
}

// do sends a request under the API prefix. The first call probes the
// known prefixes and remembers the one that does not 404.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterHuggingFace); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	prefixes := apiPrefixes
	if p, ok := c.knownPrefix(); ok {
		prefixes = []string{p}
	}

	var lastErr error
	for _, prefix := range prefixes {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+prefix+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			lastErr = fmt.Errorf("gradio error (status 404) at %s", prefix+path)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("gradio error (status %d): %s", resp.StatusCode, string(data))
		}

		c.setPrefix(prefix)
		return data, nil
	}
	return nil, lastErr
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) knownPrefix() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prefix == nil {
		return "", false
	}
	return *c.prefix, true
}

func (c *Client) apiPrefix() string {
	if p, ok := c.knownPrefix(); ok {
		return p
	}
	return apiPrefixes[0]
}

func (c *Client) setPrefix(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefix = &p
}
