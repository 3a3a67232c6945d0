package imgbb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/pkg/logger"
	"github.com/trendfarm/pkg/ratelimit"
)

const defaultUploadURL = "https://api.imgbb.com/1/upload"

// Client uploads images to imgbb to obtain a public URL
type Client struct {
	apiKey      string
	uploadURL   string
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewClient creates a new imgbb client
func NewClient(cfg config.AvatarConfig, limiter *ratelimit.MultiLimiter, log *logger.Logger) *Client {
	uploadURL := cfg.ImgBBURL
	if uploadURL == "" {
		uploadURL = defaultUploadURL
	}
	return &Client{
		apiKey:    cfg.ImgBBKey,
		uploadURL: uploadURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter,
		log:         log.WithComponent("imgbb"),
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Upload posts the image and returns its public URL
func (c *Client) Upload(ctx context.Context, image []byte, filename string) (string, error) {
	if err := config.Require(c.apiKey, "avatar.imgbb_key", "IMGBB_API_KEY"); err != nil {
		return "", err
	}
	if filename == "" {
		filename = "upload.png"
	}

	if err := c.rateLimiter.Wait(ctx, ratelimit.LimiterImgBB); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("key", c.apiKey); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	c.log.Debug().Int("size_bytes", len(image)).Msg("Uploading image")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("imgbb error (status %d): %s", resp.StatusCode, string(data))
	}

	parsed := gjson.ParseBytes(data)
	imageURL := parsed.Get("data.url").String()
	if imageURL == "" {
		imageURL = parsed.Get("data.display_url").String()
	}
	if imageURL == "" {
		return "", fmt.Errorf("imgbb did not return an image url: %s", string(data))
	}

	c.log.Info().Str("url", imageURL).Msg("Image uploaded")
	return imageURL, nil
}
