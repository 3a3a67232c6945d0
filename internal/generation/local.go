package generation

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/trendfarm/internal/config"
)

// LocalTripoSR forwards an image to a self-hosted TripoSR HTTP endpoint
type LocalTripoSR struct {
	url        string
	httpClient *http.Client
}

// NewLocalTripoSR creates a forwarder for cfg.LocalTripoSRURL
func NewLocalTripoSR(cfg config.GenerationConfig) *LocalTripoSR {
	return &LocalTripoSR{
		url:        cfg.LocalTripoSRURL,
		httpClient: &http.Client{Timeout: cfg.TransferTimeout},
	}
}

// Generate posts image as the multipart field "image" and returns the
// GLB the endpoint answers with
func (l *LocalTripoSR) Generate(ctx context.Context, image []byte, filename string) ([]byte, error) {
	if err := config.Require(l.url, "generation.local_triposr_url", "LOCAL_TRIPOSR_URL"); err != nil {
		return nil, err
	}
	if filename == "" {
		filename = "image.png"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to process image (status %d)", resp.StatusCode)
	}
	return data, nil
}
