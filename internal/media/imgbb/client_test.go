package imgbb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/pkg/logger"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		if r.FormValue("key") != "secret" {
			t.Errorf("key = %q", r.FormValue("key"))
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "PNGDATA" {
			t.Errorf("image = %q", data)
		}
		w.Write([]byte(`{"data":{"url":"https://i.ibb.co/x/a.png","display_url":"https://ibb.co/x"},"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(config.AvatarConfig{ImgBBKey: "secret", ImgBBURL: srv.URL}, nil, logger.Nop())
	got, err := c.Upload(context.Background(), []byte("PNGDATA"), "a.png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got != "https://i.ibb.co/x/a.png" {
		t.Errorf("Upload() = %q", got)
	}
}

func TestUploadFallsBackToDisplayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"display_url":"https://ibb.co/x"}}`))
	}))
	defer srv.Close()

	c := NewClient(config.AvatarConfig{ImgBBKey: "secret", ImgBBURL: srv.URL}, nil, logger.Nop())
	got, err := c.Upload(context.Background(), []byte("x"), "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got != "https://ibb.co/x" {
		t.Errorf("Upload() = %q", got)
	}
}

func TestUploadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bad") != "" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	unconfigured := NewClient(config.AvatarConfig{ImgBBURL: srv.URL}, nil, logger.Nop())
	var missing *config.MissingError
	if _, err := unconfigured.Upload(context.Background(), []byte("x"), ""); !errors.As(err, &missing) {
		t.Errorf("Expected MissingError, got %v", err)
	}

	noURL := NewClient(config.AvatarConfig{ImgBBKey: "k", ImgBBURL: srv.URL}, nil, logger.Nop())
	if _, err := noURL.Upload(context.Background(), []byte("x"), ""); err == nil {
		t.Error("Expected error when response has no url")
	}

	bad := NewClient(config.AvatarConfig{ImgBBKey: "k", ImgBBURL: srv.URL + "?bad=1"}, nil, logger.Nop())
	if _, err := bad.Upload(context.Background(), []byte("x"), ""); err == nil {
		t.Error("Expected error on 400")
	}
}
