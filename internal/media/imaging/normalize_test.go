package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeDownscales(t *testing.T) {
	out, info, err := Normalize(encodeJPEG(t, 400, 200), 100)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if info.Format != "jpeg" || !info.Resized {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Width != 100 || info.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", info.Width, info.Height)
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("decoded size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	_, info, err := Normalize(encodeJPEG(t, 64, 32), 1024)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if info.Resized || info.Width != 64 || info.Height != 32 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, _, err := Normalize([]byte("definitely not an image"), 100)
	if !errors.Is(err, ErrUndecodable) {
		t.Errorf("Expected ErrUndecodable, got %v", err)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{2000, 1000, 1024, 1024, 512},
		{1000, 2000, 1024, 512, 1024},
		{500, 500, 1024, 500, 500},
		{5000, 1, 100, 100, 1},
		{800, 600, 0, 800, 600},
	}
	for _, tt := range tests {
		gotW, gotH := fit(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fit(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}
