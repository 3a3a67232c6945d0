package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable is returned for input that is not a supported image
var ErrUndecodable = errors.New("unsupported or corrupt image")

// Info describes a normalized image
type Info struct {
	Format         string `json:"format"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	Resized        bool   `json:"resized"`
}

// Normalize decodes a png, jpeg, gif or webp image, scales it down so its
// longer side is at most maxSide, and re-encodes it as PNG. A maxSide of
// zero or less disables scaling.
func Normalize(data []byte, maxSide int) ([]byte, Info, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	info := Info{Format: format, Width: w, Height: h, OriginalWidth: w, OriginalHeight: h}

	if nw, nh := fit(w, h, maxSide); nw != w || nh != h {
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		info.Width, info.Height, info.Resized = nw, nh, true
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, Info{}, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), info, nil
}

// fit returns the dimensions of w x h scaled so neither side exceeds maxSide
func fit(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
