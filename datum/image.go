package datum

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"os"

	_ "golang.org/x/image/bmp" // register BMP decoding
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/openfluke/augment/transform"
)

// ImageOptions controls how a decoded image becomes a byte sample.
type ImageOptions struct {
	Width  int // resize target; 0 keeps the source width
	Height int // resize target; 0 keeps the source height
	Gray   bool
	// Interpolator used when resizing (default draw.ApproxBiLinear).
	Interpolator draw.Interpolator
}

// FromImage converts img into a planar byte sample: one channel for gray,
// otherwise three channels in B, G, R order.
func FromImage(img image.Image, opts ImageOptions) *transform.RawSample {
	b := img.Bounds()
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = b.Dx()
	}
	if h <= 0 {
		h = b.Dy()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	} else {
		interp := opts.Interpolator
		if interp == nil {
			interp = draw.ApproxBiLinear
		}
		interp.Scale(rgba, rgba.Bounds(), img, b, draw.Src, nil)
	}

	plane := w * h
	if opts.Gray {
		data := make([]byte, plane)
		for i := 0; i < plane; i++ {
			px := rgba.Pix[4*i : 4*i+3]
			gray := 0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])
			data[i] = byte(gray + 0.5)
		}
		return transform.NewByteSample(1, h, w, data)
	}

	data := make([]byte, 3*plane)
	for i := 0; i < plane; i++ {
		px := rgba.Pix[4*i : 4*i+3]
		data[i] = px[2]
		data[plane+i] = px[1]
		data[2*plane+i] = px[0]
	}
	return transform.NewByteSample(3, h, w, data)
}

// LoadImage decodes the image file at path and converts it with FromImage.
func LoadImage(path string, opts ImageOptions) (*transform.RawSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img, opts), nil
}
