package normalizer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"go-tone-inspector/internal/analyzer"
	"go-tone-inspector/internal/logger"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// DefaultMaxEdge is the longest side of a normalized image
	DefaultMaxEdge = 600

	// DefaultMaxSourcePixels caps the declared canvas of an encoded image (50 megapixels)
	DefaultMaxSourcePixels = 50_000_000
)

var (
	// ErrUnsupportedFormat is returned when the magic bytes match no known format
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrDecodeFailed is returned when a recognized format cannot be decoded
	ErrDecodeFailed = errors.New("failed to decode image")

	// ErrImageTooLarge is returned when the header declares more pixels than allowed
	ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")
)

type codec struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var codecs = map[string]codec{
	FormatJPEG: {jpeg.Decode, jpeg.DecodeConfig},
	FormatPNG:  {png.Decode, png.DecodeConfig},
	FormatGIF:  {gif.Decode, gif.DecodeConfig},
	FormatWebP: {webp.Decode, webp.DecodeConfig},
	FormatBMP:  {bmp.Decode, bmp.DecodeConfig},
}

// NormalizedImage is a decoded, downsampled image ready for tone analysis
type NormalizedImage struct {
	Image          analyzer.RawImage
	Format         string
	OriginalWidth  int
	OriginalHeight int
}

// ImageNormalizer turns encoded image bytes into raw analysis buffers
type ImageNormalizer interface {
	Normalize(data []byte) (*NormalizedImage, error)
}

// Option configures an ImageNormalizer
type Option func(*imageNormalizer)

// WithMaxSourcePixels rejects images whose header declares more than n pixels.
// Non-positive n keeps DefaultMaxSourcePixels.
func WithMaxSourcePixels(n int) Option {
	return func(in *imageNormalizer) {
		if n > 0 {
			in.maxSourcePixels = n
		}
	}
}

// imageNormalizer implements ImageNormalizer
type imageNormalizer struct {
	maxEdge         int
	maxSourcePixels int
}

// NewImageNormalizer creates a normalizer that downsamples to maxEdge; non-positive means DefaultMaxEdge
func NewImageNormalizer(maxEdge int, opts ...Option) ImageNormalizer {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	n := &imageNormalizer{maxEdge: maxEdge, maxSourcePixels: DefaultMaxSourcePixels}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize decodes data, drops alpha, fits the image within maxEdge and extracts gray and RGB buffers
func (n *imageNormalizer) Normalize(data []byte) (*NormalizedImage, error) {
	format := DetectFormat(data)
	c, ok := codecs[format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	// The header is checked before decoding so a small file cannot claim a huge canvas
	cfg, err := c.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", ErrDecodeFailed, format, err)
	}
	if cfg.Height > 0 && cfg.Width > n.maxSourcePixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d is more than %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, n.maxSourcePixels)
	}

	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, format, err)
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), n.maxEdge)

	logger.WithFields(map[string]interface{}{
		"format":          format,
		"original_width":  bounds.Dx(),
		"original_height": bounds.Dy(),
		"width":           width,
		"height":          height,
	}).Debug("Normalizing image")

	return &NormalizedImage{
		Image:          toRawImage(resize(img, width, height)),
		Format:         format,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
	}, nil
}

// FitWithin scales width and height down so the longest side is at most maxEdge.
// Images already within bounds are never upscaled.
func FitWithin(width, height, maxEdge int) (int, int) {
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}
	if width >= height {
		h := height * maxEdge / width
		if h < 1 {
			h = 1
		}
		return maxEdge, h
	}
	w := width * maxEdge / height
	if w < 1 {
		w = 1
	}
	return w, maxEdge
}

// resize draws img into a non-premultiplied RGBA canvas of the given size
func resize(img image.Image, width, height int) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if bounds.Dx() == width && bounds.Dy() == height {
		draw.Copy(dst, image.Point{}, img, bounds, draw.Src, nil)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// toRawImage extracts interleaved RGB and luma buffers, discarding alpha
func toRawImage(src *image.NRGBA) analyzer.RawImage {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	raw := analyzer.RawImage{
		Width:  width,
		Height: height,
		Gray:   make([]byte, width*height),
		RGB:    make([]byte, width*height*3),
	}

	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width*4]
		for x := 0; x < width; x++ {
			r, g, b := uint32(row[x*4]), uint32(row[x*4+1]), uint32(row[x*4+2])
			i := y*width + x
			raw.RGB[i*3] = byte(r)
			raw.RGB[i*3+1] = byte(g)
			raw.RGB[i*3+2] = byte(b)
			raw.Gray[i] = luma(r, g, b)
		}
	}
	return raw
}

// luma uses the same weights as color.GrayModel
func luma(r, g, b uint32) byte {
	return byte((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
}
