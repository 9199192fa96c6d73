package validation

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyImage is returned when width or height is zero
	ErrEmptyImage = errors.New("empty image")

	// ErrInvalidBuffer is returned when a pixel buffer does not match its declared geometry
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
)

// Channel counts of the raw buffers produced by the normalizer
const (
	GrayChannels = 1
	RGBChannels  = 3
)

// BufferLimits bounds the geometry accepted by the analyzer
type BufferLimits struct {
	// MaxPixels rejects buffers larger than the normalizer could have produced.
	// Zero disables the check.
	MaxPixels int
}

// DefaultBufferLimits allows up to a 600x600 image, the normalizer's largest output
func DefaultBufferLimits() BufferLimits {
	return BufferLimits{MaxPixels: 600 * 600}
}

// BufferValidator checks raw pixel buffers before histogram construction
type BufferValidator struct {
	limits BufferLimits
}

// NewBufferValidator creates a validator with default limits
func NewBufferValidator() *BufferValidator {
	return &BufferValidator{limits: DefaultBufferLimits()}
}

// NewBufferValidatorWithLimits creates a validator with custom limits
func NewBufferValidatorWithLimits(limits BufferLimits) *BufferValidator {
	return &BufferValidator{limits: limits}
}

// ValidateDimensions rejects zero or negative sizes and oversized images
func (v *BufferValidator) ValidateDimensions(width, height int) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	if v.limits.MaxPixels > 0 && width > v.limits.MaxPixels/height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidBuffer, width, height, v.limits.MaxPixels)
	}
	return nil
}

// ValidateBuffer checks that a buffer holds exactly width*height pixels of the given channel count
func (v *BufferValidator) ValidateBuffer(buf []byte, width, height, channels int) error {
	want := width * height * channels
	if len(buf) != want {
		return fmt.Errorf("%w: got %d bytes, want %d (%dx%dx%d)",
			ErrInvalidBuffer, len(buf), want, width, height, channels)
	}
	return nil
}

// ValidateBuffers checks dimensions first, then both grayscale and RGB buffers
func (v *BufferValidator) ValidateBuffers(gray, rgb []byte, width, height int) error {
	if err := v.ValidateDimensions(width, height); err != nil {
		return err
	}
	if err := v.ValidateBuffer(gray, width, height, GrayChannels); err != nil {
		return fmt.Errorf("grayscale buffer: %w", err)
	}
	if err := v.ValidateBuffer(rgb, width, height, RGBChannels); err != nil {
		return fmt.Errorf("rgb buffer: %w", err)
	}
	return nil
}
