package analyzer

import (
	"fmt"

	"go-tone-inspector/pkg/validation"
)

// histogramBuilder implements HistogramBuilder
type histogramBuilder struct{}

// NewHistogramBuilder creates a new histogram builder
func NewHistogramBuilder() HistogramBuilder {
	return &histogramBuilder{}
}

// BuildGrayHistogram counts every byte of a single-channel buffer
func (hb *histogramBuilder) BuildGrayHistogram(buf []byte) (Histogram, error) {
	var hist Histogram
	for _, v := range buf {
		hist[v]++
	}
	return hist, nil
}

// BuildRGBHistograms counts each channel of an interleaved RGB buffer
func (hb *histogramBuilder) BuildRGBHistograms(buf []byte) (RGBHistograms, error) {
	var hists RGBHistograms
	if len(buf)%validation.RGBChannels != 0 {
		return hists, fmt.Errorf("%w: rgb buffer length %d is not a multiple of %d",
			validation.ErrInvalidBuffer, len(buf), validation.RGBChannels)
	}

	for i := 0; i < len(buf); i += validation.RGBChannels {
		hists.Red[buf[i]]++
		hists.Green[buf[i+1]]++
		hists.Blue[buf[i+2]]++
	}
	return hists, nil
}
