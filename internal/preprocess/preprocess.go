// Package preprocess normalizes product photos into OCR-friendly buffers:
// scaled to a working width, grayscaled, contrast-stretched, and optionally
// binarized with an Otsu threshold.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Preprocessor applies the normalization policy from configuration.
type Preprocessor struct {
	targetWidth int
	binarize    bool
}

// New creates a preprocessor. Images wider than targetWidth are scaled
// down; smaller images are left at their native size since upscaling adds
// no information for the recognizer.
func New(targetWidth int, binarize bool) *Preprocessor {
	return &Preprocessor{targetWidth: targetWidth, binarize: binarize}
}

// Preprocess decodes data, normalizes it, and re-encodes it as PNG.
func (p *Preprocessor) Preprocess(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.targetWidth {
		scale := float64(p.targetWidth) / float64(bounds.Dx())
		scaled := image.NewRGBA(image.Rect(0, 0, p.targetWidth, int(float64(bounds.Dy())*scale)))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Src, nil)
		img = scaled
		bounds = scaled.Bounds()
	}

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	stretchContrast(gray)

	if p.binarize {
		applyThreshold(gray, otsuThreshold(gray))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

// stretchContrast linearly remaps pixel values so the darkest becomes 0 and
// the brightest 255. Uniform images are left untouched.
func stretchContrast(gray *image.Gray) {
	minVal, maxVal := uint8(255), uint8(0)
	for _, v := range gray.Pix {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= minVal {
		return
	}

	scale := 255.0 / float64(maxVal-minVal)
	for i, v := range gray.Pix {
		gray.Pix[i] = uint8(float64(v-minVal) * scale)
	}
}

// otsuThreshold picks the binarization threshold that maximizes
// between-class variance of the grayscale histogram.
func otsuThreshold(gray *image.Gray) uint8 {
	var histogram [256]int
	for _, v := range gray.Pix {
		histogram[v]++
	}

	total := len(gray.Pix)
	if total == 0 {
		return 128
	}

	var sum float64
	for i, count := range histogram {
		sum += float64(i) * float64(count)
	}

	var sumBackground, weightBackground float64
	bestThreshold := uint8(128)
	bestVariance := 0.0

	for t := 0; t < 256; t++ {
		weightBackground += float64(histogram[t])
		if weightBackground == 0 {
			continue
		}
		weightForeground := float64(total) - weightBackground
		if weightForeground == 0 {
			break
		}

		sumBackground += float64(t) * float64(histogram[t])
		meanBackground := sumBackground / weightBackground
		meanForeground := (sum - sumBackground) / weightForeground

		diff := meanBackground - meanForeground
		variance := weightBackground * weightForeground * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestThreshold = uint8(t)
		}
	}

	return bestThreshold
}

func applyThreshold(gray *image.Gray, threshold uint8) {
	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
}
