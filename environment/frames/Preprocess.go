// Package frames implements preprocessing of rendered environment frames
// into observation vectors
package frames

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
)

const (
	// Default size of preprocessed frames
	DefaultHeight int = 100
	DefaultWidth  int = 120
)

// Luma coefficients used for grayscale conversion
const (
	redLuma   float64 = 0.2125
	greenLuma float64 = 0.7154
	blueLuma  float64 = 0.0721
)

// Channels returns the number of channels of a preprocessed frame
func Channels(gray bool) int {
	if gray {
		return 1
	}
	return 3
}

// Preprocess resizes img to height rows and width columns with bilinear
// interpolation, optionally converts it to grayscale, and scales pixel
// values to [0, 1]. The returned slice is laid out in row major order
// with channels last: (height, width, channels).
func Preprocess(img image.Image, width, height int, gray bool) ([]float64,
	error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("preprocess: size must be positive "+
			"\n\twant(>0, >0) \n\thave(%v, %v)", width, height)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("preprocess: cannot preprocess empty image")
	}

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(),
		draw.Src, nil)

	channels := Channels(gray)
	out := make([]float64, 0, width*height*channels)
	for i := 0; i < len(resized.Pix); i += 4 {
		r := float64(resized.Pix[i])
		g := float64(resized.Pix[i+1])
		b := float64(resized.Pix[i+2])

		if gray {
			out = append(out, redLuma*r+greenLuma*g+blueLuma*b)
		} else {
			out = append(out, r, g, b)
		}
	}
	floats.Scale(1/255.0, out)

	return out, nil
}
