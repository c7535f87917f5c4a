// Package blob turns decoded frames into the 4-D NCHW input tensor a network
// expects.
package blob

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"gorgonia.org/tensor"
)

// Params controls the frame -> tensor conversion.
type Params struct {
	Width, Height int // 0 keeps the frame size
	Scale         float64
	Mean          [3]float64 // subtracted per tensor channel after scaling
	SwapRB        bool       // model expects RGB instead of BGR
}

// Resize scales img to width x height with bilinear interpolation. A zero
// dimension or a frame that already has the target size is returned as is.
func Resize(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
}

// FromImage builds a [1,3,H,W] float32 tensor from img:
//
//	t[c,y,x] = Scale * frame[y,x,src] - Mean[c], src = SwapRB ? 2-c : c
//
// where frame channels are in BGR order.
func FromImage(img image.Image, p Params) *tensor.Dense {
	img = Resize(img, p.Width, p.Height)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bgr := pixelBGR(img, b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			for c := 0; c < 3; c++ {
				src := c
				if p.SwapRB {
					src = 2 - c
				}
				data[c*plane+i] = float32(p.Scale*float64(bgr[src]) - p.Mean[c])
			}
		}
	}

	return tensor.New(tensor.WithShape(1, 3, h, w), tensor.WithBacking(data))
}

// Size returns the spatial width and height of an NCHW tensor.
func Size(t *tensor.Dense) (width, height int) {
	shape := t.Shape()
	if len(shape) != 4 {
		return 0, 0
	}
	return shape[3], shape[2]
}

// pixelBGR reads one pixel as 8-bit B, G, R.
func pixelBGR(img image.Image, x, y int) [3]uint8 {
	switch m := img.(type) {
	case *image.RGBA:
		off := m.PixOffset(x, y)
		return [3]uint8{m.Pix[off+2], m.Pix[off+1], m.Pix[off]}
	case *image.NRGBA:
		off := m.PixOffset(x, y)
		return [3]uint8{m.Pix[off+2], m.Pix[off+1], m.Pix[off]}
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return [3]uint8{c.B, c.G, c.R}
}
