package renderer

import (
	"image"
	"image/color"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/ivlev/dnnview/internal/analyzer"
	"github.com/ivlev/dnnview/internal/labels"
)

func gray(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	return img
}

func isGreen(c color.RGBA) bool {
	return c.G > 200 && c.R < 60 && c.B < 60
}

func TestCanvas(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 15, 25))
	src.Set(5, 5, color.NRGBA{R: 255, A: 255})

	dst := Canvas(src)
	test.That(t, dst.Bounds(), test.ShouldResemble, image.Rect(0, 0, 10, 20))
	test.That(t, dst.RGBAAt(0, 0), test.ShouldResemble, color.RGBA{R: 255, A: 255})

	dst.Set(0, 0, color.Black)
	test.That(t, src.NRGBAAt(5, 5).R, test.ShouldEqual, uint8(255))
}

func TestDrawDetections(t *testing.T) {
	dst := gray(100, 100)
	dets := []analyzer.Detection{
		{ClassID: 15, Confidence: 0.5, Box: image.Rect(20, 30, 60, 80)},
		{ClassID: 42, Confidence: 0.25, Box: image.Rect(70, 70, 90, 90)},
	}

	captions := DrawDetections(dst, dets, labels.VOC())
	test.That(t, captions, test.ShouldResemble, []string{"person: 0.5", "Class #42: 0.25"})

	// left and bottom edges of the first box
	test.That(t, isGreen(dst.RGBAAt(20, 60)), test.ShouldBeTrue)
	test.That(t, isGreen(dst.RGBAAt(40, 80)), test.ShouldBeTrue)
	// inside stays untouched
	test.That(t, dst.RGBAAt(40, 60), test.ShouldResemble, color.RGBA{128, 128, 128, 255})
}

func TestDrawDetectionsCaptionIsBlack(t *testing.T) {
	dst := gray(120, 120)
	DrawDetections(dst, []analyzer.Detection{{ClassID: 1, Confidence: 0.9, Box: image.Rect(10, 40, 110, 110)}}, labels.VOC())

	// glyphs sit above the baseline at the box's top edge
	dark := 0
	for y := 28; y < 39; y++ {
		for x := 10; x < 60; x++ {
			if c := dst.RGBAAt(x, y); c.R < 40 && c.G < 40 && c.B < 40 {
				dark++
			}
		}
	}
	test.That(t, dark, test.ShouldBeGreaterThan, 0)
}

func TestDrawClassification(t *testing.T) {
	dst := gray(200, 60)
	DrawClassification(dst, analyzer.Classification{ClassID: 2, Confidence: 0.9}, labels.Table{"a", "b", "c"}, 12*time.Millisecond)

	green := 0
	for y := 0; y < 45; y++ {
		for x := 0; x < 200; x++ {
			if isGreen(dst.RGBAAt(x, y)) {
				green++
			}
		}
	}
	test.That(t, green, test.ShouldBeGreaterThan, 0)
	test.That(t, dst.RGBAAt(199, 59), test.ShouldResemble, color.RGBA{128, 128, 128, 255})
}

func TestCaptions(t *testing.T) {
	test.That(t, InferenceCaption(12346*time.Microsecond), test.ShouldEqual, "Inference time: 12.35 ms")
	test.That(t, InferenceCaption(0), test.ShouldEqual, "Inference time: 0.00 ms")
	test.That(t, ClassCaption(analyzer.Classification{ClassID: 1, Confidence: 0.87654}, labels.Table{"cat", "dog"}),
		test.ShouldEqual, "dog: 0.8765")
	test.That(t, ClassCaption(analyzer.Classification{ClassID: 5, Confidence: 0.5}, nil),
		test.ShouldEqual, "Class #5: 0.5000")
	test.That(t, DetectionLabel(analyzer.Detection{ClassID: 7, Confidence: 0.923456789}, labels.VOC()),
		test.ShouldEqual, "car: 0.923457")
}
