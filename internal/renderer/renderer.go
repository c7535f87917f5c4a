// Package renderer draws inference results on top of a frame.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/ivlev/dnnview/internal/analyzer"
	"github.com/ivlev/dnnview/internal/labels"
)

var (
	// Green strokes boxes and classification text.
	Green = color.RGBA{G: 255, A: 255}
	// Black is the detection caption color.
	Black = color.RGBA{A: 255}
)

// BoxThickness is the stroke width of detection rectangles.
const BoxThickness = 2

// Canvas returns a drawable copy of img anchored at the origin.
func Canvas(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func newContext(dst *image.RGBA) *gg.Context {
	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(basicfont.Face7x13)
	return dc
}

// DetectionLabel formats the caption of one detection.
func DetectionLabel(det analyzer.Detection, table labels.Table) string {
	return fmt.Sprintf("%s: %.6g", table.Label(det.ClassID), det.Confidence)
}

// DrawDetections outlines every detection and writes its caption at the
// box's top-left corner. The captions are returned in the same order.
func DrawDetections(dst *image.RGBA, dets []analyzer.Detection, table labels.Table) []string {
	dc := newContext(dst)
	captions := make([]string, 0, len(dets))
	for _, det := range dets {
		r := det.Box.Canon()
		dc.SetColor(Green)
		dc.SetLineWidth(BoxThickness)
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()

		caption := DetectionLabel(det, table)
		dc.SetColor(Black)
		dc.DrawString(caption, float64(r.Min.X), float64(r.Min.Y))
		captions = append(captions, caption)
	}
	return captions
}

// DrawClassification writes the inference time and the winning class in the
// top-left corner.
func DrawClassification(dst *image.RGBA, res analyzer.Classification, table labels.Table, elapsed time.Duration) {
	dc := newContext(dst)
	dc.SetColor(Green)
	dc.DrawString(InferenceCaption(elapsed), 0, 15)
	dc.DrawString(ClassCaption(res, table), 0, 40)
}

// InferenceCaption renders elapsed in milliseconds with two decimals.
func InferenceCaption(elapsed time.Duration) string {
	return fmt.Sprintf("Inference time: %.2f ms", float64(elapsed)/float64(time.Millisecond))
}

// ClassCaption formats the winning class with four decimals.
func ClassCaption(res analyzer.Classification, table labels.Table) string {
	return fmt.Sprintf("%s: %.4f", table.Label(res.ClassID), res.Confidence)
}
