// Package analyzer interprets raw network outputs.
package analyzer

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// DefaultThreshold is the minimum confidence a detection must exceed.
const DefaultThreshold float32 = 0.2

// detectionCols is the row width of an SSD DetectionOutput blob:
// image id, class id, confidence, x1, y1, x2, y2.
const detectionCols = 7

// Detection is one object found in a frame.
type Detection struct {
	ClassID    int
	Confidence float32
	// Box is in frame pixel coordinates.
	Box image.Rectangle
}

// ParseDetections reads an SSD output blob of shape [..., N, 7] with
// normalized corners and keeps rows whose confidence is above threshold,
// in row order.
func ParseDetections(out *tensor.Dense, frameW, frameH int, threshold float32) ([]Detection, error) {
	shape := out.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != detectionCols {
		return nil, errors.Errorf("detection output must end in %d columns, got shape %v", detectionCols, shape)
	}
	data, ok := out.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("detection output must be float32, got %v", out.Dtype())
	}

	var dets []Detection
	for row := 0; row+detectionCols <= len(data); row += detectionCols {
		r := data[row : row+detectionCols]
		if r[2] <= threshold {
			continue
		}
		dets = append(dets, Detection{
			ClassID:    int(r[1]),
			Confidence: r[2],
			Box: image.Rect(
				scale(r[3], frameW), scale(r[4], frameH),
				scale(r[5], frameW), scale(r[6], frameH),
			),
		})
	}
	return dets, nil
}

func scale(v float32, size int) int {
	return int(math.Round(float64(v) * float64(size)))
}
