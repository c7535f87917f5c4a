package analyzer

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Classification is the best scoring class of a frame.
type Classification struct {
	ClassID    int
	Confidence float32
}

// TopClass returns the highest score of a classifier output, whatever its
// shape. Ties go to the lowest index.
func TopClass(out *tensor.Dense) (Classification, error) {
	scores, ok := out.Data().([]float32)
	if !ok {
		return Classification{}, errors.Errorf("classifier output must be float32, got %v", out.Dtype())
	}
	if len(scores) == 0 {
		return Classification{}, errors.New("classifier output is empty")
	}

	best := Classification{ClassID: 0, Confidence: scores[0]}
	for i, s := range scores[1:] {
		if s > best.Confidence {
			best = Classification{ClassID: i + 1, Confidence: s}
		}
	}
	return best, nil
}
