package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ivlev/dnnview/internal/blob"
)

// Params is the fully resolved parameter set of one demo run.
type Params struct {
	ModelPath   string
	ConfigPath  string
	Framework   string
	ClassesPath string

	Mean   [3]float64
	Scale  float64
	Width  int
	Height int
	SwapRB bool

	Backend int
	Target  int

	Input      string
	InputName  string
	OutputName string

	DPI            int
	Headless       bool
	RuntimeLibrary string
}

// DefaultParams returns the defaults of the classification flags.
func DefaultParams() *Params {
	return &Params{
		Scale: 1.0,
		DPI:   150,
	}
}

// Validate performs presence checks only.
func (p *Params) Validate() error {
	if p.ModelPath == "" {
		return errors.New("model path is required")
	}
	if p.Width < 0 || p.Height < 0 {
		return errors.Errorf("invalid input size %dx%d", p.Width, p.Height)
	}
	return nil
}

// Blob returns the preprocessing part of the parameters.
func (p *Params) Blob() blob.Params {
	return blob.Params{
		Width:  p.Width,
		Height: p.Height,
		Scale:  p.Scale,
		Mean:   p.Mean,
		SwapRB: p.SwapRB,
	}
}

// ParseMean parses up to three mean values separated by spaces or commas,
// e.g. "104 117 123". Missing values stay 0.
func ParseMean(s string) ([3]float64, error) {
	var mean [3]float64
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) > len(mean) {
		return mean, errors.Errorf("mean takes at most %d values, got %d", len(mean), len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return mean, errors.Wrapf(err, "invalid mean value %q", f)
		}
		mean[i] = v
	}
	return mean, nil
}
