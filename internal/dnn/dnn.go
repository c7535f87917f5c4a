// Package dnn loads pretrained networks and runs forward passes on them.
//
// The demos only talk to the Net interface; the engines behind it are OpenCV's
// dnn module (Caffe, TensorFlow, Torch, Darknet), ONNX Runtime and, when built
// with the tflite tag, TensorFlow Lite.
package dnn

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Net is a loaded, immutable network.
type Net interface {
	// Forward runs one pass with in as the network input and returns the
	// blob produced by outputName. An empty name selects the default output.
	Forward(in *tensor.Dense, outputName string) (*tensor.Dense, error)
	Close() error
}

// Framework names accepted as a hint.
const (
	FrameworkCaffe      = "caffe"
	FrameworkTensorflow = "tensorflow"
	FrameworkTorch      = "torch"
	FrameworkDarknet    = "darknet"
	FrameworkONNX       = "onnx"
	FrameworkTFLite     = "tflite"
)

var (
	// ErrUnsupportedFramework is returned for hints no engine understands.
	ErrUnsupportedFramework = errors.New("unsupported framework")
	// ErrEmptyNet is returned when an engine produced no usable network.
	ErrEmptyNet = errors.New("network is empty")
)

var extFrameworks = map[string]string{
	".caffemodel": FrameworkCaffe,
	".prototxt":   FrameworkCaffe,
	".pb":         FrameworkTensorflow,
	".pbtxt":      FrameworkTensorflow,
	".t7":         FrameworkTorch,
	".net":        FrameworkTorch,
	".weights":    FrameworkDarknet,
	".cfg":        FrameworkDarknet,
	".onnx":       FrameworkONNX,
	".tflite":     FrameworkTFLite,
}

// Options tune how a network is loaded.
type Options struct {
	Framework string
	Backend   Backend
	Target    Target
	// InputName is the layer the input blob is bound to; empty means the
	// network's first input.
	InputName string
	// RuntimeLibrary overrides the ONNX Runtime shared library path.
	RuntimeLibrary string
}

// ResolveFramework returns the framework of a model. An explicit hint wins,
// then the model and config extensions. An empty result leaves detection to
// OpenCV.
func ResolveFramework(model, config, hint string) (string, error) {
	if hint != "" {
		h := strings.ToLower(strings.TrimSpace(hint))
		switch h {
		case FrameworkCaffe, FrameworkTensorflow, FrameworkTorch, FrameworkDarknet, FrameworkONNX, FrameworkTFLite:
			return h, nil
		}
		return "", errors.Wrapf(ErrUnsupportedFramework, "%q", hint)
	}
	for _, p := range []string{model, config} {
		if fw, ok := extFrameworks[lowerExt(p)]; ok {
			return fw, nil
		}
	}
	return "", nil
}

// ReadNet loads a network from model weights and an optional config file.
// Any failure is reported as an error naming both files.
func ReadNet(model, config string, opts Options) (Net, error) {
	if err := mustExist(model); err != nil {
		return nil, wrapLoad(err, model, config)
	}
	if config != "" {
		if err := mustExist(config); err != nil {
			return nil, wrapLoad(err, model, config)
		}
	}

	framework, err := ResolveFramework(model, config, opts.Framework)
	if err != nil {
		return nil, wrapLoad(err, model, config)
	}

	var net Net
	switch framework {
	case FrameworkONNX:
		net, err = newONNXNet(model, opts)
	case FrameworkTFLite:
		net, err = newTFLiteNet(model, opts)
	default:
		net, err = newOpenCVNet(model, config, framework, opts)
	}
	if err != nil {
		return nil, wrapLoad(err, model, config)
	}
	return net, nil
}

func lowerExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func mustExist(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return errors.Errorf("%s is a directory", path)
	}
	return nil
}

func wrapLoad(err error, model, config string) error {
	return errors.Wrapf(err, "can't load network (model: %q, config: %q)", model, config)
}

func intShape(dims []int64) []int {
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(d)
	}
	return out
}

func float32Data(t *tensor.Dense) ([]float32, error) {
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("input tensor must be float32, got %v", t.Dtype())
	}
	return data, nil
}
