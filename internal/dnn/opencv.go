package dnn

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// openCVNet runs models through OpenCV's dnn module.
type openCVNet struct {
	net       gocv.Net
	inputName string
}

// netReader is the OpenCV reader a model is loaded with.
type netReader int

const (
	readerAuto netReader = iota
	readerCaffe
	readerTensorflow
	readerTorch
)

// readPlan is a reader together with the files passed to it, in call order.
type readPlan struct {
	reader netReader
	files  []string
}

func planRead(model, config, framework string) readPlan {
	switch framework {
	case FrameworkCaffe:
		// prototxt + caffemodel; the pair may come in either order
		prototxt, weights := config, model
		if lowerExt(model) == ".prototxt" {
			prototxt, weights = model, config
		}
		return readPlan{readerCaffe, []string{prototxt, weights}}
	case FrameworkTensorflow:
		if config == "" {
			return readPlan{readerTensorflow, []string{model}}
		}
	case FrameworkTorch:
		return readPlan{readerTorch, []string{model}}
	}
	// darknet, text graphs and unknown extensions: OpenCV probes both files
	return readPlan{readerAuto, []string{model, config}}
}

func newOpenCVNet(model, config, framework string, opts Options) (*openCVNet, error) {
	var net gocv.Net
	plan := planRead(model, config, framework)
	switch plan.reader {
	case readerCaffe:
		net = gocv.ReadNetFromCaffe(plan.files[0], plan.files[1])
	case readerTensorflow:
		net = gocv.ReadNetFromTensorflow(plan.files[0])
	case readerTorch:
		net = gocv.ReadNetFromTorch(plan.files[0])
	default:
		net = gocv.ReadNet(plan.files[0], plan.files[1])
	}

	if net.Empty() {
		net.Close()
		return nil, ErrEmptyNet
	}

	if err := net.SetPreferableBackend(gocv.NetBackendType(opts.Backend)); err != nil {
		net.Close()
		return nil, errors.Wrapf(err, "set backend %s", opts.Backend)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetType(opts.Target)); err != nil {
		net.Close()
		return nil, errors.Wrapf(err, "set target %s", opts.Target)
	}

	return &openCVNet{net: net, inputName: opts.InputName}, nil
}

func (n *openCVNet) Forward(in *tensor.Dense, outputName string) (*tensor.Dense, error) {
	data, err := float32Data(in)
	if err != nil {
		return nil, err
	}

	input, err := gocv.NewMatWithSizesFromBytes([]int(in.Shape()), gocv.MatTypeCV32F, float32Bytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "build input blob")
	}
	defer input.Close()

	n.net.SetInput(input, n.inputName)
	out := n.net.Forward(outputName)
	defer out.Close()

	if out.Empty() {
		return nil, errors.Errorf("forward %q produced no output", outputName)
	}
	values, err := out.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrapf(err, "read output %q", outputName)
	}

	// the Mat owns values, copy before it is closed
	backing := make([]float32, len(values))
	copy(backing, values)
	return tensor.New(tensor.WithShape(out.Size()...), tensor.WithBacking(backing)), nil
}

func (n *openCVNet) Close() error {
	return n.net.Close()
}

// float32Bytes encodes v in the host (little-endian) layout OpenCV expects.
func float32Bytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}
