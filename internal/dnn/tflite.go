//go:build tflite

package dnn

import (
	"github.com/mattn/go-tflite"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// tfliteNet runs .tflite models with the TensorFlow Lite C API.
type tfliteNet struct {
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
}

func newTFLiteNet(model string, _ Options) (Net, error) {
	m := tflite.NewModelFromFile(model)
	if m == nil {
		return nil, ErrEmptyNet
	}
	options := tflite.NewInterpreterOptions()
	options.SetNumThread(1)

	interpreter := tflite.NewInterpreter(m, options)
	if interpreter == nil {
		options.Delete()
		m.Delete()
		return nil, errors.New("failed to create tflite interpreter")
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		m.Delete()
		return nil, errors.Errorf("allocate tensors: status %v", status)
	}

	return &tfliteNet{model: m, options: options, interpreter: interpreter}, nil
}

func (n *tfliteNet) Forward(in *tensor.Dense, outputName string) (*tensor.Dense, error) {
	data, err := float32Data(in)
	if err != nil {
		return nil, err
	}

	input := n.interpreter.GetInputTensor(0)
	if input.Type() != tflite.Float32 {
		return nil, errors.Errorf("tflite input must be float32, got %v", input.Type())
	}
	dst := input.Float32s()
	if len(dst) != len(data) {
		return nil, errors.Errorf("tflite input expects %d values, got %d", len(dst), len(data))
	}

	// NCHW blob into a channels-last input
	if input.NumDims() == 4 && input.Dim(3) == 3 && len(in.Shape()) == 4 {
		shape := in.Shape()
		channels, height, width := shape[1], shape[2], shape[3]
		plane := height * width
		for c := 0; c < channels; c++ {
			for i := 0; i < plane; i++ {
				dst[i*channels+c] = data[c*plane+i]
			}
		}
	} else {
		copy(dst, data)
	}

	if status := n.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.Errorf("invoke: status %v", status)
	}

	output, err := n.output(outputName)
	if err != nil {
		return nil, err
	}
	values := output.Float32s()
	backing := make([]float32, len(values))
	copy(backing, values)
	return tensor.New(tensor.WithShape(output.Shape()...), tensor.WithBacking(backing)), nil
}

func (n *tfliteNet) output(name string) (*tflite.Tensor, error) {
	count := n.interpreter.GetOutputTensorCount()
	if count == 0 {
		return nil, ErrEmptyNet
	}
	if name == "" {
		return n.interpreter.GetOutputTensor(0), nil
	}
	for i := 0; i < count; i++ {
		if t := n.interpreter.GetOutputTensor(i); t.Name() == name {
			return t, nil
		}
	}
	return nil, errors.Errorf("no output named %q", name)
}

func (n *tfliteNet) Close() error {
	n.interpreter.Delete()
	n.options.Delete()
	n.model.Delete()
	return nil
}
