package dnn

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
	"gorgonia.org/tensor"
)

// RuntimeLibraryEnv names the environment variable holding the ONNX Runtime
// shared library path.
const RuntimeLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// onnxNet runs .onnx models with ONNX Runtime on the CPU. One session is
// created per requested output and kept until Close.
type onnxNet struct {
	path        string
	inputName   string
	outputNames []string
	options     *ort.SessionOptions
	sessions    map[string]*ort.DynamicAdvancedSession
}

func newONNXNet(model string, opts Options) (*onnxNet, error) {
	if !ort.IsInitialized() {
		libPath, err := sharedLibPath(opts.RuntimeLibrary)
		if err != nil {
			return nil, err
		}
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize onnxruntime")
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(model)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, ErrEmptyNet
	}

	inputName := opts.InputName
	if inputName == "" {
		inputName = inputs[0].Name
	}
	outputNames := make([]string, 0, len(outputs))
	for _, o := range outputs {
		outputNames = append(outputNames, o.Name)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "session options")
	}

	return &onnxNet{
		path:        model,
		inputName:   inputName,
		outputNames: outputNames,
		options:     options,
		sessions:    make(map[string]*ort.DynamicAdvancedSession),
	}, nil
}

func (n *onnxNet) session(output string) (*ort.DynamicAdvancedSession, error) {
	if s, ok := n.sessions[output]; ok {
		return s, nil
	}
	s, err := ort.NewDynamicAdvancedSession(n.path, []string{n.inputName}, []string{output}, n.options)
	if err != nil {
		return nil, errors.Wrapf(err, "create session for output %q", output)
	}
	n.sessions[output] = s
	return s, nil
}

func (n *onnxNet) Forward(in *tensor.Dense, outputName string) (*tensor.Dense, error) {
	if outputName == "" {
		outputName = n.outputNames[0]
	}
	data, err := float32Data(in)
	if err != nil {
		return nil, err
	}

	sess, err := n.session(outputName)
	if err != nil {
		return nil, err
	}

	dims := make([]int64, 0, len(in.Shape()))
	for _, d := range in.Shape() {
		dims = append(dims, int64(d))
	}
	input, err := ort.NewTensor(ort.NewShape(dims...), data)
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := sess.Run([]ort.Value{input}, outputs); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("output %q is not a float32 tensor", outputName)
	}
	values := out.GetData()
	backing := make([]float32, len(values))
	copy(backing, values)
	return tensor.New(tensor.WithShape(intShape(out.GetShape())...), tensor.WithBacking(backing)), nil
}

func (n *onnxNet) Close() error {
	var err error
	for name, s := range n.sessions {
		err = multierr.Append(err, s.Destroy())
		delete(n.sessions, name)
	}
	if n.options != nil {
		err = multierr.Append(err, n.options.Destroy())
		n.options = nil
	}
	return multierr.Append(err, ort.DestroyEnvironment())
}

// sharedLibPath finds the ONNX Runtime library: explicit path, then the
// environment, then the platform's default library name.
func sharedLibPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(RuntimeLibraryEnv); env != "" {
		return env, nil
	}
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "linux":
		return "libonnxruntime.so", nil
	}
	return "", errors.Errorf("unable to find a version of the onnxruntime library supporting %s %s", runtime.GOOS, runtime.GOARCH)
}
