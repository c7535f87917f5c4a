package dnn

import "fmt"

// Backend selects the computation backend of the OpenCV engine.
type Backend int

// Backend ids as accepted by --backend.
const (
	BackendDefault Backend = iota
	BackendHalide
	BackendInferenceEngine
	BackendOpenCV
)

func (b Backend) String() string {
	switch b {
	case BackendDefault:
		return "default"
	case BackendHalide:
		return "halide"
	case BackendInferenceEngine:
		return "inference-engine"
	case BackendOpenCV:
		return "opencv"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// Target selects the computation device of the OpenCV engine.
type Target int

// Target ids as accepted by --target.
const (
	TargetCPU Target = iota
	TargetOpenCL
	TargetOpenCLFP16
	TargetVPU
)

func (t Target) String() string {
	switch t {
	case TargetCPU:
		return "cpu"
	case TargetOpenCL:
		return "opencl"
	case TargetOpenCLFP16:
		return "opencl-fp16"
	case TargetVPU:
		return "vpu"
	}
	return fmt.Sprintf("target(%d)", int(t))
}
