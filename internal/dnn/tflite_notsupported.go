//go:build !tflite

package dnn

import "github.com/pkg/errors"

func newTFLiteNet(string, Options) (Net, error) {
	return nil, errors.Wrap(ErrUnsupportedFramework, "tflite support not built in, rebuild with -tags tflite")
}
