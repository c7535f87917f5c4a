// Package engine runs the two demo pipelines: read a frame, build the
// input blob, run one forward pass, annotate the frame and show it.
package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/ivlev/dnnview/internal/blob"
	"github.com/ivlev/dnnview/internal/dnn"
)

// forward runs net on t and returns the output together with the time spent
// inside the network.
func forward(net dnn.Net, t *tensor.Dense, output string) (*tensor.Dense, time.Duration, error) {
	start := time.Now()
	out, err := net.Forward(t, output)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, errors.Wrap(err, "forward pass")
	}
	return out, elapsed, nil
}

func logBlob(logger *zap.SugaredLogger, t *tensor.Dense) {
	w, h := blob.Size(t)
	logger.Debugw("input blob", "width", w, "height", h, "shape", t.Shape())
}

func printLine(out io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(out, format+"\n", args...)
}
