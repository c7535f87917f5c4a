package engine

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ivlev/dnnview/internal/analyzer"
	"github.com/ivlev/dnnview/internal/blob"
	"github.com/ivlev/dnnview/internal/display"
	"github.com/ivlev/dnnview/internal/dnn"
	"github.com/ivlev/dnnview/internal/labels"
	"github.com/ivlev/dnnview/internal/renderer"
	"github.com/ivlev/dnnview/internal/source"
)

const ClassificationWindow = "Deep learning image classification in OpenCV"

// Classification labels frames with the best scoring class of a classifier.
type Classification struct {
	Blob   blob.Params
	Output string
	Net    dnn.Net
	Source source.Source
	// Display is waited on between frames; any key stops the loop.
	Display display.Display
	Labels  labels.Table
	Out     io.Writer
	Logger  *zap.SugaredLogger
}

// Run classifies frames until a key is pressed between frames, the source
// ends, or a still image has been shown.
func (c *Classification) Run() error {
	frames := 0
	for c.Display.WaitKey(1) < 0 {
		frame, err := c.Source.Read()
		if errors.Is(err, source.ErrEndOfStream) {
			printLine(c.Out, "cannot load image")
			c.Display.WaitKey(0)
			break
		}
		if err != nil {
			return errors.Wrap(err, "read frame")
		}

		input := blob.FromImage(frame, c.Blob)
		logBlob(c.Logger, input)

		out, elapsed, err := forward(c.Net, input, c.Output)
		if err != nil {
			return err
		}
		res, err := analyzer.TopClass(out)
		if err != nil {
			return err
		}
		frames++
		c.Logger.Debugw("frame classified", "frame", frames, "class", res.ClassID, "confidence", res.Confidence)

		canvas := renderer.Canvas(frame)
		renderer.DrawClassification(canvas, res, c.Labels, elapsed)
		if err := c.Display.Show(ClassificationWindow, canvas); err != nil {
			return err
		}
		c.Display.WaitKey(0)

		if c.Source.Still() {
			break
		}
	}
	c.Logger.Infow("classification finished", "frames", frames)
	return nil
}
