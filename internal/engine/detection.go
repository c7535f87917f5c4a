package engine

import (
	"image"
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

// MobileNet-SSD input contract.
const (
	SSDInputSize  = 300
	SSDScale      = 0.007843
	SSDPixelMean  = 127.5
	SSDInputName  = "data"
	SSDOutputName = "detection_out"

	DetectionWindow = "detections"
)

// SSDBlob is the preprocessing of MobileNet-SSD. The pixel mean is moved to
// tensor space so that t = (pixel - 127.5) * scale.
func SSDBlob() blob.Params {
	m := SSDPixelMean * SSDScale
	return blob.Params{
		Width:  SSDInputSize,
		Height: SSDInputSize,
		Scale:  SSDScale,
		Mean:   [3]float64{m, m, m},
	}
}

// Detection detects objects on a single still image.
type Detection struct {
	Net       dnn.Net
	Source    source.Source
	Display   display.Display
	Labels    labels.Table
	Threshold float32
	Out       io.Writer
	Logger    *zap.SugaredLogger
}

func NewDetection(net dnn.Net, src source.Source, disp display.Display, out io.Writer, logger *zap.SugaredLogger) *Detection {
	return &Detection{
		Net:       net,
		Source:    src,
		Display:   disp,
		Labels:    labels.VOC(),
		Threshold: analyzer.DefaultThreshold,
		Out:       out,
		Logger:    logger,
	}
}

// Run processes the first frame of the source, shows it and blocks until a
// key is pressed.
func (d *Detection) Run() error {
	frame, err := d.Source.Read()
	if err != nil {
		return errors.Wrap(err, "read frame")
	}

	canvas, _, err := d.ProcessFrame(frame)
	if err != nil {
		return err
	}

	if err := d.Display.Show(DetectionWindow, canvas); err != nil {
		return err
	}
	d.Display.WaitKey(0)
	return nil
}

// ProcessFrame runs the network on frame and returns an annotated copy of it
// with the detections kept.
func (d *Detection) ProcessFrame(frame image.Image) (*image.RGBA, []analyzer.Detection, error) {
	input := blob.FromImage(frame, SSDBlob())
	logBlob(d.Logger, input)

	out, elapsed, err := forward(d.Net, input, SSDOutputName)
	if err != nil {
		return nil, nil, err
	}
	printLine(d.Out, "Process elapsed: %dms", elapsed.Milliseconds())

	b := frame.Bounds()
	dets, err := analyzer.ParseDetections(out, b.Dx(), b.Dy(), d.Threshold)
	if err != nil {
		return nil, nil, err
	}
	d.Logger.Debugw("detections parsed", "kept", len(dets), "shape", out.Shape())

	canvas := renderer.Canvas(frame)
	for _, caption := range renderer.DrawDetections(canvas, dets, d.Labels) {
		printLine(d.Out, "%s", caption)
	}
	return canvas, dets, nil
}
