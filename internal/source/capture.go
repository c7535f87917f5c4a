package source

import (
	"image"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// CaptureSource reads frames from a video file, stream URL or camera.
type CaptureSource struct {
	name    string
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// NewCaptureSource opens a video file or stream.
func NewCaptureSource(path string) (*CaptureSource, error) {
	return openCapture(path, path)
}

// NewCameraSource opens the camera with the given index.
func NewCameraSource(id int) (*CaptureSource, error) {
	return openCapture(id, "camera "+strconv.Itoa(id))
}

func openCapture(device interface{}, name string) (*CaptureSource, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("open %s: capture not opened", name)
	}
	return &CaptureSource{name: name, capture: capture, frame: gocv.NewMat()}, nil
}

func (s *CaptureSource) Read() (image.Image, error) {
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, ErrEndOfStream
	}
	img, err := s.frame.ToImage()
	if err != nil {
		return nil, errors.Wrapf(err, "convert frame from %s", s.name)
	}
	return img, nil
}

func (s *CaptureSource) Still() bool {
	return false
}

func (s *CaptureSource) Close() error {
	return multierr.Combine(s.frame.Close(), s.capture.Close())
}
