package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageSource is a single decoded picture.
type ImageSource struct {
	img  image.Image
	done bool
}

// NewImageSource decodes path up front, applying any EXIF orientation.
func NewImageSource(path string) (*ImageSource, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &ImageSource{img: img}, nil
}

func (s *ImageSource) Read() (image.Image, error) {
	if s.done {
		return nil, ErrEndOfStream
	}
	s.done = true
	return s.img, nil
}

func (s *ImageSource) Still() bool {
	return true
}

func (s *ImageSource) Close() error {
	s.img = nil
	return nil
}
