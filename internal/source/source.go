// Package source turns an input path into a stream of frames.
package source

import (
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrEndOfStream is returned by Read once a source has no more frames.
var ErrEndOfStream = errors.New("end of stream")

// Source yields frames one at a time.
type Source interface {
	Read() (image.Image, error)
	// Still reports whether the source is a single picture.
	Still() bool
	Close() error
}

// Kind is the family of source an input resolves to.
type Kind int

const (
	KindCamera Kind = iota
	KindImage
	KindDocument
	KindCapture
)

func (k Kind) String() string {
	switch k {
	case KindCamera:
		return "camera"
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	}
	return "capture"
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImage reports whether path has a still image extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// KindOf decides how input is opened. An empty input or a bare integer is a
// camera index.
func KindOf(input string) Kind {
	if input == "" {
		return KindCamera
	}
	if _, err := strconv.Atoi(input); err == nil {
		return KindCamera
	}
	if IsImage(input) {
		return KindImage
	}
	if strings.EqualFold(filepath.Ext(input), ".pdf") {
		return KindDocument
	}
	return KindCapture
}

// Open opens input as a frame source. dpi only applies to documents.
func Open(input string, dpi int) (Source, error) {
	switch KindOf(input) {
	case KindCamera:
		id := 0
		if input != "" {
			id, _ = strconv.Atoi(input)
		}
		return NewCameraSource(id)
	case KindImage:
		return NewImageSource(input)
	case KindDocument:
		return NewDocumentSource(input, dpi)
	}
	return NewCaptureSource(input)
}
