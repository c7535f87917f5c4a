package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
)

// DefaultDPI is the rendering resolution of document pages.
const DefaultDPI = 150

// DocumentSource renders PDF pages as frames, first to last.
type DocumentSource struct {
	doc  *fitz.Document
	path string
	dpi  int
	next int
}

func NewDocumentSource(path string, dpi int) (*DocumentSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open document %s", path)
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &DocumentSource{doc: doc, path: path, dpi: dpi}, nil
}

// Pages is the number of frames the document yields.
func (s *DocumentSource) Pages() int {
	return s.doc.NumPage()
}

func (s *DocumentSource) Read() (image.Image, error) {
	if s.next >= s.doc.NumPage() {
		return nil, ErrEndOfStream
	}
	img, err := s.doc.ImageDPI(s.next, float64(s.dpi))
	if err != nil {
		return nil, errors.Wrapf(err, "render page %d of %s", s.next+1, s.path)
	}
	s.next++
	return img, nil
}

func (s *DocumentSource) Still() bool {
	return false
}

func (s *DocumentSource) Close() error {
	return s.doc.Close()
}
