package source

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	test.That(t, png.Encode(f, img), test.ShouldBeNil)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"", KindCamera},
		{"0", KindCamera},
		{"2", KindCamera},
		{"space_shuttle.jpg", KindImage},
		{"photo.JPEG", KindImage},
		{"scan.tiff", KindImage},
		{"pic.webp", KindImage},
		{"slides.pdf", KindDocument},
		{"clip.mp4", KindCapture},
		{"rtsp://camera.local/stream", KindCapture},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			test.That(t, KindOf(tt.input), test.ShouldEqual, tt.want)
		})
	}
}

func TestImageSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	writePNG(t, path, 40, 30)

	src, err := Open(path, 0)
	test.That(t, err, test.ShouldBeNil)
	defer src.Close()
	test.That(t, src.Still(), test.ShouldBeTrue)

	img, err := src.Read()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 40)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 30)

	_, err = src.Read()
	test.That(t, errors.Is(err, ErrEndOfStream), test.ShouldBeTrue)
}

func TestImageSourceErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewImageSource(filepath.Join(dir, "missing.jpg"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing.jpg")

	broken := filepath.Join(dir, "broken.png")
	test.That(t, os.WriteFile(broken, []byte("not a png"), 0o600), test.ShouldBeNil)
	_, err = NewImageSource(broken)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOpenMissingDocument(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"), 72)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestKindString(t *testing.T) {
	test.That(t, KindCamera.String(), test.ShouldEqual, "camera")
	test.That(t, KindDocument.String(), test.ShouldEqual, "document")
	test.That(t, KindCapture.String(), test.ShouldEqual, "capture")
}

// writePDF writes a minimal PDF with the given number of blank 72x36 pt pages.
func writePDF(t *testing.T, path string, pages int) {
	t.Helper()
	var objs []string
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages),
	)
	for i := 0; i < pages; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 72 36] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	test.That(t, os.WriteFile(path, buf.Bytes(), 0o600), test.ShouldBeNil)
}

func TestDocumentSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.pdf")
	writePDF(t, path, 2)

	src, err := Open(path, 144)
	test.That(t, err, test.ShouldBeNil)
	defer src.Close()
	test.That(t, src.Still(), test.ShouldBeFalse)

	doc, ok := src.(*DocumentSource)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, doc.Pages(), test.ShouldEqual, 2)

	for i := 0; i < 2; i++ {
		img, err := src.Read()
		test.That(t, err, test.ShouldBeNil)
		// 72x36 pt at 144 dpi
		test.That(t, img.Bounds().Dx(), test.ShouldEqual, 144)
		test.That(t, img.Bounds().Dy(), test.ShouldEqual, 72)
	}

	_, err = src.Read()
	test.That(t, errors.Is(err, ErrEndOfStream), test.ShouldBeTrue)
	_, err = src.Read()
	test.That(t, errors.Is(err, ErrEndOfStream), test.ShouldBeTrue)
}

func TestDocumentSourceDefaultDPI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.pdf")
	writePDF(t, path, 1)

	src, err := NewDocumentSource(path, 0)
	test.That(t, err, test.ShouldBeNil)
	defer src.Close()

	img, err := src.Read()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 72*DefaultDPI/72)
}
