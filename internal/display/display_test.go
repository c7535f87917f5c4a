package display

import (
	"image"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"gocv.io/x/gocv"

	"github.com/ivlev/dnnview/internal/logging"
)

type fakeWindow struct {
	titles  []string
	shown   int
	showErr error
	keys    []int
	closed  bool
}

func (f *fakeWindow) IMShow(gocv.Mat) error {
	f.shown++
	return f.showErr
}

func (f *fakeWindow) SetWindowTitle(title string) error {
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakeWindow) WaitKey(delay int) int {
	f.keys = append(f.keys, delay)
	return 'q'
}

func (f *fakeWindow) Close() error {
	f.closed = true
	return nil
}

func fakeOpener(fw *fakeWindow, opened *[]string) func(string) nativeWindow {
	return func(title string) nativeWindow {
		*opened = append(*opened, title)
		return fw
	}
}

func TestHeadless(t *testing.T) {
	logger, logs := logging.NewTestLogger(t)
	h := NewHeadless(logger)

	test.That(t, h.Show("detections", image.NewRGBA(image.Rect(0, 0, 64, 48))), test.ShouldBeNil)
	test.That(t, h.WaitKey(0), test.ShouldEqual, NoKey)
	test.That(t, h.WaitKey(time.Millisecond), test.ShouldEqual, NoKey)
	test.That(t, h.Shown(), test.ShouldEqual, 1)
	test.That(t, h.Close(), test.ShouldBeNil)

	entries := logs.FilterMessage("frame ready").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	fields := entries[0].ContextMap()
	test.That(t, fields["window"], test.ShouldEqual, "detections")
	test.That(t, fields["width"], test.ShouldEqual, int64(64))
}

func TestWindowBeforeShow(t *testing.T) {
	w := NewWindow()
	test.That(t, w.WaitKey(time.Millisecond), test.ShouldEqual, NoKey)
	test.That(t, w.Close(), test.ShouldBeNil)
}

func TestWindowOpensOnFirstShow(t *testing.T) {
	fw := &fakeWindow{}
	var opened []string
	w := &Window{open: fakeOpener(fw, &opened)}

	test.That(t, opened, test.ShouldBeEmpty)
	test.That(t, w.Show("detections", image.NewRGBA(image.Rect(0, 0, 8, 8))), test.ShouldBeNil)
	test.That(t, w.Show("detections", image.NewRGBA(image.Rect(0, 0, 8, 8))), test.ShouldBeNil)
	test.That(t, opened, test.ShouldResemble, []string{"detections"})
	test.That(t, fw.shown, test.ShouldEqual, 2)

	test.That(t, w.Show("other", image.NewRGBA(image.Rect(0, 0, 8, 8))), test.ShouldBeNil)
	test.That(t, fw.titles, test.ShouldResemble, []string{"other"})

	test.That(t, w.WaitKey(0), test.ShouldEqual, 'q')
	test.That(t, w.WaitKey(100*time.Microsecond), test.ShouldEqual, 'q')
	test.That(t, fw.keys, test.ShouldResemble, []int{0, 1})

	test.That(t, w.Close(), test.ShouldBeNil)
	test.That(t, fw.closed, test.ShouldBeTrue)
}

func TestWindowShowError(t *testing.T) {
	fw := &fakeWindow{showErr: errors.New("no display")}
	var opened []string
	w := &Window{open: fakeOpener(fw, &opened)}

	err := w.Show("detections", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no display")
}
