// Package display shows annotated frames and waits for key presses.
package display

import (
	"image"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// NoKey is returned by WaitKey when no key was pressed.
const NoKey = -1

// Display is a place frames are shown on.
type Display interface {
	Show(title string, img image.Image) error
	// WaitKey waits up to delay for a key press; zero waits forever.
	WaitKey(delay time.Duration) int
	Close() error
}

// nativeWindow is the part of gocv.Window the display drives.
type nativeWindow interface {
	IMShow(img gocv.Mat) error
	SetWindowTitle(title string) error
	WaitKey(delay int) int
	Close() error
}

// Window is a native OpenCV window. It is created by the first Show.
type Window struct {
	open   func(title string) nativeWindow
	window nativeWindow
	title  string
}

func NewWindow() *Window {
	return &Window{open: func(title string) nativeWindow {
		return gocv.NewWindow(title)
	}}
}

func (w *Window) Show(title string, img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return errors.Wrap(err, "convert frame")
	}
	defer mat.Close()

	if w.window == nil {
		w.window = w.open(title)
		w.title = title
	} else if w.title != title {
		if err := w.window.SetWindowTitle(title); err != nil {
			return errors.Wrapf(err, "set window title %q", title)
		}
		w.title = title
	}
	return errors.Wrap(w.window.IMShow(mat), "show frame")
}

func (w *Window) WaitKey(delay time.Duration) int {
	if w.window == nil {
		return NoKey
	}
	ms := int(delay / time.Millisecond)
	if delay > 0 && ms == 0 {
		ms = 1
	}
	return w.window.WaitKey(ms)
}

func (w *Window) Close() error {
	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}

// Headless stands in for a window on machines without a screen.
type Headless struct {
	logger *zap.SugaredLogger
	shown  int
}

func NewHeadless(logger *zap.SugaredLogger) *Headless {
	return &Headless{logger: logger}
}

func (h *Headless) Show(title string, img image.Image) error {
	h.shown++
	b := img.Bounds()
	h.logger.Infow("frame ready", "window", title, "width", b.Dx(), "height", b.Dy())
	return nil
}

// Shown is the number of frames passed to Show.
func (h *Headless) Shown() int {
	return h.shown
}

func (h *Headless) WaitKey(time.Duration) int {
	return NoKey
}

func (h *Headless) Close() error {
	return nil
}
