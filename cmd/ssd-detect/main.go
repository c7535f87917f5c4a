// Command ssd-detect finds objects on one image with MobileNet-SSD and shows
// the boxes in a window.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ivlev/dnnview/internal/config"
	"github.com/ivlev/dnnview/internal/display"
	"github.com/ivlev/dnnview/internal/dnn"
	"github.com/ivlev/dnnview/internal/engine"
	"github.com/ivlev/dnnview/internal/logging"
	"github.com/ivlev/dnnview/internal/source"
	"github.com/ivlev/dnnview/internal/system"
)

const (
	settingsSection = "ObjectDetection_MobileNet_SSD"
	settingsInput   = "input"

	modelTxt = "MobileNetSSD_deploy.prototxt"
	modelBin = "MobileNetSSD_deploy.caffemodel"
)

// errReported marks failures whose diagnostic was already written.
var errReported = errors.New("reported")

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:      "ssd-detect",
		Usage:     "detect objects on an image with MobileNet-SSD",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "settings",
				Value: "config.ini",
				Usage: "settings `FILE` holding " + settingsSection + "." + settingsInput,
			},
			&cli.StringFlag{
				Name:  "models",
				Value: ".",
				Usage: "`DIR` containing " + modelTxt + " and " + modelBin,
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "log results instead of opening a window",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger = logging.NewDebugLogger("ssd-detect")
			} else {
				logger = logging.NewLogger("ssd-detect")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return detect(c, logger)
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}

	err := app.Run(args)
	if logger != nil {
		_ = logger.Sync()
	}
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintln(stderr, err)
	}
	return 1
}

func detect(c *cli.Context, logger *zap.SugaredLogger) error {
	stdout, stderr := c.App.Writer, c.App.ErrWriter

	settings, err := config.LoadSettings(c.String("settings"))
	if err != nil {
		fmt.Fprintln(stderr, "Can not read config")
		logger.Debugw("settings", "error", err)
		return errReported
	}
	input, err := settings.String(settingsSection, settingsInput)
	if err != nil {
		return err
	}

	prototxt := filepath.Join(c.String("models"), modelTxt)
	caffemodel := filepath.Join(c.String("models"), modelBin)

	start := time.Now()
	net, err := dnn.ReadNet(caffemodel, prototxt, dnn.Options{
		Framework: dnn.FrameworkCaffe,
		InputName: engine.SSDInputName,
	})
	fmt.Fprintf(stdout, "Load model elapsed: %dms\n", time.Since(start).Milliseconds())
	if err != nil {
		fmt.Fprintln(stderr, "Can't load network by using the following files:")
		fmt.Fprintln(stderr, "prototxt:   "+prototxt)
		fmt.Fprintln(stderr, "caffemodel: "+caffemodel)
		logger.Debugw("load network", "error", err)
		return errReported
	}
	defer net.Close()
	if rss, err := system.MemoryUsage(); err == nil {
		logger.Infow("model loaded", "rss", system.FormatBytes(rss))
	}

	imageFile, err := system.FindLatestImage(input)
	if err != nil {
		imageFile = input
	}
	src, err := source.NewImageSource(imageFile)
	if err != nil {
		fmt.Fprintln(stderr, "Can't read image from the file: "+imageFile)
		logger.Debugw("read image", "error", err)
		return errReported
	}
	defer src.Close()

	var disp display.Display = display.NewWindow()
	if c.Bool("headless") {
		disp = display.NewHeadless(logger)
	}
	defer disp.Close()

	return engine.NewDetection(net, src, disp, stdout, logger).Run()
}
