// Command dnn-classify labels an image, a video or a camera stream with the
// best class of a pretrained classifier.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ivlev/dnnview/internal/config"
	"github.com/ivlev/dnnview/internal/display"
	"github.com/ivlev/dnnview/internal/dnn"
	"github.com/ivlev/dnnview/internal/engine"
	"github.com/ivlev/dnnview/internal/labels"
	"github.com/ivlev/dnnview/internal/logging"
	"github.com/ivlev/dnnview/internal/source"
	"github.com/ivlev/dnnview/internal/system"
)

var errReported = errors.New("reported")

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var logger *zap.SugaredLogger
	defaults := config.DefaultParams()

	app := &cli.App{
		Name:      "dnn-classify",
		Usage:     "use this script to run classification deep learning networks using OpenCV",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "path to input image, video or PDF; camera index or empty for the default camera",
			},
			&cli.StringFlag{
				Name:     "model",
				Aliases:  []string{"m"},
				Required: true,
				Usage:    "path to a binary file of model contains trained weights",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a text file of model contains network configuration",
			},
			&cli.StringFlag{
				Name:    "framework",
				Aliases: []string{"f"},
				Usage:   "optional name of an origin framework of the model: caffe, tensorflow, torch, darknet, onnx, tflite",
			},
			&cli.StringFlag{
				Name:  "classes",
				Usage: "optional path to a text file with names of classes",
			},
			&cli.StringFlag{
				Name:  "mean",
				Usage: "preprocess input image by subtracting mean values, e.g. \"104 117 123\"",
			},
			&cli.Float64Flag{
				Name:  "scale",
				Value: defaults.Scale,
				Usage: "preprocess input image by multiplying on a scale factor",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "preprocess input image by resizing to a specific width",
			},
			&cli.IntFlag{
				Name:  "height",
				Usage: "preprocess input image by resizing to a specific height",
			},
			&cli.BoolFlag{
				Name:  "rgb",
				Usage: "indicate that model works with RGB input images instead BGR ones",
			},
			&cli.IntFlag{
				Name:  "backend",
				Usage: "computation backend: 0 automatic, 1 Halide, 2 Intel's Deep Learning Inference Engine, 3 OpenCV",
			},
			&cli.IntFlag{
				Name:  "target",
				Usage: "target device: 0 CPU, 1 OpenCL, 2 OpenCL fp16, 3 VPU",
			},
			&cli.StringFlag{
				Name:  "input-layer",
				Usage: "name of the layer the input blob is bound to, defaults to the first input",
			},
			&cli.StringFlag{
				Name:  "output-layer",
				Usage: "name of the output layer to read scores from, defaults to the last layer",
			},
			&cli.IntFlag{
				Name:  "dpi",
				Value: defaults.DPI,
				Usage: "rendering resolution of PDF pages",
			},
			&cli.StringFlag{
				Name:    "onnxruntime",
				EnvVars: []string{dnn.RuntimeLibraryEnv},
				Usage:   "path to the ONNX Runtime shared library",
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
				logger = logging.NewDebugLogger("dnn-classify")
			} else {
				logger = logging.NewLogger("dnn-classify")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			params, err := paramsFromFlags(c)
			if err != nil {
				return err
			}
			return classify(params, stdout, stderr, logger)
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}

	if len(args) <= 1 {
		args = []string{app.Name, "--help"}
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

func paramsFromFlags(c *cli.Context) (*config.Params, error) {
	p := config.DefaultParams()
	p.ModelPath = c.String("model")
	p.ConfigPath = c.String("config")
	p.Framework = c.String("framework")
	p.ClassesPath = c.String("classes")
	p.Scale = c.Float64("scale")
	p.Width = c.Int("width")
	p.Height = c.Int("height")
	p.SwapRB = c.Bool("rgb")
	p.Backend = c.Int("backend")
	p.Target = c.Int("target")
	p.Input = c.String("input")
	p.InputName = c.String("input-layer")
	p.OutputName = c.String("output-layer")
	p.DPI = c.Int("dpi")
	p.Headless = c.Bool("headless")
	p.RuntimeLibrary = c.String("onnxruntime")

	if c.IsSet("mean") {
		mean, err := config.ParseMean(c.String("mean"))
		if err != nil {
			return nil, err
		}
		p.Mean = mean
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func classify(p *config.Params, stdout, stderr io.Writer, logger *zap.SugaredLogger) error {
	var table labels.Table
	if p.ClassesPath != "" {
		t, err := labels.LoadFile(p.ClassesPath)
		if err != nil {
			return err
		}
		table = t
	}

	start := time.Now()
	net, err := dnn.ReadNet(p.ModelPath, p.ConfigPath, dnn.Options{
		Framework:      p.Framework,
		Backend:        dnn.Backend(p.Backend),
		Target:         dnn.Target(p.Target),
		InputName:      p.InputName,
		RuntimeLibrary: p.RuntimeLibrary,
	})
	fmt.Fprintf(stdout, "Load model elapsed: %dms\n", time.Since(start).Milliseconds())
	if err != nil {
		fmt.Fprintln(stderr, "Can't load network by using the following files:")
		fmt.Fprintln(stderr, "model:  "+p.ModelPath)
		fmt.Fprintln(stderr, "config: "+p.ConfigPath)
		logger.Debugw("load network", "error", err)
		return errReported
	}
	defer net.Close()
	if rss, err := system.MemoryUsage(); err == nil {
		logger.Infow("model loaded", "rss", system.FormatBytes(rss), "backend", dnn.Backend(p.Backend), "target", dnn.Target(p.Target))
	}

	src, err := source.Open(p.Input, p.DPI)
	if err != nil {
		if source.KindOf(p.Input) == source.KindImage {
			fmt.Fprintln(stderr, "Can't read image from the file: "+p.Input)
		} else {
			fmt.Fprintln(stderr, "Can't open input: "+p.Input)
		}
		logger.Debugw("open input", "error", err)
		return errReported
	}
	defer src.Close()
	if doc, ok := src.(*source.DocumentSource); ok {
		logger.Infow("document opened", "input", p.Input, "pages", doc.Pages())
	}

	var disp display.Display = display.NewWindow()
	if p.Headless {
		disp = display.NewHeadless(logger)
	}
	defer disp.Close()

	c := &engine.Classification{
		Blob:    p.Blob(),
		Output:  p.OutputName,
		Net:     net,
		Source:  src,
		Display: disp,
		Labels:  table,
		Out:     stdout,
		Logger:  logger,
	}
	return c.Run()
}
