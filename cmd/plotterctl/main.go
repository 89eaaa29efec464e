// Command plotterctl drives one drawing job from the command line: it
// loads machine config and a flattened-path file, runs them through
// the toolpath/sort/path-generator pipeline, and streams the result
// either to a real serial-connected plotter or, with no port given, as
// a dry run (broadcast consumer only, no firmware writes).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/inkmachine/polarsketch"
	"github.com/inkmachine/polarsketch/config"
	"github.com/inkmachine/polarsketch/firmware"
	"github.com/inkmachine/polarsketch/geom"
	"github.com/inkmachine/polarsketch/internal/clihelp"
	"github.com/inkmachine/polarsketch/job"
	"github.com/inkmachine/polarsketch/pathsort"
	"github.com/inkmachine/polarsketch/toolpath"
)

const helpBanner = `
┌─┐┌─┐┬  ┌─┐┬─┐┌─┐┌─┐┌┬┐┬
├─┘│ ││  ├─┤├┬┘│  │ │ │ │
┴  └─┘┴─┘┴ ┴┴└─└─┘└─┘ ┴ ┴─┘

Polar-plotter path pipeline driver.
    Version: %s

`

// pipeName indicates that the paths file should be read from stdin.
const pipeName = "-"

// Version is set by the build; empty means a development build.
var Version string

var (
	configPath      = flag.String("config", "plotter.toml", "Machine config file (TOML)")
	pathsPath       = flag.String("paths", pipeName, "Flattened-path file (JSON array of polylines)")
	port            = flag.String("port", "", "Serial port device (empty runs a dry run: no firmware writes)")
	dryRun          = flag.Bool("dryrun", false, "Force a dry run even if -port is set")
	angleCorrection = flag.Bool("anglecorrect", false, "Replay SET_ANGLE_CORRECTION(true) before drawing")

	toolpathAlgo = flag.String("toolpath", "none", "Infill algorithm: none, lines, zigzag, rectlines")
	lineStep     = flag.Float64("linestep", 5, "Infill scan-line spacing, mm")
	fillAngle    = flag.Float64("fillangle", 0, "Infill scan-line angle, degrees")

	sortAlgo = flag.String("sort", "none", "Path-sort algorithm: none, closest_start, closest_endpoint, closest_on_closed, radar")
	startX   = flag.Float64("startx", 0, "Sort start point X, mm")
	startY   = flag.Float64("starty", 0, "Sort start point Y, mm")

	renderScale = flag.Float64("scale", 1, "Render scale multiplier")
	rotation    = flag.Float64("rotation", 0, "Overall rotation, degrees")

	verbose = flag.Bool("v", false, "Verbose (debug-level) logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, fmt.Sprintf(helpBanner, Version))
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(logger); err != nil {
		log.Fatal(clihelp.DecorateText(err.Error(), clihelp.ErrorMessage))
	}
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return l.Sugar()
}

func run(logger *zap.SugaredLogger) error {
	machine, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	paths, err := loadPaths(*pathsPath)
	if err != nil {
		return fmt.Errorf("loading paths: %w", err)
	}

	canvas := geom.NewRect(
		geom.Point{X: 0, Y: 0},
		geom.Point{X: machine.CanvasWidthMM, Y: machine.CanvasHeightMM},
	)
	baseMinX, baseMinY, baseMaxX, baseMaxY := machine.BaseRect()
	baseRect := geom.NewRect(
		geom.Point{X: baseMinX, Y: baseMinY},
		geom.Point{X: baseMaxX, Y: baseMaxY},
	)

	tpAlgo, err := parseToolpathAlgo(*toolpathAlgo)
	if err != nil {
		return err
	}
	sAlgo, err := parseSortAlgo(*sortAlgo)
	if err != nil {
		return err
	}

	gen := &polarsketch.PathGenerator{
		Paths:       paths,
		Canvas:      canvas,
		RenderScale: *renderScale,
		Rotation:    *rotation * math.Pi / 180,
		Toolpath: toolpath.Config{
			Algorithm: tpAlgo,
			LineStep:  *lineStep,
			Angle:     *fillAngle * math.Pi / 180,
		},
		PathSort: pathsort.Config{
			Algorithm: sAlgo,
			Start:     geom.Point{X: *startX, Y: *startY},
		},
		Log: logger,
	}

	runDryRun := *port == "" || *dryRun
	var client *firmware.Client

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyShutdown(cancel)

	if !runDryRun {
		transport, err := firmware.OpenSerial(*port, machine.BaudRate)
		if err != nil {
			return fmt.Errorf("opening serial port %s: %w", *port, err)
		}
		client = firmware.NewClient(transport, logger)
		fmt.Println(clihelp.DecorateText("⟡ waiting for device reset...", clihelp.DefaultMessage))
		if err := client.Open(ctx); err != nil {
			return fmt.Errorf("opening firmware link: %w", err)
		}
	}

	consumers := []job.Consumer{job.NewBroadcastConsumer("plotterctl", logger)}
	if !runDryRun {
		firmwareConsumer := job.NewFirmwareConsumer(client, canvas, baseRect, machine.Calibration, logger)
		if *angleCorrection {
			if err := client.SetAngleCorrection(ctx, true); err != nil {
				return fmt.Errorf("setting angle correction: %w", err)
			}
		}
		consumers = append([]job.Consumer{firmwareConsumer}, consumers...)
	}

	spin := clihelp.NewSpinner(statusMessage("drawing, press Ctrl-C to stop..."), 80*time.Millisecond)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		spin.Start()
	}

	drawingJob := job.NewDrawingJob("plotterctl", gen, consumers, logger)
	drawingJob.Start(ctx)
	<-drawingJob.Done()
	spin.Stop()

	fmt.Println(clihelp.DecorateText("✓ drawing finished", clihelp.SuccessMessage))
	return nil
}

func statusMessage(s string) string {
	return fmt.Sprintf("%s %s",
		clihelp.DecorateText("⟡ PLOTTERCTL", clihelp.StatusMessage),
		clihelp.DecorateText(s, clihelp.DefaultMessage),
	)
}

func notifyShutdown(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
}

func parseToolpathAlgo(s string) (toolpath.Algorithm, error) {
	switch s {
	case "none", "":
		return toolpath.None, nil
	case "lines":
		return toolpath.HorizontalLines, nil
	case "zigzag":
		return toolpath.ZigZag, nil
	case "rectlines":
		return toolpath.RectLines, nil
	default:
		return 0, fmt.Errorf("unknown toolpath algorithm %q", s)
	}
}

func parseSortAlgo(s string) (pathsort.Algorithm, error) {
	switch s {
	case "none", "":
		return pathsort.None, nil
	case "closest_start":
		return pathsort.ClosestStart, nil
	case "closest_endpoint":
		return pathsort.ClosestEndpoint, nil
	case "closest_on_closed":
		return pathsort.ClosestOnClosed, nil
	case "radar":
		return pathsort.RadarScan, nil
	default:
		return 0, fmt.Errorf("unknown sort algorithm %q", s)
	}
}

// loadPaths reads a JSON array of polylines (each a list of [x, y]
// pairs) from path, or stdin if path is pipeName, and builds one
// geom.Path of Line segments per polyline.
func loadPaths(path string) ([]*geom.Path, error) {
	var r *os.File
	if path == pipeName {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var polylines [][][2]float64
	if err := json.NewDecoder(r).Decode(&polylines); err != nil {
		return nil, fmt.Errorf("decoding polylines: %w", err)
	}

	paths := make([]*geom.Path, 0, len(polylines))
	for _, poly := range polylines {
		if len(poly) < 2 {
			continue
		}
		segs := make([]geom.Segment, 0, len(poly)-1)
		for i := 0; i+1 < len(poly); i++ {
			a := geom.Point{X: poly[i][0], Y: poly[i][1]}
			b := geom.Point{X: poly[i+1][0], Y: poly[i+1][1]}
			segs = append(segs, &geom.Line{A: a, B: b})
		}
		paths = append(paths, geom.NewPath(segs...))
	}
	return paths, nil
}
