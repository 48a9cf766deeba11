package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"

	"github.com/ironsheep/lane-tools/internal/config"
	"github.com/ironsheep/lane-tools/internal/lane"
	"github.com/ironsheep/lane-tools/internal/video"
)

func main() {
	parser := argparse.NewParser("lanes", "Draw the left and right lane boundaries onto a sequence of road frames")
	input := parser.String("i", "input", &argparse.Options{Help: "Directory of frame images, or a video file (needs -tags gocv)", Required: true})
	output := parser.String("o", "output", &argparse.Options{Help: "Directory for annotated PNG frames", Required: true})
	configPath := parser.String("c", "config", &argparse.Options{Help: "Tuning file (.json); defaults are used for anything it leaves out", Required: false, Default: ""})
	maxWidth := parser.Int("", "max-width", &argparse.Options{Help: "If a frame is wider than this, scale it down to this width", Required: false, Default: 0})
	maxFrames := parser.Int("n", "frames", &argparse.Options{Help: "Stop after this many frames (0 = all)", Required: false, Default: 0})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		Input:      *input,
		Output:     *output,
		ConfigPath: *configPath,
		MaxWidth:   *maxWidth,
		MaxFrames:  *maxFrames,
	}
	if err := run(ctx, logger, opts); err != nil {
		logger.Errorf("%v", err)
		logger.Close()
		os.Exit(1)
	}
}

type options struct {
	Input      string
	Output     string
	ConfigPath string
	MaxWidth   int
	MaxFrames  int
}

type stats struct {
	frames        int
	left, right   int
	leftFallback  int
	rightFallback int
}

func (s *stats) add(res *lane.Result) {
	s.frames++
	if res.Left != nil {
		s.left++
		if res.Left.FromMemory {
			s.leftFallback++
		}
	}
	if res.Right != nil {
		s.right++
		if res.Right.FromMemory {
			s.rightFallback++
		}
	}
}

func run(ctx context.Context, log logs.Log, opts options) error {
	cfg := config.EmptyConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	params, err := cfg.Params()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	pipeline, err := lane.New(params, log)
	if err != nil {
		return err
	}

	src, err := video.Open(opts.Input, opts.MaxWidth)
	if err != nil {
		return err
	}
	defer src.Close()

	sink, err := video.NewDirSink(opts.Output)
	if err != nil {
		return err
	}

	log.Infof("Processing %s into %s", opts.Input, opts.Output)
	start := time.Now()

	var st stats
	var mem lane.Memory
	for opts.MaxFrames <= 0 || st.frames < opts.MaxFrames {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, context.Canceled) {
			log.Warnf("Interrupted after %d frames", st.frames)
			break
		}
		if err != nil {
			return err
		}

		var res *lane.Result
		res, mem, err = pipeline.Process(f.Image, mem)
		if err != nil {
			return fmt.Errorf("frame %d: %w", f.Index, err)
		}
		if _, err := sink.Write(f); err != nil {
			return err
		}
		st.add(res)
		log.Debugf("frame %d (%s): %d segments, left %v, right %v", f.Index, f.Name, len(res.Segments), res.Left != nil, res.Right != nil)
	}

	elapsed := time.Since(start)
	log.Infof("Done: %d frames in %v, left found %d (%d from memory), right found %d (%d from memory)",
		st.frames, elapsed.Round(time.Millisecond), st.left, st.leftFallback, st.right, st.rightFallback)
	return nil
}
