package main

/*------------------------------------------------------------------
 *
 * Purpose:	Open a live soundcard stream and render a built-in demo
 *		patch (see demoPatch; there is no patch file loader)
 *		through it in real time. The engine never touches portaudio itself
 *		(SPEC_FULL's "no audio backend in the core" rule); this is
 *		the external driver that owns the callback and calls
 *		Engine.ProcessBlock once per buffer, the same relationship
 *		the teacher's audio.go has to its demodulator.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	flag "github.com/spf13/pflag"

	"github.com/corerack/corerack/corerack"
)

func main() {
	var (
		configPath = flag.StringP("config", "f", "", "path to an engine.yaml config file")
		bufferSize = flag.IntP("buffer", "b", 256, "frames per callback")
		verbose    = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := corerack.DefaultEngineConfig()
	if *configPath != "" {
		loaded, err := corerack.LoadEngineConfig(*configPath)
		if err != nil {
			logger.Fatal("loading config", "err", err)
		}
		cfg = loaded
	}

	engine, err := corerack.NewEngineFromConfig(cfg)
	if err != nil {
		logger.Fatal("building engine", "err", err)
	}

	if err := demoPatch(engine); err != nil {
		logger.Fatal("building demo patch", "err", err)
	}
	if err := engine.Compile(); err != nil {
		logger.Fatal("compiling patch", "err", err)
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("initializing portaudio", "err", err)
	}
	defer portaudio.Terminate()

	callback := func(out []float32) {
		frames := len(out) / 2
		rendered, err := engine.ProcessBlock(frames)
		if err != nil {
			logger.Error("render block", "err", err)
			for i := range out {
				out[i] = 0
			}
			return
		}
		copy(out, rendered)
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, cfg.SampleRate, *bufferSize, callback)
	if err != nil {
		logger.Fatal("opening stream", "err", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Fatal("starting stream", "err", err)
	}
	defer stream.Stop()

	logger.Info("playing", "sample_rate", cfg.SampleRate, "buffer", *bufferSize)
	fmt.Fprintln(os.Stderr, "press Enter to stop")
	fmt.Scanln()
}

// demoPatch wires a single VCO into the stereo sink so the tool has
// something audible to play without needing a patch file loader.
func demoPatch(e *corerack.Engine) error {
	if err := e.AddModule("vco", "vco1"); err != nil {
		return err
	}
	if err := e.AddModule("stereo_output", "out"); err != nil {
		return err
	}
	if _, err := e.Connect("vco1.out", "out.left", corerack.CableOpts{}); err != nil {
		return err
	}
	return e.SetOutput("out")
}
