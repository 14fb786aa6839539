// Command blendview is a terminal inspector for a small blend graph: a character mixing an idle
// and a walk clip, with a jump one-shot on top.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/audio"
	"github.com/gdamore/tcell/v2"
)

func main() {
	tickRate := flag.Float64("rate", 60, "physics ticks per second")
	frameLimit := flag.Float64("fps", 30, "screen redraws per second")
	logPath := flag.String("log", "", "write engine and tree logs to this file")
	soundPath := flag.String("sound", "", "WAV file played on every jump (a generated tone when empty)")
	flag.Parse()

	logger := log.New(io.Discard, "", 0)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	}

	sound, err := loadSound(*soundPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blendview: %v\n", err)
		os.Exit(1)
	}

	if err := run(*tickRate, *frameLimit, *logPath != "", sound, logger); err != nil {
		fmt.Fprintf(os.Stderr, "blendview: %v\n", err)
		os.Exit(1)
	}
}

// run blocks until the viewer quits or the process is interrupted. The profiler summary only
// goes to the log file, so it is enabled with one.
func run(tickRate, frameLimit float64, profile bool, sound common.AudioStream, logger *log.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	eng := engine.NewEngine(
		engine.WithTickRate(tickRate),
		engine.WithIdleFrameLimit(frameLimit),
		engine.WithProfiling(profile),
		engine.WithLogger(logger),
	)

	d, err := newDemo(eng, eng.Profiler(), sound, logger)
	if err != nil {
		return err
	}
	v := newViewer(screen, d, eng.Quit)
	eng.Subscribe(engine.TickIdle, v.frame)

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			v.post(ev)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	eng.Run(ctx)
	return nil
}

// loadSound decodes the WAV file at path, or generates a short tone when path is empty.
func loadSound(path string) (common.AudioStream, error) {
	if path == "" {
		return audio.NewToneStream(440, 300*time.Millisecond, 0), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	defer f.Close()
	s, err := audio.DecodeWAV(f)
	if err != nil {
		return nil, err
	}
	return s, nil
}
