package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"selection-watcher/src/activate"
	"selection-watcher/src/ax"
	"selection-watcher/src/capture"
	"selection-watcher/src/clipboard"
	"selection-watcher/src/config"
	"selection-watcher/src/coordinator"
	"selection-watcher/src/emitter"
	"selection-watcher/src/gesture"
	"selection-watcher/src/keysynth"
	"selection-watcher/src/logutil"
	"selection-watcher/src/pasteback"
	"selection-watcher/src/protocol"
)

// normalizeFlagDashes maps GNU-style --show-config to Go's -show-config
func normalizeFlagDashes() {
	for i := 1; i < len(os.Args); i++ {
		if strings.HasPrefix(os.Args[i], "--") {
			os.Args[i] = os.Args[i][1:]
		}
	}
}

func main() {
	showConfig := flag.Bool("show-config", false, "Print the resolved configuration and exit")
	normalizeFlagDashes()
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logutil.Setup(cfg.EnableFileLogging)

	if *showConfig {
		fmt.Printf("%+v\n", *cfg)
		return
	}

	clip, err := clipboard.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize clipboard: %v\n", err)
		os.Exit(1)
	}

	log.Printf("selection watcher starting")
	log.Printf("debounce=%v pendingCancel=%.0fpx activeCancel=%.0fpx minLifetime=%v passes=%v",
		cfg.Debounce, cfg.PendingCancelPx, cfg.ActiveCancelPx, cfg.MinLifetime, cfg.PassDelays)

	emit := emitter.New(os.Stdout)
	chain := capture.NewChain(ax.System())
	keys := keysynth.System()

	coord := coordinator.New(coordinator.Config{
		Debounce:        cfg.Debounce,
		PendingCancelPx: cfg.PendingCancelPx,
		ActiveCancelPx:  cfg.ActiveCancelPx,
		MinLifetime:     cfg.MinLifetime,
		PassDelays:      cfg.PassDelays,
		MoveCheckEvery:  cfg.MoveCheckEvery,
		FocusCheckEvery: cfg.FocusCheckEvery,
	}, chain, emit)

	classifier := gesture.NewClassifier(cfg.GestureSettle, coord)
	tap := gesture.NewTap(classifier, cfg.TapRetry)

	prober := capture.NewProber(clip, keys, tap, capture.ProbeConfig{
		Attempts:    cfg.ClipboardPollAttempts,
		Timeout:     cfg.ClipboardPollTimeout,
		Backoff:     cfg.ClipboardPollBackoff,
		ResumeGrace: cfg.TapResumeGrace,
	})
	pool := capture.NewPool()
	defer pool.Close()
	coord.SetFallback(prober, pool)

	coord.SetPasteBacker(pasteback.New(clip, keys, activate.System(), tap, cfg.PasteSettle, cfg.TapResumeGrace))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	// Drain paste-back commands from stdin. This is the only goroutine that
	// feeds the command channel; Dispatch marshals onto the coordinator loop.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			cmd, ok := protocol.ParseCommand(scanner.Text())
			if !ok {
				log.Printf("main: ignoring malformed command line")
				continue
			}
			coord.Dispatch(cmd)
		}
		log.Printf("main: stdin closed")
	}()

	tap.Start()
	defer tap.Stop()

	if err := coord.Run(ctx); err != nil {
		log.Printf("coordinator stopped: %v", err)
	}
}
