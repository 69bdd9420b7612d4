package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/riadafridishibly/imgdedup/cache"
	"github.com/riadafridishibly/imgdedup/config"
	"github.com/riadafridishibly/imgdedup/engine"
	"github.com/riadafridishibly/imgdedup/imageload"
	"github.com/riadafridishibly/imgdedup/phash"
	"github.com/riadafridishibly/imgdedup/progress"
	"github.com/riadafridishibly/imgdedup/scanner"
	"github.com/riadafridishibly/imgdedup/sink"
	"github.com/riadafridishibly/imgdedup/tui"
)

func tempDir() string {
	if runtime.GOOS == "darwin" {
		return "/tmp"
	}
	return os.TempDir()
}

type options struct {
	configPath string
	jsonPath   string
	dbPath     string
	useDB      bool
	useTUI     bool
	quiet      bool
	flat       bool
	algorithm  string
	hashSize   int
	maxDim     uint
	tasks      int
	batch      int
}

func parseFlags() (*options, string) {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file")
	flag.StringVar(&o.jsonPath, "o", "", "write results as a JSON array to this file")
	flag.StringVar(&o.dbPath, "db", "", "SQLite database for results (default ~/.cache/imgdedup/hashes.db)")
	flag.BoolVar(&o.useDB, "cache", false, "store results in the SQLite database")
	flag.BoolVar(&o.useTUI, "tui", false, "show a full-screen progress view")
	flag.BoolVar(&o.quiet, "q", false, "only print per-file errors and the summary")
	flag.BoolVar(&o.flat, "flat", false, "do not descend into subdirectories")
	flag.StringVar(&o.algorithm, "algo", "", "hash algorithm: dct, average, difference")
	flag.IntVar(&o.hashSize, "size", 0, "hash size (bits per side)")
	flag.UintVar(&o.maxDim, "max-dim", 0, "downscale images whose longer side exceeds this")
	flag.IntVar(&o.tasks, "j", 0, "concurrent tasks")
	flag.IntVar(&o.batch, "batch", 0, "results per sink batch")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <dir>\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	rootDir := flag.Arg(0)
	if rootDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting current directory: %v\n", err)
			os.Exit(1)
		}
		rootDir = cwd
	}
	return &o, rootDir
}

// apply lets explicitly set flags win over file and env configuration.
func (o *options) apply(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output.JSONPath = o.jsonPath
		case "db":
			cfg.Output.DBPath = o.dbPath
		case "tui":
			cfg.UI.TUI = o.useTUI
		case "q":
			cfg.UI.Quiet = o.quiet
		case "flat":
			cfg.Recursive = !o.flat
		case "algo":
			cfg.Hash.Algorithm = o.algorithm
		case "size":
			cfg.Hash.Size = o.hashSize
		case "max-dim":
			cfg.Loader.MaxDimension = uint32(o.maxDim)
		case "j":
			cfg.Processing.MaxConcurrentTasks = o.tasks
		case "batch":
			cfg.Processing.BatchSize = o.batch
		}
	})
}

func main() {
	logFile, err := os.CreateTemp(tempDir(), "imgdedup-*.log")
	if err != nil {
		log.Fatalf("Error creating log file: %v", err)
	}
	log.SetFlags(log.Lshortfile | log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[IMGDUP] ")
	log.SetOutput(logFile)

	fmt.Println("Logfile is being written in:", logFile.Name())

	opts, rootDir := parseFlags()

	absPath, err := filepath.Abs(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving path %s: %v\n", rootDir, err)
		os.Exit(1)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Path does not exist: %s\n", absPath)
		os.Exit(1)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	opts.apply(cfg)
	if opts.useDB && cfg.Output.DBPath == "" {
		if cfg.Output.DBPath, err = cache.DefaultPath(); err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving cache path: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := run(absPath, cfg); err != nil {
		if engine.IsKind(err, engine.KindCanceled) {
			fmt.Fprintln(os.Stderr, "Canceled")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(root string, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hasher, err := phash.New(cfg.Hash.Algorithm, cfg.Hash.Size)
	if err != nil {
		return err
	}
	eng := engine.New(scanner.NewLocal(cfg.Recursive), imageload.New(cfg.Loader.MaxDimension), hasher)

	results, closeSinks, err := openSinks(root, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	log.Printf("Processing %s with %s/%d, %d tasks", root, cfg.Hash.Algorithm, cfg.Hash.Size, cfg.Processing.MaxConcurrentTasks)

	var summary *engine.Summary
	if cfg.UI.TUI {
		app := tui.NewApp(root, cfg.UI.Theme, cancel)
		app.SetProgressReporting(cfg.Processing.EnableProgressReporting)

		type outcome struct {
			summary *engine.Summary
			err     error
		}
		done := make(chan outcome, 1)
		go func() {
			s, err := eng.ProcessDirectory(ctx, root, &cfg.Processing, app, results)
			app.Finish(s, err)
			done <- outcome{s, err}
		}()

		uiErr := app.Run()
		// leaving the screen stops a run that is still going
		cancel()
		out := <-done
		if uiErr != nil {
			return uiErr
		}
		if out.err != nil {
			return out.err
		}
		summary = out.summary
	} else {
		summary, err = eng.ProcessDirectory(ctx, root, &cfg.Processing, progress.NewConsole(os.Stdout, cfg.UI.Quiet), results)
		if err != nil {
			return err
		}
	}

	printSummary(summary, cfg)
	return nil
}

func openSinks(root string, cfg *config.Config) (engine.ResultSink, func(), error) {
	var (
		sinks   []engine.ResultSink
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Printf("Error closing sink: %v", err)
			}
		}
	}

	if cfg.Output.JSONPath != "" {
		js, err := sink.NewJSONFile(cfg.Output.JSONPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.Output.JSONPath, err)
		}
		sinks = append(sinks, js)
		closers = append(closers, js.Close)
	}

	if cfg.Output.DBPath != "" {
		store, err := cache.Open(cfg.Output.DBPath, root)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open %s: %w", cfg.Output.DBPath, err)
		}
		log.Printf("Recording run %s in %s", store.RunID(), cfg.Output.DBPath)
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}

	if len(sinks) == 0 {
		fmt.Println("No output configured (-o or -cache), results will not be saved")
		return sink.NewMemory(), closeAll, nil
	}
	return sink.Multi(sinks...), closeAll, nil
}

func printSummary(s *engine.Summary, cfg *config.Config) {
	elapsed := time.Duration(s.TotalProcessingTimeMs) * time.Millisecond
	fmt.Printf("Hashed %s of %s images in %s (%s errors, %.2fms per image)\n",
		humanize.Comma(int64(s.ProcessedFiles)),
		humanize.Comma(int64(s.TotalFiles)),
		elapsed.Round(time.Millisecond),
		humanize.Comma(int64(s.ErrorCount)),
		s.AverageTimePerFileMs,
	)

	for _, p := range []string{cfg.Output.JSONPath, cfg.Output.DBPath} {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil {
			fmt.Printf("Wrote %s (%s)\n", p, humanize.Bytes(uint64(info.Size())))
		}
	}
}
