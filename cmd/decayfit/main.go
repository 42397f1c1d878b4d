// Command decayfit fits exponential decays to the envelopes of simulated
// magnetization ringdowns, one dataset folder at a time.
//
// Usage:
//
//	decayfit [flags] [folder ...]
//
// Without folder arguments every visible sub-folder of the data directory (or
// every common prefix below the S3 prefix) is visited in sorted order.
// Commands are read from stdin; type "help" for the list.
//
// Examples:
//
//	decayfit -dir ./runs
//	decayfit -channels 4 -component z run-01 run-02
//	DECAYFIT_SOURCE=s3 DECAYFIT_S3_BUCKET=sims decayfit -prefix 2024/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-decay/dataset"
	"github.com/cwbudde/algo-decay/internal/config"
	"github.com/cwbudde/algo-decay/measure/decay"
	"github.com/cwbudde/algo-decay/session"
)

type options struct {
	configFile string
	folders    []string
	set        map[string]bool

	dir       string
	source    string
	channels  int
	channel   int
	component string
	bucket    string
	prefix    string
	endpoint  string
	logLevel  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("decayfit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "config file (default ./decayfit.yaml if present)")
	fs.StringVar(&opts.dir, "dir", "", "data directory holding one folder per dataset")
	fs.StringVar(&opts.source, "source", "", "dataset source: fs or s3")
	fs.IntVar(&opts.channels, "channels", 0, "number of regions (oscillator channels) per table")
	fs.IntVar(&opts.channel, "channel", 0, "channel fitted after each load")
	fs.StringVar(&opts.component, "component", "", "magnetization component: x, y or z")
	fs.StringVar(&opts.bucket, "bucket", "", "S3 bucket")
	fs.StringVar(&opts.prefix, "prefix", "", "S3 key prefix")
	fs.StringVar(&opts.endpoint, "endpoint", "", "S3-compatible endpoint")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: decayfit [flags] [folder ...]\n\n")
		fmt.Fprintf(stderr, "Fits exponential decays to ringdown envelopes, one dataset at a time.\n")
		fmt.Fprintf(stderr, "Settings also come from decayfit.yaml and DECAYFIT_* variables.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.folders = fs.Args()
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	return opts, nil
}

// apply overrides cfg with the flags given on the command line.
func (o *options) apply(cfg *config.Config) {
	if o.set["dir"] {
		cfg.Data.Dir = o.dir
	}

	if o.set["source"] {
		cfg.Data.Source = o.source
	}

	if o.set["channels"] {
		cfg.Data.Channels = o.channels
	}

	if o.set["channel"] {
		cfg.Data.Channel = o.channel
	}

	if o.set["component"] {
		cfg.Data.Component = o.component
	}

	if o.set["bucket"] {
		cfg.S3.Bucket = o.bucket
	}

	if o.set["prefix"] {
		cfg.S3.Prefix = o.prefix
	}

	if o.set["endpoint"] {
		cfg.S3.Endpoint = o.endpoint
	}

	if o.set["log-level"] {
		cfg.Log.Level = o.logLevel
	}
}

func newLogger(cfg *config.Config, w io.Writer) (zerolog.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return zerolog.Nop(), err
	}

	if cfg.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	opts.apply(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, lister, err := openSource(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("open dataset source")
		return 1
	}

	folders := opts.folders
	if len(folders) == 0 {
		folders, err = lister.Folders(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("discover datasets")
			return 1
		}
	}

	if len(folders) == 0 {
		logger.Warn().Str("dir", cfg.Data.Dir).Msg("no datasets found")
		return 0
	}

	fitter := decay.NewFitter(
		decay.WithMaxIterations(cfg.Fit.MaxIterations),
		decay.WithTolerance(cfg.Fit.Tolerance),
	)

	loader := session.PipelineLoader{
		Source:    src,
		Channels:  cfg.Data.Channels,
		Component: cfg.Data.Component,
	}

	s := session.New(folders, loader, newConsole(stdout),
		session.WithLogger(logger),
		session.WithFitter(fitter),
		session.WithChannel(cfg.Data.Channel),
	)

	logger.Info().Str("session", s.ID().String()).Int("datasets", len(folders)).Msg("starting")

	if err := repl(ctx, s, stdin, stdout); err != nil {
		logger.Error().Err(err).Msg("session aborted")
		return 1
	}

	return 0
}

// openSource returns the dataset source and its folder lister.
func openSource(ctx context.Context, cfg *config.Config) (dataset.Source, folderLister, error) {
	if cfg.Data.Source == config.SourceS3 {
		src, err := dataset.NewS3Source(ctx, dataset.S3Config{
			Bucket:   cfg.S3.Bucket,
			Prefix:   cfg.S3.Prefix,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}

		return src, s3Lister{src}, nil
	}

	return dataset.DirSource{Root: cfg.Data.Dir}, dirLister{cfg.Data.Dir}, nil
}
