package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mdcite "github.com/alnah/go-mdcite"
	"github.com/alnah/go-mdcite/internal/config"
)

// runConvert handles the convert command.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positionalArgs, err := parseConvertFlags(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	// Load configuration: defaults < config file < environment < flags
	cfg, err := loadConfig(flags.common, env, logger)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	absolutizePaths(cfg)

	meta, err := parseMeta(flags.document.meta)
	if err != nil {
		return err
	}

	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	inputPath := positionalArgs[0]

	conv, err := newConverter(converterOptions(cfg, resolveCachePath(cfg, flags.cache.disabled), logger, env))
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	workers := mdcite.ResolveWorkers(flags.workers)
	logger.Debug("starting conversion", "input", inputPath, "mode", conv.Mode(), "workers", workers)

	params := &conversionParams{
		meta:         meta,
		metadataFile: absPath(flags.document.metadataFile),
	}

	build := func(ctx context.Context) (int, error) {
		files, err := discoverFiles(inputPath, cfg.Output.DefaultDir)
		if err != nil {
			return 0, fmt.Errorf("discovering files: %w", err)
		}
		if len(files) == 0 {
			return 0, fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
		}
		results := convertBatch(ctx, conv, workers, files, params)
		return printResults(results, flags.common.quiet, flags.common.verbose, env), nil
	}

	failed, err := build(ctx)
	if err != nil {
		return err
	}

	if flags.watch {
		return watchConvert(ctx, inputPath, cfg, flags, build, logger)
	}

	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed", failed)
	}
	return nil
}

// watchConvert rebuilds on change until ctx is canceled. Failures are
// reported and the session keeps running.
func watchConvert(ctx context.Context, inputPath string, cfg *config.Config, flags *convertFlags,
	build func(context.Context) (int, error), logger *slog.Logger,
) error {
	extra := append([]string{}, cfg.Citations.Bibliography...)
	extra = append(extra, cfg.Citations.CSL, absPath(flags.document.metadataFile))

	ws, err := newWatchSet(inputPath, extra, "")
	if err != nil {
		return err
	}

	return watchLoop(ctx, ws, func(ctx context.Context) {
		start := time.Now()
		if _, err := build(ctx); err != nil {
			logger.Error("rebuild failed", "error", err)
			return
		}
		logger.Debug("rebuild complete", "duration", time.Since(start).Round(time.Millisecond))
	}, logger)
}
