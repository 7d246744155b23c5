package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mdcite "github.com/alnah/go-mdcite"
)

// runMetadata handles the metadata command: it prints the merged metadata
// of one document as YAML front matter.
func runMetadata(ctx context.Context, args []string, env *Environment) error {
	flags, positionalArgs, err := parseMetadataFlags(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	inputPath := positionalArgs[0]

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	cfg, err := loadConfig(flags.common, env, logger)
	if err != nil {
		return err
	}
	mergeDocumentFlags(flags.document, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	meta, err := parseMeta(flags.document.meta)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	opts := []mdcite.Option{
		mdcite.WithMode(cfg.Mode),
		mdcite.WithTransforms(cfg.Transforms.Enabled),
		mdcite.WithCitations(false),
		mdcite.WithMetadata(configMetadata(cfg)),
		mdcite.WithLogger(logger),
	}
	if env.Now != nil {
		opts = append(opts, mdcite.WithClock(env.Now))
	}
	conv, err := newConverter(opts)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	res, err := conv.Convert(ctx, mdcite.Input{
		Markdown:     string(content),
		SourceDir:    filepath.Dir(inputPath),
		MetadataFile: absPath(flags.document.metadataFile),
		Metadata:     meta,
	})
	if err != nil {
		return err
	}
	logger.Debug("metadata extracted", "format", res.MetadataFormat, "keys", len(res.Metadata))

	front, err := res.Metadata.FrontMatter()
	if err != nil {
		return fmt.Errorf("rendering front matter: %w", err)
	}
	fmt.Fprint(env.Stdout, front)
	if flags.body {
		fmt.Fprint(env.Stdout, res.Markdown)
	}
	return nil
}
