package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ignorecopy/ignorecopy/pkg/config"
	"github.com/ignorecopy/ignorecopy/pkg/copier"
	"github.com/ignorecopy/ignorecopy/pkg/log"
)

// errCancelled marks a user-interrupted copy so main can map it to a
// distinct exit status.
var errCancelled = errors.New("operation cancelled")

type rootFlags struct {
	configFile string
	ignoreCopy bool
	verbose    bool
	debug      bool
}

// NewRootCmd builds the ignorecopy command.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ignorecopy [SOURCE] [DESTINATION]",
		Short:         "Copy directory trees with .ignorecopy exclusions",
		Long:          "ignorecopy copies a directory tree, skipping files and directories\nthat match patterns declared in .ignorecopy marker files found within\nthe tree. Rules merge hierarchically from the copy root downward.\n\nSource and destination can also come from the config file; positional\narguments override it.",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd.Context(), flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.ignoreCopy, "ignore-copy", false, "override .ignorecopy filtering (copy everything)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "display detailed operation messages")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", config.DefaultFileName, "config file path")

	return cmd
}

// setupLogging configures zerolog based on flags.
func setupLogging(debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
}

func runCopy(ctx context.Context, flags *rootFlags, args []string) error {
	logger := setupLogging(flags.debug)
	ctx = logger.WithContext(ctx)

	// Config file supplies defaults for flags and paths; explicit flags and
	// positional arguments win.
	cfg, err := config.LoadOptional(ctx, flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	verbose := flags.verbose || cfg.Verbose
	ignoreFilters := flags.ignoreCopy || cfg.IgnoreFilters

	source := cfg.Source
	destination := cfg.Destination
	if len(args) >= 1 {
		source = args[0]
	}
	if len(args) == 2 {
		destination = args[1]
	}
	if source == "" || destination == "" {
		return errors.New("source and destination are required, as arguments or in the config file")
	}

	sourcePath, destPath, err := validatePaths(source, destination)
	if err != nil {
		return err
	}

	console := log.New(os.Stdout, logger)
	if verbose {
		console.Banner(sourcePath, destPath)
	}

	c := copier.New(copier.Options{
		Source:      sourcePath,
		Destination: destPath,
		Verbose:     verbose,
	})

	result := c.Copy(ctx, ignoreFilters)

	if result.TotalFiles == 0 && result.Outcome == copier.OutcomeSuccess {
		console.Info("No files to copy.")
		return nil
	}

	console.Summary(result.FilesCopied, result.Errors, verbose)

	switch result.Outcome {
	case copier.OutcomeCancelled:
		return errCancelled
	case copier.OutcomeFailed:
		return errors.New("copy operation failed")
	}
	return nil
}

// validatePaths resolves both paths, requires the source to be an existing
// directory, and pre-creates the destination.
func validatePaths(source, destination string) (string, string, error) {
	sourcePath, err := filepath.Abs(source)
	if err != nil {
		return "", "", errors.Errorf("resolving source path: %w", err)
	}
	destPath, err := filepath.Abs(destination)
	if err != nil {
		return "", "", errors.Errorf("resolving destination path: %w", err)
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", "", errors.Errorf("source directory %q does not exist", sourcePath)
	}
	if !info.IsDir() {
		return "", "", errors.Errorf("source %q is not a directory", sourcePath)
	}

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return "", "", errors.Errorf("cannot create destination directory %q: %w", destPath, err)
	}

	return sourcePath, destPath, nil
}
