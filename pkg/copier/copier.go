// Copyright 2025 the ignorecopy authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package copier implements the recursive copy engine: depth-first traversal
// of the source tree, exclusion checks at every file and directory boundary,
// per-item error isolation, and progress accounting.
package copier

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ignorecopy/ignorecopy/pkg/filter"
	"github.com/ignorecopy/ignorecopy/pkg/progress"
)

// 🎯 Outcome is the tri-state result of a copy operation.
type Outcome int

const (
	OutcomeSuccess   Outcome = iota
	OutcomeCancelled         // user interrupt stopped the traversal
	OutcomeFailed            // unclassified critical error
)

// String returns a string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📊 Result summarizes one copy operation.
type Result struct {
	Outcome     Outcome
	TotalFiles  int      // pre-walk file count (filters not applied, see CountFiles)
	FilesCopied int      // files actually written to the destination
	Errors      []string // per-item errors, in encounter order
}

// ⚙️ Options configures a Copier.
type Options struct {
	Source      string // absolute, resolved source directory
	Destination string // absolute, resolved destination directory
	Verbose     bool

	// NewTracker overrides progress-tracker construction, for tests. When
	// nil, verbose mode gets a line printer and everything else a bar.
	NewTracker func(total int) progress.Tracker
}

// 🔧 Copier copies one directory tree, consulting exclusion rules at every
// node. One instance serves one operation; re-entrant or concurrent use of
// the same instance is not supported.
type Copier struct {
	source      string
	dest        string
	verbose     bool
	newTracker  func(total int) progress.Tracker
	filesCopied int
	errs        []string
}

// 🏭 New creates a copier for the given source and destination.
func New(opts Options) *Copier {
	newTracker := opts.NewTracker
	if newTracker == nil {
		if opts.Verbose {
			newTracker = func(total int) progress.Tracker {
				return progress.NewPrinter(os.Stdout, total)
			}
		} else {
			newTracker = func(total int) progress.Tracker {
				return progress.NewBar(total)
			}
		}
	}
	return &Copier{
		source:     filepath.Clean(opts.Source),
		dest:       filepath.Clean(opts.Destination),
		verbose:    opts.Verbose,
		newTracker: newTracker,
	}
}

// 🔢 CountFiles pre-walks the source tree and returns the number of files in
// it. Exclusion filtering is NOT applied here, so the reported total can
// exceed the number of files actually copied when marker files exclude
// anything. Unreadable subtrees are skipped; their contents surface as
// per-item errors during the copy pass instead.
func (c *Copier) CountFiles(_ bool) int {
	count := 0
	_ = filepath.WalkDir(c.source, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// 🏃 Copy runs the full operation: count, traverse, copy, summarize. The
// progress tracker is released on every exit path. Cancellation via ctx
// yields OutcomeCancelled; any unclassified error yields OutcomeFailed; no
// per-item failure ever aborts the walk.
func (c *Copier) Copy(ctx context.Context, ignoreFilters bool) Result {
	logger := zerolog.Ctx(ctx)
	c.filesCopied = 0
	c.errs = nil

	total := c.CountFiles(ignoreFilters)
	if total == 0 {
		return Result{Outcome: OutcomeSuccess}
	}

	resolver := filter.NewResolver(ctx, c.source, ignoreFilters)
	tracker := c.newTracker(total)
	defer tracker.Close()

	err := c.copyRecursive(ctx, c.source, c.dest, resolver, tracker)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		logger.Info().Msg("copy operation cancelled")
		return c.result(OutcomeCancelled, total)
	case err != nil:
		logger.Error().Err(err).Msg("critical error during copy operation")
		return c.result(OutcomeFailed, total)
	}
	return c.result(OutcomeSuccess, total)
}

func (c *Copier) result(outcome Outcome, total int) Result {
	return Result{
		Outcome:     outcome,
		TotalFiles:  total,
		FilesCopied: c.filesCopied,
		Errors:      c.errs,
	}
}

// 📂 copyRecursive copies the contents of src into dst depth-first. Failures
// scoped to one entry or one directory are recorded and the walk continues
// with siblings; only cancellation propagates upward.
func (c *Copier) copyRecursive(ctx context.Context, src, dst string, resolver *filter.Resolver, tracker progress.Tracker) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		c.recordError(ctx, errors.Errorf("creating directory %q: %w", dst, err))
		return nil
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		c.recordError(ctx, errors.Errorf("reading directory %q: %w", src, err))
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if resolver.DirExcluded(srcPath) {
				continue
			}
			if err := c.copyRecursive(ctx, srcPath, dstPath, resolver, tracker); err != nil {
				return err
			}
			continue
		}

		if resolver.FileExcluded(srcPath) {
			continue
		}
		c.copyFile(ctx, srcPath, dstPath, tracker)
	}

	return nil
}

// 📄 copyFile copies one file, preserving permission bits and modification
// time. A failed copy is recorded and still advances progress by one, so the
// processed count stays consistent with the precomputed total.
func (c *Copier) copyFile(ctx context.Context, src, dst string, tracker progress.Tracker) {
	if err := copyFileContents(src, dst); err != nil {
		c.recordError(ctx, errors.Errorf("copying %q: %w", src, err))
		tracker.Advance(1)
		return
	}

	c.filesCopied++
	if c.verbose {
		tracker.AdvanceWithMessage("Copied: "+filepath.Base(src), 1)
	} else {
		tracker.Advance(1)
	}
}

func copyFileContents(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("stating source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("opening destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("writing destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing destination: %w", err)
	}

	// Preserve metadata the way shutil.copy2 does: permission bits and
	// modification time.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Errorf("preserving mode: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("preserving mtime: %w", err)
	}
	return nil
}

func (c *Copier) recordError(ctx context.Context, err error) {
	c.errs = append(c.errs, err.Error())
	zerolog.Ctx(ctx).Warn().Err(err).Msg("per-item error, continuing")
}
