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

// Package log provides the user-facing console output for ignorecopy,
// backed by zerolog for structured logging.
package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 Logger handles structured logging with console output.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger writing user-facing output to console.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 Banner prints the source/destination header shown in verbose mode.
func (l *Logger) Banner(source, destination string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "Copying from: %s\n", color.New(color.FgCyan).Sprint(source))
	fmt.Fprintf(l.console, "Copying to:   %s\n", color.New(color.FgCyan).Sprint(destination))
	l.zlog.Info().Str("source", source).Str("destination", destination).Msg("starting copy")
}

// 📝 Info logs an info message.
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Summary prints the end-of-operation summary: files copied, error count,
// and (in verbose mode) each recorded error.
func (l *Logger) Summary(filesCopied int, errs []string, verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "\nCopy completed: %s\n",
		color.New(color.FgGreen).Sprintf("%d files copied", filesCopied))

	if len(errs) > 0 {
		fmt.Fprintf(l.console, "Errors encountered: %s\n",
			color.New(color.FgYellow).Sprintf("%d", len(errs)))
		if verbose {
			for _, e := range errs {
				fmt.Fprintf(l.console, "  Error: %s\n", e)
			}
		}
	}

	l.zlog.Info().
		Int("files_copied", filesCopied).
		Int("errors", len(errs)).
		Msg("copy operation complete")
}
