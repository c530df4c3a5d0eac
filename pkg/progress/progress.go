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

// Package progress provides progress tracking for copy operations. The copy
// engine only depends on the Tracker interface and never on how progress is
// rendered.
package progress

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// 📈 Tracker receives progress updates during a copy operation. The total is
// fixed at construction; the current count only increases.
type Tracker interface {
	// Advance adds n processed items.
	Advance(n int)

	// AdvanceWithMessage adds n processed items and attaches a message to
	// the update (the filename just copied, typically).
	AdvanceWithMessage(msg string, n int)

	// Close releases any rendering resource. It must be called on every
	// exit path of the operation, including cancellation.
	Close()
}

// 📊 Bar renders progress as a terminal progress bar.
type Bar struct {
	bar *pterm.ProgressbarPrinter
}

// 🏭 NewBar starts a progress bar for total items.
func NewBar(total int) *Bar {
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Copying files").
		WithRemoveWhenDone(false).
		Start()
	return &Bar{bar: bar}
}

func (b *Bar) Advance(n int) {
	b.bar.Add(n)
}

func (b *Bar) AdvanceWithMessage(msg string, n int) {
	b.bar.UpdateTitle(msg)
	b.bar.Add(n)
}

func (b *Bar) Close() {
	_, _ = b.bar.Stop()
}

// 📝 Printer renders progress as plain "[current/total]" lines, used in
// verbose mode where a live bar would fight with the per-file output.
type Printer struct {
	w       io.Writer
	total   int
	current int
}

// 🏭 NewPrinter creates a line-based tracker writing to w.
func NewPrinter(w io.Writer, total int) *Printer {
	return &Printer{w: w, total: total}
}

func (p *Printer) Advance(n int) {
	p.current += n
}

func (p *Printer) AdvanceWithMessage(msg string, n int) {
	p.current += n
	fmt.Fprintf(p.w, "[%d/%d] %s\n", p.current, p.total, msg)
}

func (p *Printer) Close() {}
