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

package filter

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// 📄 MarkerFileName is the reserved per-directory marker file holding
// exclusion patterns for that directory and its descendants.
const MarkerFileName = ".ignorecopy"

// 🔍 Match reports whether candidate matches pattern using shell-style glob
// semantics (*, ?, [seq]). Invalid patterns never match.
func Match(candidate, pattern string) bool {
	ok, err := doublestar.Match(pattern, candidate)
	if err != nil {
		return false
	}
	return ok
}

// 📦 RuleSet holds the exclusion patterns contributed by one or more marker
// files. Patterns apply to files and directories; DirPatterns apply to
// directories only. A RuleSet is immutable once returned by a constructor.
type RuleSet struct {
	Patterns    map[string]struct{} // generic patterns
	DirPatterns map[string]struct{} // directory-only patterns (stored without trailing slash)
}

// 🏭 NewRuleSet creates an empty rule set that matches nothing.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		Patterns:    make(map[string]struct{}),
		DirPatterns: make(map[string]struct{}),
	}
}

// 📝 ParseRules builds a rule set from marker-file lines.
//
// Per-line rules:
//   - lines are trimmed; blank lines and "#" comments are skipped
//   - a leading "/" is stripped (gitignore compatibility)
//   - a trailing "/" marks a directory-only pattern
func ParseRules(r io.Reader) *RuleSet {
	rs := NewRuleSet()
	s := bufio.NewScanner(r)
	for s.Scan() {
		rs.addLine(s.Text())
	}
	// Scanner errors mean a truncated marker file; whatever parsed cleanly
	// still counts.
	return rs
}

// LoadMarkerFile reads patterns from the marker file at path. Missing,
// unreadable, or undecodable files contribute zero rules and are never
// reported as errors.
func LoadMarkerFile(path string) *RuleSet {
	f, err := os.Open(path)
	if err != nil {
		return NewRuleSet()
	}
	defer f.Close()
	return ParseRules(f)
}

func (rs *RuleSet) addLine(line string) {
	pattern := strings.TrimSpace(line)

	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}
	if !utf8.ValidString(pattern) {
		return
	}

	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "" {
		return
	}

	if trimmed, ok := strings.CutSuffix(pattern, "/"); ok {
		if trimmed != "" {
			rs.DirPatterns[trimmed] = struct{}{}
		}
		return
	}
	rs.Patterns[pattern] = struct{}{}
}

// merge unions other's patterns into rs. Only used while a merged set is
// under construction by the resolver.
func (rs *RuleSet) merge(other *RuleSet) {
	for p := range other.Patterns {
		rs.Patterns[p] = struct{}{}
	}
	for p := range other.DirPatterns {
		rs.DirPatterns[p] = struct{}{}
	}
}

// Empty reports whether the rule set contains no patterns at all.
func (rs *RuleSet) Empty() bool {
	return len(rs.Patterns) == 0 && len(rs.DirPatterns) == 0
}
