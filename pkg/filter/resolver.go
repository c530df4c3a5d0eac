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
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// 🔧 Resolver answers exclusion queries for paths under a single copy root.
// It lazily discovers marker files from the root down to each directory,
// merges their rules root-to-leaf, and caches the merged set per directory.
//
// A Resolver is owned by one copy operation and is not safe for concurrent
// use. Every path passed to it must be a descendant of the base root.
type Resolver struct {
	baseRoot  string
	ignoreAll bool
	cache     map[string]*RuleSet
	logger    *zerolog.Logger
}

// 🏭 NewResolver creates a resolver rooted at baseRoot. With ignoreAll set,
// every query reports "not excluded" regardless of marker-file content.
func NewResolver(ctx context.Context, baseRoot string, ignoreAll bool) *Resolver {
	return &Resolver{
		baseRoot:  filepath.Clean(baseRoot),
		ignoreAll: ignoreAll,
		cache:     make(map[string]*RuleSet),
		logger:    zerolog.Ctx(ctx),
	}
}

// 🔍 RulesFor returns the merged rule set applying to dir: the union of all
// marker files from the base root down to dir, inclusive. Results are cached
// per directory; marker files are assumed static during one operation.
func (r *Resolver) RulesFor(dir string) *RuleSet {
	if r.ignoreAll {
		return NewRuleSet()
	}

	dir = filepath.Clean(dir)
	if cached, ok := r.cache[dir]; ok {
		return cached
	}

	// Collect marker files walking upward, bounded by the base root.
	var markers []string
	for cur := dir; ; {
		marker := filepath.Join(cur, MarkerFileName)
		if info, err := os.Stat(marker); err == nil && info.Mode().IsRegular() {
			markers = append(markers, marker)
		}
		if cur == r.baseRoot {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	// Build root-to-leaf and union everything into one merged set.
	merged := NewRuleSet()
	for i := len(markers) - 1; i >= 0; i-- {
		rs := LoadMarkerFile(markers[i])
		merged.merge(rs)
		r.logger.Debug().
			Str("marker", markers[i]).
			Int("patterns", len(rs.Patterns)).
			Int("dir_patterns", len(rs.DirPatterns)).
			Msg("loaded marker file")
	}

	r.cache[dir] = merged
	return merged
}

// 🔍 FileExcluded reports whether the file at path is excluded by the rules
// applying to its parent directory. The file's path relative to the base
// root, its bare name, and each of its ancestor directories (relative to the
// root) are checked against the generic patterns; directory-only patterns do
// not apply to files.
func (r *Resolver) FileExcluded(path string) bool {
	rules := r.RulesFor(filepath.Dir(path))
	if len(rules.Patterns) == 0 {
		return false
	}

	rel, ok := r.relativeTo(path)
	if !ok {
		return false
	}
	name := filepath.Base(path)
	ancestors := ancestorPaths(rel)

	for pattern := range rules.Patterns {
		if Match(rel, pattern) || Match(name, pattern) {
			r.logFilterHit(path, pattern)
			return true
		}
		for _, parent := range ancestors {
			if Match(parent, pattern) {
				r.logFilterHit(path, pattern)
				return true
			}
		}
	}
	return false
}

// 🔍 DirExcluded reports whether the directory at path is excluded by the
// rules applying to its parent. Both directory-only and generic patterns are
// consulted, against the directory's relative path and its bare name.
func (r *Resolver) DirExcluded(path string) bool {
	rules := r.RulesFor(filepath.Dir(path))
	if rules.Empty() {
		return false
	}

	rel, ok := r.relativeTo(path)
	if !ok {
		return false
	}
	name := filepath.Base(path)

	for pattern := range rules.DirPatterns {
		if Match(rel, pattern) || Match(name, pattern) {
			r.logFilterHit(path, pattern+"/")
			return true
		}
	}
	for pattern := range rules.Patterns {
		if Match(rel, pattern) || Match(name, pattern) {
			r.logFilterHit(path, pattern)
			return true
		}
	}
	return false
}

// relativeTo expresses path relative to the base root with forward slashes.
// A path that cannot be made relative fails open: the caller treats it as
// not excluded rather than blocking a copy over a path anomaly.
func (r *Resolver) relativeTo(path string) (string, bool) {
	rel, err := filepath.Rel(r.baseRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ancestorPaths returns the slash-separated ancestor directories of rel,
// nearest first: "a/b/c.txt" yields ["a/b", "a"].
func ancestorPaths(rel string) []string {
	var out []string
	for {
		i := strings.LastIndex(rel, "/")
		if i < 0 {
			return out
		}
		rel = rel[:i]
		out = append(out, rel)
	}
}

func (r *Resolver) logFilterHit(path, pattern string) {
	r.logger.Debug().Str("path", path).Str("pattern", pattern).Msg("excluded by pattern")
}
