// Package analysis runs the lint, format and test checks against a workspace
// and normalizes their output into findings.
package analysis

import (
	"path/filepath"
	"strings"

	"github.com/sevigo/code-sentry/internal/core"
)

// sourceFileExt limits diff scoping to the language this bot reviews.
const sourceFileExt = ".py"

// ScopeFiles filters changed paths down to the source files eligible for the
// lint and format checks, honoring per-repo exclusions. An empty result is
// valid and means "no relevant changes".
func ScopeFiles(changed []string, repoCfg *core.RepoConfig) []string {
	if repoCfg == nil {
		repoCfg = core.DefaultRepoConfig()
	}

	var scoped []string
	for _, path := range changed {
		if filepath.Ext(path) != sourceFileExt {
			continue
		}
		if inExcludedDir(path, repoCfg.ExcludeDirs) || hasExcludedExt(path, repoCfg.ExcludeExts) {
			continue
		}
		scoped = append(scoped, path)
	}
	return scoped
}

func inExcludedDir(path string, dirs []string) bool {
	if len(dirs) == 0 {
		return false
	}
	segments := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for _, dir := range dirs {
		for _, seg := range segments {
			if seg == dir {
				return true
			}
		}
	}
	return false
}

// hasExcludedExt matches exclusion entries as plain path suffixes, so both
// extension style (".pyi") and generated-file style ("_pb2.py") work. A
// leading dot on the entry is optional and carries no meaning of its own.
func hasExcludedExt(path string, exts []string) bool {
	for _, ext := range exts {
		suffix := strings.TrimPrefix(ext, ".")
		if suffix != "" && strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
