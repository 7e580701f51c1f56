package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-sentry/internal/core"
)

func TestScopeFilesSourceFilesOnly(t *testing.T) {
	changed := []string{"app.py", "README.md", "src/util.py", "assets/logo.png"}

	scoped := ScopeFiles(changed, nil)
	assert.Equal(t, []string{"app.py", "src/util.py"}, scoped)
}

func TestScopeFilesExclusions(t *testing.T) {
	cfg := &core.RepoConfig{
		ExcludeDirs: []string{"migrations"},
		ExcludeExts: []string{"_pb2.py"},
	}
	changed := []string{
		"app.py",
		"migrations/0001_init.py",
		"src/migrations/0002_users.py",
		"proto/service_pb2.py",
	}

	scoped := ScopeFiles(changed, cfg)
	assert.Equal(t, []string{"app.py"}, scoped)
}

func TestScopeFilesExtWithoutDot(t *testing.T) {
	cfg := &core.RepoConfig{ExcludeExts: []string{"pyi.py"}}

	scoped := ScopeFiles([]string{"stubs/mod.pyi.py", "app.py"}, cfg)
	assert.Equal(t, []string{"app.py"}, scoped)
}

func TestScopeFilesExtEntryStyles(t *testing.T) {
	// Dotted and dotless entries must behave identically: the entry is a
	// suffix, the leading dot is decoration.
	tests := []struct {
		name string
		exts []string
	}{
		{"dotless suffix", []string{"_gen.py"}},
		{"dotted suffix", []string{"._gen.py"}},
	}

	changed := []string{"models_gen.py", "app.py"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &core.RepoConfig{ExcludeExts: tt.exts}
			assert.Equal(t, []string{"app.py"}, ScopeFiles(changed, cfg))
		})
	}
}

func TestScopeFilesEmpty(t *testing.T) {
	assert.Empty(t, ScopeFiles(nil, nil))
	assert.Empty(t, ScopeFiles([]string{"docs/index.rst"}, nil))
}
