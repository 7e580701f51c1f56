package core

// RepoConfig represents the structure of the .code-sentry.yml file a reviewed
// repository may carry to narrow the scoped file set.
type RepoConfig struct {
	// Exclusion of entire directories by name.
	// Example: ["vendor", "build", "docs"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Exclusion of files based on their extension.
	// The leading dot is optional. Example: [".pyi", "gen.py"]
	ExcludeExts []string `yaml:"exclude_exts"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		ExcludeDirs: []string{},
		ExcludeExts: []string{},
	}
}
