package core

import (
	"fmt"
	"sort"
	"strings"
)

// BotMarker tags comments authored by the bot so later runs can find and
// remove them. At most one live marker comment may exist per pull request;
// the reporter maintains that invariant, GitHub does not.
const BotMarker = "<!-- code-review-bot -->"

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one reported issue from a lint, format or test check. Findings
// are produced only by the analysis runner and never mutated afterwards.
type Finding struct {
	File     string
	Line     int // 1-based
	Column   int // 1-based
	Code     string
	Message  string
	Severity Severity
}

// ReviewResult holds the outcome of one analysis run against a head SHA.
type ReviewResult struct {
	Findings []Finding
}

// Success reports whether the run produced no findings.
func (r *ReviewResult) Success() bool { return len(r.Findings) == 0 }

// Add appends findings to the result.
func (r *ReviewResult) Add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// Sort orders findings by file, line, column and code so rendered comments
// are deterministic across runs.
func (r *ReviewResult) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
}

// RenderComment builds the marker-tagged PR comment body for this result.
func (r *ReviewResult) RenderComment() string {
	var sb strings.Builder
	sb.WriteString(BotMarker)
	sb.WriteString("\n## 🔍 Code Review Results\n\n")
	if r.Success() {
		sb.WriteString("✅ All checks passed!")
		return sb.String()
	}

	fmt.Fprintf(&sb, "❌ Found **%d** issue(s):\n\n", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&sb, "- `%s` **%d:%d** `%s` — %s\n", f.File, f.Line, f.Column, f.Code, f.Message)
	}
	return sb.String()
}
