package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewResultSuccess(t *testing.T) {
	result := &ReviewResult{}
	assert.True(t, result.Success())

	result.Add(Finding{File: "a.py", Line: 1, Column: 1, Code: "E501"})
	assert.False(t, result.Success())
}

func TestReviewResultSort(t *testing.T) {
	result := &ReviewResult{}
	result.Add(
		Finding{File: "b.py", Line: 3, Column: 1, Code: "E501"},
		Finding{File: "a.py", Line: 10, Column: 2, Code: "F401"},
		Finding{File: "a.py", Line: 10, Column: 1, Code: "W291"},
		Finding{File: "a.py", Line: 1, Column: 1, Code: "FORMAT"},
	)
	result.Sort()

	var order []string
	for _, f := range result.Findings {
		order = append(order, f.File+":"+f.Code)
	}
	assert.Equal(t, []string{"a.py:FORMAT", "a.py:W291", "a.py:F401", "b.py:E501"}, order)
}

func TestRenderComment(t *testing.T) {
	result := &ReviewResult{}
	result.Add(Finding{
		File:     "src/app.py",
		Line:     7,
		Column:   3,
		Code:     "F401",
		Message:  "'os' imported but unused",
		Severity: SeverityError,
	})

	body := result.RenderComment()
	assert.True(t, strings.HasPrefix(body, BotMarker), "comment must start with the bot marker")
	assert.Contains(t, body, "## 🔍 Code Review Results")
	assert.Contains(t, body, "Found **1** issue(s)")
	assert.Contains(t, body, "- `src/app.py` **7:3** `F401` — 'os' imported but unused")
}

func TestRenderCommentClean(t *testing.T) {
	body := (&ReviewResult{}).RenderComment()
	assert.Contains(t, body, BotMarker)
	assert.Contains(t, body, "✅ All checks passed!")
}
