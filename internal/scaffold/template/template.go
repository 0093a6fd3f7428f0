package template

import (
	"strings"

	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

// Substitute replaces every literal occurrence of token in content with
// replacement. The replacement is never scanned again, so a project name that
// happens to contain the token cannot cause repeated expansion. An empty
// token leaves content untouched.
func Substitute(content, token, replacement string) string {
	if token == "" || !strings.Contains(content, token) {
		return content
	}
	return strings.ReplaceAll(content, token, replacement)
}

// ReplacePlaceholder substitutes the project name for the placeholder token.
func ReplacePlaceholder(content string, ctx *types.ScaffoldContext) string {
	return Substitute(content, types.Placeholder, ctx.ProjectName)
}
