package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy

	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// SanitizeMessage strips every tag from a validation or server message and
// collapses whitespace. The result is plain text, still subject to template
// escaping.
func SanitizeMessage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	cleaned := html.UnescapeString(messagePolicy.Sanitize(trimmed))
	return strings.Join(strings.Fields(cleaned), " ")
}

// SanitizeHelp keeps a small inline subset (emphasis, code, links) in help
// text authored in definitions.
func SanitizeHelp(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		helpPolicy = policy
	})
	return strings.TrimSpace(helpPolicy.Sanitize(trimmed))
}
