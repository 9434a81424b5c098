// internal/app/system/sanitize/sanitize.go
// Package sanitize strips markup from user-supplied free text before it
// is persisted. Request messages, fabric names and descriptions, and
// status-change notes all pass through here.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
