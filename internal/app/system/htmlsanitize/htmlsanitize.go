// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict strips all markup; used for chat messages and single-line
	// fields where HTML has no business.
	strict = bluemonday.StrictPolicy()

	// description allows basic formatting in course and lesson
	// descriptions (paragraphs, emphasis, lists, links with forced
	// rel="nofollow").
	description = bluemonday.UGCPolicy()
)

// Text strips all HTML from s and trims whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Description sanitizes user-supplied rich text for course and lesson
// descriptions.
func Description(s string) string {
	return strings.TrimSpace(description.Sanitize(s))
}
