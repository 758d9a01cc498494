package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// Slugify turns a title into a URL-safe slug.
func Slugify(s string) string {
	return slug.Make(strings.TrimSpace(s))
}
