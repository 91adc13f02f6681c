package parser

import (
	"regexp"
	"strings"
)

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// FormatName turns an id into a display name: underscores become spaces and
// camel-case words are split. "RaptorEngine_3" becomes "Raptor Engine 3".
func FormatName(id string) string {
	s := strings.ReplaceAll(id, "_", " ")
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	return strings.Join(strings.Fields(s), " ")
}
