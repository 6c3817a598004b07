package albums

import (
	"regexp"
	"strings"

	"albumsync/pkg/vpath"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Name derives the album name for a child folder under a root. Underscores
// become spaces and runs of whitespace collapse so folder naming quirks do
// not leak into album names.
func Name(rootLabel, childLabel string) string {
	root := strings.TrimSpace(rootLabel)
	child := strings.TrimSpace(childLabel)

	var base string
	switch {
	case root != "" && child != "":
		base = root + " - " + child
	case root != "":
		base = root
	default:
		base = child
	}
	base = whitespaceRun.ReplaceAllString(strings.ReplaceAll(base, "_", " "), " ")
	return strings.TrimSpace(base)
}

// folderLabel is the display label of an indexed folder: the last token of
// its virtual path.
func folderLabel(folder string) string {
	return vpath.Base(folder)
}
