// Package vpath manipulates the virtual paths used by the Synology Photos
// index. Virtual paths always start with a slash, never end with one, and
// are compared case-insensitively while preserving the original casing for
// display.
package vpath

import "strings"

// Normalize converts a raw path into canonical virtual form: a single
// leading slash, no trailing slash, "/" for the empty path.
func Normalize(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

// Key returns the case-insensitive lookup key for a virtual path.
func Key(path string) string {
	return strings.ToLower(Normalize(path))
}

// NormalizeLabel canonicalizes a team-root label for comparison.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(label), "/"))
}

// Join appends a child token to a parent virtual path.
func Join(parent, child string) string {
	return Normalize(Normalize(parent) + "/" + strings.Trim(child, "/"))
}

// RelativeChild returns the first path token of `child` below `root`, or
// false when child is not strictly below root. The comparison is
// case-insensitive; the returned token preserves the child's casing.
func RelativeChild(child, root string) (string, bool) {
	childNorm := Normalize(child)
	rootNorm := Normalize(root)
	if strings.EqualFold(childNorm, rootNorm) {
		return "", false
	}
	prefix := strings.TrimSuffix(rootNorm, "/") + "/"
	if !strings.HasPrefix(strings.ToLower(childNorm), strings.ToLower(prefix)) {
		return "", false
	}
	remainder := childNorm[len(prefix):]
	if remainder == "" {
		return "", false
	}
	if idx := strings.Index(remainder, "/"); idx != -1 {
		remainder = remainder[:idx]
	}
	return remainder, true
}

// IsDirectChild reports whether `child` is exactly one level below `parent`,
// returning the child's final path token when it is.
func IsDirectChild(child, parent string) (string, bool) {
	token, ok := RelativeChild(child, parent)
	if !ok {
		return "", false
	}
	prefix := strings.TrimSuffix(Normalize(parent), "/") + "/"
	remainder := Normalize(child)[len(prefix):]
	if strings.Contains(remainder, "/") {
		return "", false
	}
	return token, true
}

// Base returns the final path token of a virtual path, or the empty string
// for the root path.
func Base(path string) string {
	norm := Normalize(path)
	if norm == "/" {
		return ""
	}
	return norm[strings.LastIndex(norm, "/")+1:]
}
