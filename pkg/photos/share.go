package photos

import "strings"

// roleAliases maps the spellings accepted in config files to the tokens the
// service expects.
var roleAliases = map[string]string{
	"downloader": "download",
	"download":   "download",
	"viewer":     "view",
	"view":       "view",
	"manager":    "manager",
	"editor":     "manager",
}

// NormalizeRole canonicalizes a permission or role token. Unknown tokens
// pass through unchanged so new DSM roles keep working without a code
// change. Empty tokens default to view.
func NormalizeRole(role string) string {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return "view"
	}
	if canonical, ok := roleAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// NormalizeRoles canonicalizes and deduplicates a role list, preserving
// first-seen order.
func NormalizeRoles(roles []string) []string {
	normalized := []string{}
	seen := map[string]struct{}{}
	for _, role := range roles {
		token := NormalizeRole(role)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		normalized = append(normalized, token)
	}
	return normalized
}
