package utils

import "strings"

// ParseTags splits free-form tag text on whitespace and keeps the tokens that
// carry a '#' prefix with at least one character behind it. Duplicates are
// dropped, first occurrence wins.
func ParseTags(tagText string) []string {
	var tags []string

	seen := make(map[string]bool)

	for _, token := range strings.Fields(tagText) {
		if !strings.HasPrefix(token, "#") || len(token) < 2 {
			continue
		}

		if seen[token] {
			continue
		}

		seen[token] = true
		tags = append(tags, token)
	}

	return tags
}
