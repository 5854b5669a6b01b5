// Package mention pulls #tag and @person references out of free entry text.
package mention

import (
	"regexp"
	"sort"
	"strings"

	"github.com/totegamma/daybook/internal/domain"
)

// Extractor finds sigil-prefixed tokens. Token characters are letters, digits and underscore.
type Extractor struct {
	kind    domain.MentionKind
	pattern *regexp.Regexp
}

var (
	TagExtractor    = Extractor{kind: domain.MentionKindTag, pattern: regexp.MustCompile(`#(\w+)`)}
	PersonExtractor = Extractor{kind: domain.MentionKindPerson, pattern: regexp.MustCompile(`@(\w+)`)}
)

// For returns the extractor for a vocabulary kind.
func For(kind domain.MentionKind) Extractor {
	if kind == domain.MentionKindPerson {
		return PersonExtractor
	}
	return TagExtractor
}

func (x Extractor) Kind() domain.MentionKind {
	return x.kind
}

// Extract returns the distinct lowercased names referenced in content, sorted.
func (x Extractor) Extract(content string) []string {
	if content == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, match := range x.pattern.FindAllStringSubmatch(content, -1) {
		seen[strings.ToLower(match[1])] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
