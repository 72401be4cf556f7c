package event

import "strings"

// Topic represents a hierarchical event type using dot notation.
type Topic string

// Wildcard constants for pattern matching.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid returns true if the topic is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether t matches pattern. In a pattern "*" stands for
// one segment and "**" for any number of segments, none included.
func (t Topic) Matches(pattern Topic) bool {
	if !strings.Contains(string(pattern), WildcardSingle) {
		return t == pattern
	}
	return match(t.Segments(), pattern.Segments())
}

func match(segs, pat []string) bool {
	for len(pat) > 0 {
		switch p := pat[0]; {
		case p == WildcardMulti:
			for i := len(segs); i >= 0; i-- {
				if match(segs[i:], pat[1:]) {
					return true
				}
			}
			return false
		case len(segs) == 0:
			return false
		case p != WildcardSingle && p != segs[0]:
			return false
		}
		segs, pat = segs[1:], pat[1:]
	}
	return len(segs) == 0
}
