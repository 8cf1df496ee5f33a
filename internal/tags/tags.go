// Package tags canonicalizes free-text skill/interest/tag lists.
package tags

import "strings"

// Canonicalize normalizes an ordered sequence of labels into a canonical set:
// lowercased, trimmed, empties dropped, duplicates removed. Output preserves
// first-seen insertion order so iteration stays deterministic within a run.
// Canonicalizing an already canonical set yields the same set.
func Canonicalize(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		v := strings.ToLower(strings.TrimSpace(label))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ToSet converts a canonical slice into a membership set for overlap scoring.
func ToSet(canonical []string) map[string]struct{} {
	set := make(map[string]struct{}, len(canonical))
	for _, v := range canonical {
		set[v] = struct{}{}
	}
	return set
}

// Overlap counts how many canonicalized entries of labels are present in set.
// Labels are canonicalized first so stored values and request values compare
// on the same form.
func Overlap(labels []string, set map[string]struct{}) int {
	n := 0
	for _, v := range Canonicalize(labels) {
		if _, ok := set[v]; ok {
			n++
		}
	}
	return n
}
