// Package suggest ranks recipient and integration candidates for the action
// editor and offers "did you mean" hints for the CLI, using Levenshtein distance.
package suggest

import (
	"context"
	"sort"
	"strings"

	"github.com/marcus/notif/internal/models"
)

// RecipientSource returns recipient names matching search
type RecipientSource func(ctx context.Context, search string) ([]string, error)

// IntegrationSource returns integrations of a type matching search
type IntegrationSource func(ctx context.Context, typ models.IntegrationType, search string) ([]models.Integration, error)

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// tier buckets a candidate: 0 prefix, 1 substring, 2 anything else
func tier(search, candidate string) int {
	switch {
	case strings.HasPrefix(candidate, search):
		return 0
	case strings.Contains(candidate, search):
		return 1
	default:
		return 2
	}
}

// Rank orders candidates for search: prefix matches first, then substring
// matches, then the rest by edit distance. Comparison ignores case. Ties keep
// their input order, and an empty search returns the input unchanged.
func Rank(search string, candidates []string) []string {
	out := make([]string, len(candidates))
	copy(out, candidates)
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return out
	}

	type scored struct {
		tier, dist int
	}
	scores := make(map[string]scored, len(out))
	for _, c := range out {
		lc := strings.ToLower(c)
		scores[c] = scored{tier(search, lc), levenshtein(search, lc)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := scores[out[i]], scores[out[j]]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.tier == 2 {
			return a.dist < b.dist
		}
		return false
	})
	return out
}

// RankIntegrations orders integrations by name the same way Rank orders strings
func RankIntegrations(search string, integrations []models.Integration) []models.Integration {
	names := make([]string, len(integrations))
	byName := make(map[string][]models.Integration, len(integrations))
	for i, in := range integrations {
		names[i] = in.Name
		byName[in.Name] = append(byName[in.Name], in)
	}

	out := make([]models.Integration, 0, len(integrations))
	for _, name := range dedupe(Rank(search, names)) {
		out = append(out, byName[name]...)
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Recipients fetches candidates from src and ranks them
func Recipients(ctx context.Context, src RecipientSource, search string) ([]string, error) {
	names, err := src(ctx, search)
	if err != nil {
		return nil, err
	}
	return Rank(search, names), nil
}

// Integrations fetches candidates from src and ranks them
func Integrations(ctx context.Context, src IntegrationSource, typ models.IntegrationType, search string) ([]models.Integration, error) {
	found, err := src(ctx, typ, search)
	if err != nil {
		return nil, err
	}
	return RankIntegrations(search, found), nil
}

// closest returns up to three of valid within edit distance of unknown
func closest(unknown string, valid []string, normalize func(string) string) []string {
	type scored struct {
		value string
		score int
	}
	var candidates []scored

	for _, v := range valid {
		dist := levenshtein(unknown, normalize(v))

		// Only suggest if reasonably close (within 3 edits or 50% of length)
		maxDist := max(3, len(unknown)/2)
		if dist <= maxDist {
			candidates = append(candidates, scored{v, dist})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	var result []string
	for i := 0; i < len(candidates) && i < 3; i++ {
		result = append(result, candidates[i].value)
	}
	return result
}

// Flag finds similar flags from a list of valid flags
// Returns suggestions sorted by similarity (best first)
func Flag(unknown string, validFlags []string) []string {
	trim := func(s string) string { return strings.TrimLeft(s, "-") }
	return closest(trim(unknown), validFlags, trim)
}

// Command finds similar command or value names, best first
func Command(unknown string, valid []string) []string {
	return closest(strings.ToLower(unknown), valid, strings.ToLower)
}

// CommonFlagAliases maps commonly attempted flags to their correct names
var CommonFlagAliases = map[string]string{
	"recipient":  "--email",
	"recipients": "--email",
	"to":         "--email",

	"webhook": "--integration",
	"hook":    "--integration",

	"delete": "--remove",
	"rm":     "--remove",

	"use-default": "--mode default",
	"mute":        "--mode mute",
	"custom":      "--mode custom",

	"version": "use: notif version",
	"v":       "use: notif version",
}

// GetFlagHint returns a hint for a commonly misused flag
func GetFlagHint(flag string) string {
	flag = strings.TrimLeft(flag, "-")
	flag = strings.ToLower(flag)

	if hint, ok := CommonFlagAliases[flag]; ok {
		return hint
	}
	return ""
}
