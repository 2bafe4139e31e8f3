package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lucasveenman/trace/internal/domain/record"
)

// Score ladder. The first matching rule wins.
const (
	scoreExact         = 100
	scoreTitlePrefix   = 85
	scoreTitleContains = 70
	scoreSubPrefix     = 55
	scoreSubContains   = 40
	scoreTokenFloor    = 30
	scorePerToken      = 5
	entityMatchPenalty = 5
)

// normalize lowercases s and folds it to NFKD with combining marks removed,
// so "Café" and "cafe" compare equal.
func normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = norm.NFKD.String(s)
	}
	return strings.ToLower(folded)
}

// decompose lowercases s in NFKD form, keeping combining marks.
func decompose(s string) string {
	return strings.ToLower(norm.NFKD.String(s))
}

// baseScore scores a normalized query against a normalized (title, subtitle) pair.
func baseScore(q, title, sub string) int {
	if q == "" {
		return 0
	}
	switch {
	case title == q:
		return scoreExact
	case strings.HasPrefix(title, q):
		return scoreTitlePrefix
	case strings.Contains(title, q):
		return scoreTitleContains
	case strings.HasPrefix(sub, q):
		return scoreSubPrefix
	case strings.Contains(sub, q):
		return scoreSubContains
	}

	hits := 0
	for _, tk := range strings.Fields(q) {
		if strings.Contains(title, tk) || strings.Contains(sub, tk) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return scoreTokenFloor + hits*scorePerToken
}

// score ranks a record against a query already passed through fold: the
// better of its own fields and its entity's (name, subtitle), the latter
// lowered so an exact title match always wins over an indirect one.
func score(q string, r *record.Record, fold func(string) string) int {
	own := baseScore(q, fold(r.Title()), fold(r.Subtitle()))

	e := r.Entity()
	if e == nil {
		return own
	}
	name, sub := fold(e.Name()), fold(e.Subtitle())
	if name == "" && sub == "" {
		return own
	}
	viaEntity := max(0, baseScore(q, name, sub)-entityMatchPenalty)

	return max(own, viaEntity)
}
