package subjects

import (
	"strings"

	"golang.org/x/text/width"

	"github.com/kanjisync/kanjisync/internal/subject"
)

// searchSeparator never occurs in a folded query, so a pattern cannot match across fields.
const searchSeparator = "\x1f"

// NormalizeQuery folds a search string the same way stored search text is folded:
// trimmed, width-folded, lowercased and with katakana mapped to hiragana.
func NormalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	q = width.Fold.String(q)
	q = strings.ToLower(q)
	q = subject.ToHiragana(q)
	return strings.ReplaceAll(q, searchSeparator, "")
}

func searchText(s subject.Subject) string {
	parts := []string{NormalizeQuery(s.Characters), NormalizeQuery(s.Slug)}
	for _, m := range s.Meanings {
		parts = append(parts, NormalizeQuery(m.Meaning))
	}
	for _, a := range s.AuxiliaryMeanings {
		if a.Type == subject.AuxiliaryWhitelist {
			parts = append(parts, NormalizeQuery(a.Meaning))
		}
	}
	for _, r := range subject.Readings(s) {
		parts = append(parts, NormalizeQuery(r.Reading))
	}
	return searchSeparator + strings.Join(parts, searchSeparator) + searchSeparator
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
