package subjectcache

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/kanjisync/kanjisync/internal/subject"
)

// ErrLookupUnavailable is returned by LookupSentence when no analyzer is configured.
var ErrLookupUnavailable = errors.New("sentence lookup is not enabled")

// Parts of speech that never name a subject worth looking up.
var skippedPOS = map[string]bool{
	"助詞":  true,
	"助動詞": true,
	"記号":  true,
}

// Token is one morpheme of analyzed Japanese text.
type Token struct {
	Surface  string `json:"surface"`
	BaseForm string `json:"base_form"`
	Reading  string `json:"reading,omitempty"`
	POS      string `json:"pos,omitempty"`
}

// Analyzer splits Japanese text into tokens with base forms.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer loads the IPA dictionary. Loading takes a noticeable moment, so
// build one analyzer per process.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze returns the content tokens of text. Readings are in hiragana.
func (a *Analyzer) Analyze(text string) []Token {
	var out []Token
	for _, tok := range a.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}

		// IPA features: 0 POS, 6 base form, 7 reading.
		features := tok.Features()
		t := Token{Surface: tok.Surface, BaseForm: tok.Surface}
		if len(features) > 0 {
			t.POS = features[0]
		}
		if len(features) > 6 && features[6] != "*" {
			t.BaseForm = features[6]
		}
		if len(features) > 7 && features[7] != "*" {
			t.Reading = subject.ToHiragana(features[7])
		}
		out = append(out, t)
	}
	return out
}

// LookupMatch is a token of the looked-up text with the hydrated subjects it names.
type LookupMatch struct {
	Token    Token             `json:"token"`
	Subjects []subject.Subject `json:"subjects"`
}

// LookupSentence finds hydrated vocabulary whose characters equal a token's
// surface or base form, and kanji for each kanji character of a token. Matches
// are in text order and each subject appears once.
func (s *Service) LookupSentence(ctx context.Context, text string) ([]LookupMatch, error) {
	if s.analyzer == nil {
		return nil, ErrLookupUnavailable
	}

	tokens := s.analyzer.Analyze(text)
	var candidates []string
	seenCandidate := map[string]bool{}
	add := func(c string) {
		if c != "" && !seenCandidate[c] {
			seenCandidate[c] = true
			candidates = append(candidates, c)
		}
	}

	var content []Token
	for _, tok := range tokens {
		if skippedPOS[tok.POS] {
			continue
		}
		content = append(content, tok)
		add(tok.Surface)
		add(tok.BaseForm)
		for _, r := range tok.Surface {
			if unicode.Is(unicode.Han, r) {
				add(string(r))
			}
		}
	}
	if len(candidates) == 0 {
		return []LookupMatch{}, nil
	}

	found, err := s.store.FindByCharacters(ctx, candidates)
	if err != nil {
		return nil, err
	}
	byChars := make(map[string][]subject.Subject, len(found))
	for _, subj := range found {
		byChars[subj.Characters] = append(byChars[subj.Characters], subj)
	}

	matches := []LookupMatch{}
	used := map[int64]bool{}
	for _, tok := range content {
		var hits []subject.Subject
		take := func(list []subject.Subject, keep func(subject.Subject) bool) {
			for _, subj := range list {
				if used[subj.ID] || !keep(subj) {
					continue
				}
				used[subj.ID] = true
				hits = append(hits, subj)
			}
		}
		isWord := func(subj subject.Subject) bool { return subj.IsVocabulary() || subj.IsKanaVocabulary() }
		take(byChars[tok.Surface], isWord)
		take(byChars[tok.BaseForm], isWord)
		for _, r := range tok.Surface {
			take(byChars[string(r)], subject.Subject.IsKanji)
		}
		if len(hits) > 0 {
			matches = append(matches, LookupMatch{Token: tok, Subjects: hits})
		}
	}
	return matches, nil
}
