// Package subject defines the learnable units mirrored from the remote
// service: radicals, kanji, vocabulary and kana-only vocabulary.
//
// A Subject is a tagged variant. Kind is the only discriminant; the variant
// predicates below never look at which fields happen to be populated.
package subject

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the variant tag of a Subject. Values match the remote "object" field.
type Kind string

const (
	KindRadical        Kind = "radical"
	KindKanji          Kind = "kanji"
	KindVocabulary     Kind = "vocabulary"
	KindKanaVocabulary Kind = "kana_vocabulary"
)

// Kinds lists every variant in display order.
var Kinds = []Kind{KindRadical, KindKanji, KindVocabulary, KindKanaVocabulary}

// ParseKind maps a remote object name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRadical, KindKanji, KindVocabulary, KindKanaVocabulary:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// AuxiliaryType marks an auxiliary meaning as an extra accepted or rejected answer.
type AuxiliaryType string

const (
	AuxiliaryWhitelist AuxiliaryType = "whitelist"
	AuxiliaryBlacklist AuxiliaryType = "blacklist"
)

// ReadingType is the phonetic category of a kanji reading.
type ReadingType string

const (
	ReadingOnyomi  ReadingType = "onyomi"
	ReadingKunyomi ReadingType = "kunyomi"
	ReadingNanori  ReadingType = "nanori"
)

var (
	ErrUnknownKind       = errors.New("unknown subject kind")
	ErrMissingCharacters = errors.New("subject has no characters")
	ErrMultiplePrimary   = errors.New("subject has more than one primary meaning")
	ErrFieldNotAllowed   = errors.New("field not valid for subject kind")
	ErrInvalidID         = errors.New("subject id must be positive")
)

type Meaning struct {
	Meaning        string `json:"meaning"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
}

type AuxiliaryMeaning struct {
	Meaning string        `json:"meaning"`
	Type    AuxiliaryType `json:"type"`
}

type Reading struct {
	Reading        string      `json:"reading"`
	Primary        bool        `json:"primary"`
	AcceptedAnswer bool        `json:"accepted_answer"`
	Type           ReadingType `json:"type,omitempty"`
}

type ContextSentence struct {
	Ja string `json:"ja"`
	En string `json:"en"`
}

// CharacterImage is a rendered glyph for radicals that have no Unicode character.
type CharacterImage struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// Subject is one learnable unit.
//
// Readings are only meaningful for kanji and vocabulary, ContextSentences for
// the two vocabulary kinds, CharacterImages for radicals. Validate enforces this.
type Subject struct {
	ID         int64  `json:"id"`
	Kind       Kind   `json:"object"`
	Characters string `json:"characters,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Level      int    `json:"level"`
	ColorHint  string `json:"associated_color_hint,omitempty"`

	Meanings          []Meaning          `json:"meanings"`
	AuxiliaryMeanings []AuxiliaryMeaning `json:"auxiliary_meanings,omitempty"`
	Readings          []Reading          `json:"readings,omitempty"`
	ContextSentences  []ContextSentence  `json:"context_sentences,omitempty"`
	CharacterImages   []CharacterImage   `json:"character_images,omitempty"`

	MeaningMnemonic string   `json:"meaning_mnemonic,omitempty"`
	ReadingMnemonic string   `json:"reading_mnemonic,omitempty"`
	PartsOfSpeech   []string `json:"parts_of_speech,omitempty"`
	DocumentURL     string   `json:"document_url,omitempty"`
	LessonPosition  int      `json:"lesson_position"`

	ComponentSubjectIDs       []int64 `json:"component_subject_ids,omitempty"`
	AmalgamationSubjectIDs    []int64 `json:"amalgamation_subject_ids,omitempty"`
	VisuallySimilarSubjectIDs []int64 `json:"visually_similar_subject_ids,omitempty"`

	HiddenAt       *time.Time `json:"hidden_at,omitempty"`
	DataUpdatedAt  time.Time  `json:"data_updated_at"`
	LastHydratedAt time.Time  `json:"last_hydrated_at"`
}

func (s Subject) IsRadical() bool        { return s.Kind == KindRadical }
func (s Subject) IsKanji() bool          { return s.Kind == KindKanji }
func (s Subject) IsVocabulary() bool     { return s.Kind == KindVocabulary }
func (s Subject) IsKanaVocabulary() bool { return s.Kind == KindKanaVocabulary }

// IsHidden reports whether the remote service has retired the subject.
func (s Subject) IsHidden() bool { return s.HiddenAt != nil }

// DisplayCharacters returns the glyph, or the slug for image-only radicals.
func (s Subject) DisplayCharacters() string {
	if s.Characters != "" {
		return s.Characters
	}
	return s.Slug
}

// Validate checks the variant invariants of a subject.
func (s Subject) Validate() error {
	if s.ID <= 0 {
		return ErrInvalidID
	}
	if _, err := ParseKind(string(s.Kind)); err != nil {
		return err
	}
	if s.Characters == "" && !s.IsRadical() {
		return fmt.Errorf("%w: %s %d", ErrMissingCharacters, s.Kind, s.ID)
	}
	if len(s.Readings) > 0 && !s.IsKanji() && !s.IsVocabulary() {
		return fmt.Errorf("%w: readings on %s", ErrFieldNotAllowed, s.Kind)
	}
	if len(s.ContextSentences) > 0 && !s.IsVocabulary() && !s.IsKanaVocabulary() {
		return fmt.Errorf("%w: context sentences on %s", ErrFieldNotAllowed, s.Kind)
	}
	if len(s.CharacterImages) > 0 && !s.IsRadical() {
		return fmt.Errorf("%w: character images on %s", ErrFieldNotAllowed, s.Kind)
	}

	var primary int
	var accepted bool
	for _, m := range s.Meanings {
		if m.Primary {
			primary++
		}
		if m.AcceptedAnswer {
			accepted = true
		}
	}
	if accepted && primary > 1 {
		return fmt.Errorf("%w: %d", ErrMultiplePrimary, s.ID)
	}
	return nil
}
