package wanikani

import (
	"fmt"

	"github.com/kanjisync/kanjisync/internal/subject"
)

// ToSubject maps one API resource to the local subject model. The variant is
// taken from the resource's object field.
func ToSubject(r SubjectResource) (subject.Subject, error) {
	kind, err := subject.ParseKind(r.Object)
	if err != nil {
		return subject.Subject{}, fmt.Errorf("subject %d: %w", r.ID, err)
	}

	d := r.Data
	s := subject.Subject{
		ID:                        r.ID,
		Kind:                      kind,
		Slug:                      d.Slug,
		Level:                     d.Level,
		MeaningMnemonic:           d.MeaningMnemonic,
		ReadingMnemonic:           d.ReadingMnemonic,
		PartsOfSpeech:             d.PartsOfSpeech,
		DocumentURL:               d.DocumentURL,
		LessonPosition:            d.LessonPosition,
		ComponentSubjectIDs:       d.ComponentSubjectIDs,
		AmalgamationSubjectIDs:    d.AmalgamationSubjectIDs,
		VisuallySimilarSubjectIDs: d.VisuallySimilarSubjectIDs,
		HiddenAt:                  d.HiddenAt,
		DataUpdatedAt:             r.DataUpdatedAt,
	}
	if d.Characters != nil {
		s.Characters = *d.Characters
	}

	for _, m := range d.Meanings {
		s.Meanings = append(s.Meanings, subject.Meaning{
			Meaning:        m.Meaning,
			Primary:        m.Primary,
			AcceptedAnswer: m.AcceptedAnswer,
		})
	}
	for _, a := range d.AuxiliaryMeanings {
		s.AuxiliaryMeanings = append(s.AuxiliaryMeanings, subject.AuxiliaryMeaning{
			Meaning: a.Meaning,
			Type:    subject.AuxiliaryType(a.Type),
		})
	}

	// Variant-specific fields are only carried under their own tag.
	if s.IsKanji() || s.IsVocabulary() {
		for _, rd := range d.Readings {
			s.Readings = append(s.Readings, subject.Reading{
				Reading:        rd.Reading,
				Primary:        rd.Primary,
				AcceptedAnswer: rd.AcceptedAnswer,
				Type:           subject.ReadingType(rd.Type),
			})
		}
	}
	if s.IsVocabulary() || s.IsKanaVocabulary() {
		for _, cs := range d.ContextSentences {
			s.ContextSentences = append(s.ContextSentences, subject.ContextSentence{Ja: cs.Ja, En: cs.En})
		}
	}
	if s.IsRadical() {
		for _, img := range d.CharacterImages {
			s.CharacterImages = append(s.CharacterImages, subject.CharacterImage{URL: img.URL, ContentType: img.ContentType})
		}
	}

	return s, nil
}
