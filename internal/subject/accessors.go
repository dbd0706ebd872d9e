package subject

// PrimaryMeaning returns the first meaning flagged primary.
// The bool is false when the subject has none; callers must handle that case.
func PrimaryMeaning(s Subject) (Meaning, bool) {
	for _, m := range s.Meanings {
		if m.Primary {
			return m, true
		}
	}
	return Meaning{}, false
}

// PrimaryReadings returns every primary reading in stored order.
// Radicals have none, and kana vocabulary never stores one.
func PrimaryReadings(s Subject) []Reading {
	if !s.IsKanji() && !s.IsVocabulary() {
		return []Reading{}
	}
	out := make([]Reading, 0, len(s.Readings))
	for _, r := range s.Readings {
		if r.Primary {
			out = append(out, r)
		}
	}
	return out
}

// HasReading reports whether the subject can be quizzed on its reading.
// Kana vocabulary is its own reading.
func HasReading(s Subject) bool {
	switch s.Kind {
	case KindKanji, KindVocabulary, KindKanaVocabulary:
		return true
	default:
		return false
	}
}

// Readings returns the readings used for grading. For kana vocabulary a single
// accepted primary reading equal to the characters is synthesized.
func Readings(s Subject) []Reading {
	switch s.Kind {
	case KindKanji, KindVocabulary:
		return s.Readings
	case KindKanaVocabulary:
		if s.Characters == "" {
			return nil
		}
		return []Reading{{Reading: s.Characters, Primary: true, AcceptedAnswer: true}}
	default:
		return nil
	}
}

// AcceptedReadings returns the reading strings a learner may answer with.
func AcceptedReadings(s Subject) []string {
	var out []string
	for _, r := range Readings(s) {
		if r.AcceptedAnswer {
			out = append(out, r.Reading)
		}
	}
	return out
}

// AcceptedMeanings returns accepted meanings followed by whitelisted auxiliary meanings.
func AcceptedMeanings(s Subject) []string {
	out := make([]string, 0, len(s.Meanings)+len(s.AuxiliaryMeanings))
	for _, m := range s.Meanings {
		if m.AcceptedAnswer {
			out = append(out, m.Meaning)
		}
	}
	for _, a := range s.AuxiliaryMeanings {
		if a.Type == AuxiliaryWhitelist {
			out = append(out, a.Meaning)
		}
	}
	return out
}
