package wanikani

import "time"

// SubjectCollection is one page of the /v2/subjects collection.
type SubjectCollection struct {
	Object        string            `json:"object"`
	URL           string            `json:"url"`
	Pages         Pages             `json:"pages"`
	TotalCount    int               `json:"total_count"`
	DataUpdatedAt *time.Time        `json:"data_updated_at"`
	Data          []SubjectResource `json:"data"`
}

// Pages carries the pagination links of a collection.
type Pages struct {
	PerPage     int     `json:"per_page"`
	NextURL     *string `json:"next_url"`
	PreviousURL *string `json:"previous_url"`
}

// SubjectResource is the envelope around one subject.
type SubjectResource struct {
	ID            int64       `json:"id"`
	Object        string      `json:"object"`
	URL           string      `json:"url"`
	DataUpdatedAt time.Time   `json:"data_updated_at"`
	Data          SubjectData `json:"data"`
}

// SubjectData holds the attributes shared by every subject type; fields that
// only exist on some types are simply absent for the others.
type SubjectData struct {
	CreatedAt                 time.Time        `json:"created_at"`
	Level                     int              `json:"level"`
	Slug                      string           `json:"slug"`
	HiddenAt                  *time.Time       `json:"hidden_at"`
	DocumentURL               string           `json:"document_url"`
	Characters                *string          `json:"characters"`
	Meanings                  []MeaningData    `json:"meanings"`
	AuxiliaryMeanings         []AuxiliaryData  `json:"auxiliary_meanings"`
	Readings                  []ReadingData    `json:"readings"`
	ContextSentences          []SentenceData   `json:"context_sentences"`
	CharacterImages           []CharacterImage `json:"character_images"`
	ComponentSubjectIDs       []int64          `json:"component_subject_ids"`
	AmalgamationSubjectIDs    []int64          `json:"amalgamation_subject_ids"`
	VisuallySimilarSubjectIDs []int64          `json:"visually_similar_subject_ids"`
	MeaningMnemonic           string           `json:"meaning_mnemonic"`
	ReadingMnemonic           string           `json:"reading_mnemonic"`
	PartsOfSpeech             []string         `json:"parts_of_speech"`
	LessonPosition            int              `json:"lesson_position"`
	SpacedRepetitionSystemID  int              `json:"spaced_repetition_system_id"`
}

type MeaningData struct {
	Meaning        string `json:"meaning"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
}

type AuxiliaryData struct {
	Meaning string `json:"meaning"`
	Type    string `json:"type"`
}

type ReadingData struct {
	Reading        string `json:"reading"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
	Type           string `json:"type"`
}

type SentenceData struct {
	En string `json:"en"`
	Ja string `json:"ja"`
}

type CharacterImage struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// User is the subset of /v2/user used to check a token.
type User struct {
	Object string `json:"object"`
	Data   struct {
		Username string `json:"username"`
		Level    int    `json:"level"`
	} `json:"data"`
}
