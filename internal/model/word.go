package model

import (
	"time"

	"gorm.io/datatypes"
)

// GREContext explains how a word tends to appear on the GRE, with one
// example sentence in English and one in Chinese.
type GREContext struct {
	Explanation string `json:"explanation"`
	SentenceEn  string `json:"sentenceEn"`
	SentenceCn  string `json:"sentenceCn"`
}

// Etymology breaks a word down into its origin, morphological structure and
// the logic connecting the two to the modern meaning.
type Etymology struct {
	Origin    string `json:"origin"`
	Structure string `json:"structure"`
	Logic     string `json:"logic"`
}

// RelatedWord is one cognate, synonym or antonym entry. Entries keep the
// collaborator's return order and are not deduplicated.
type RelatedWord struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Pos     string `json:"pos,omitempty"`
}

// WordProfile is the full lexical profile for one GRE word as returned by
// the LLM collaborator. The profile itself is immutable once fetched; only
// Stats changes afterwards. Word is the canonical key, case-sensitive as
// returned by the lookup.
type WordProfile struct {
	Word         string        `json:"word"`
	Phonetic     string        `json:"phonetic"`
	PartOfSpeech string        `json:"partOfSpeech"`
	Definition   string        `json:"definition"`
	GREContext   GREContext    `json:"greContext"`
	Etymology    Etymology     `json:"etymology"`
	Mnemonic     string        `json:"mnemonic"`
	Cognates     []RelatedWord `json:"cognates,omitempty"`
	Synonyms     []RelatedWord `json:"synonyms,omitempty"`
	Antonyms     []RelatedWord `json:"antonyms,omitempty"`

	// Timestamp is the creation time in the store (unix milliseconds),
	// set once and never mutated.
	Timestamp int64 `json:"timestamp"`

	// Set only when the lookup corrected a misspelled query.
	WasCorrected  bool   `json:"wasCorrected,omitempty"`
	OriginalQuery string `json:"originalQuery,omitempty"`

	// Stats is nil until the first mastery-affecting action.
	Stats *WordStats `json:"stats,omitempty"`
}

// Clone returns a deep copy. Favoriting snapshots a profile by value, so the
// store entry and the favorites entry must never share a Stats pointer.
func (p WordProfile) Clone() WordProfile {
	out := p
	if p.Stats != nil {
		stats := *p.Stats
		out.Stats = &stats
	}
	out.Cognates = append([]RelatedWord(nil), p.Cognates...)
	out.Synonyms = append([]RelatedWord(nil), p.Synonyms...)
	out.Antonyms = append([]RelatedWord(nil), p.Antonyms...)
	return out
}

// Word is a row in the shared profile store. Profiles are user-independent;
// per-user study state lives in snapshots only.
type Word struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Word      string         `gorm:"uniqueIndex;not null" json:"word"`
	Profile   datatypes.JSON `gorm:"type:jsonb;not null" json:"profile"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Word) TableName() string {
	return "words"
}
