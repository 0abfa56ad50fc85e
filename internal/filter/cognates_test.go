package filter

import (
	"testing"

	"github.com/grevocab/api/internal/model"
	"github.com/stretchr/testify/assert"
)

func cognates(words ...string) []model.RelatedWord {
	out := make([]model.RelatedWord, 0, len(words))
	for _, w := range words {
		out = append(out, model.RelatedWord{Word: w, Meaning: "m"})
	}
	return out
}

func TestFilterCognatesDropsInflections(t *testing.T) {
	got := FilterCognates("interest", cognates(
		"interested", "interesting", "interestingly", "interests", "disinterest",
	))

	words := make([]string, 0, len(got))
	for _, c := range got {
		words = append(words, c.Word)
	}
	assert.Equal(t, []string{"disinterest"}, words)
}

func TestFilterCognatesHandlesFinalE(t *testing.T) {
	got := FilterCognates("abate", cognates("abating", "abated", "abatement"))

	assert.Len(t, got, 1)
	assert.Equal(t, "abatement", got[0].Word)
}

func TestFilterCognatesConsonantY(t *testing.T) {
	got := FilterCognates("carry", cognates("carried", "carries", "carrier", "miscarry"))

	words := make([]string, 0, len(got))
	for _, c := range got {
		words = append(words, c.Word)
	}
	assert.Equal(t, []string{"miscarry"}, words)
}

func TestFilterCognatesDropsCompoundPhrases(t *testing.T) {
	got := FilterCognates("interest", cognates("interest rate", "vested interest", "usury"))

	assert.Len(t, got, 1)
	assert.Equal(t, "usury", got[0].Word)
}

func TestFilterCognatesCaseInsensitive(t *testing.T) {
	got := FilterCognates("Laconic", cognates("LACONICALLY", "brevity"))

	assert.Len(t, got, 1)
	assert.Equal(t, "brevity", got[0].Word)
}

func TestFilterCognatesEmptyInput(t *testing.T) {
	assert.Nil(t, FilterCognates("word", nil))
	assert.Nil(t, FilterCognates("word", []model.RelatedWord{}))
}
