package filter

import (
	"strings"

	"github.com/grevocab/api/internal/model"
)

// FilterCognates removes inflectional variants of the headword from a
// cognate list. The LLM likes to pad cognates with "interested",
// "interesting", "interestingly" for "interest"; those carry no study value.
func FilterCognates(word string, cognates []model.RelatedWord) []model.RelatedWord {
	if len(cognates) == 0 {
		return nil
	}

	word = strings.ToLower(word)
	variations := generateVariations(word)

	filtered := make([]model.RelatedWord, 0, len(cognates))
	for _, c := range cognates {
		if c.Word == "" {
			continue
		}
		if !isVariation(strings.ToLower(c.Word), variations, word) {
			filtered = append(filtered, c)
		}
	}

	return filtered
}

// generateVariations creates common grammatical variations of a word.
func generateVariations(word string) map[string]bool {
	variations := make(map[string]bool)

	variations[word] = true

	// Plural forms
	variations[word+"s"] = true
	variations[word+"es"] = true
	if strings.HasSuffix(word, "y") {
		variations[word[:len(word)-1]+"ies"] = true
	}

	// Verb forms (-ed, -ing)
	variations[word+"ed"] = true
	variations[word+"ing"] = true

	// Consonant doubling (stop -> stopped, stopping)
	if len(word) >= 3 && isConsonant(word[len(word)-1]) && isVowel(word[len(word)-2]) && isConsonant(word[len(word)-3]) {
		doubled := word + string(word[len(word)-1])
		variations[doubled+"ed"] = true
		variations[doubled+"ing"] = true
	}

	// Words ending in 'e' (make -> making)
	if strings.HasSuffix(word, "e") {
		base := word[:len(word)-1]
		variations[base+"ing"] = true
		variations[base+"ed"] = true
	}

	// Consonant+y (carry -> carried)
	if strings.HasSuffix(word, "y") && len(word) >= 2 && isConsonant(word[len(word)-2]) {
		base := word[:len(word)-1]
		variations[base+"ied"] = true
		variations[base+"ies"] = true
	}

	// Adverb forms
	variations[word+"ly"] = true
	if strings.HasSuffix(word, "y") {
		variations[word[:len(word)-1]+"ily"] = true
	}
	if strings.HasSuffix(word, "le") {
		variations[word[:len(word)-1]+"y"] = true
	}
	if strings.HasSuffix(word, "ic") {
		variations[word+"ally"] = true
	}
	variations[word+"ingly"] = true
	variations[word+"edly"] = true

	// Comparative and superlative
	variations[word+"er"] = true
	variations[word+"est"] = true
	if strings.HasSuffix(word, "e") {
		variations[word+"r"] = true
		variations[word+"st"] = true
	}
	if strings.HasSuffix(word, "y") && len(word) >= 2 && isConsonant(word[len(word)-2]) {
		base := word[:len(word)-1]
		variations[base+"ier"] = true
		variations[base+"iest"] = true
	}

	return variations
}

// isVariation checks if a cognate is a variation of the base word.
func isVariation(cognate string, variations map[string]bool, baseWord string) bool {
	if variations[cognate] {
		return true
	}

	// Multi-word phrases containing the base word ("interest rate") are not
	// true cognates either.
	if strings.Contains(cognate, " ") && strings.Contains(cognate, baseWord) {
		return true
	}

	return false
}

func isVowel(c byte) bool {
	return c == 'a' || c == 'e' || c == 'i' || c == 'o' || c == 'u'
}

func isConsonant(c byte) bool {
	return c >= 'a' && c <= 'z' && !isVowel(c)
}
