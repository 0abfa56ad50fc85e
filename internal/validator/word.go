package validator

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// WordValidator answers "is this an English word worth sending to the LLM".
// It checks the bundled GRE word list first and falls back to the Free
// Dictionary API for words outside it. API-confirmed words are added to the
// local set so repeat lookups stay offline.
type WordValidator struct {
	localWords map[string]struct{}
	httpClient *http.Client
	mu         sync.RWMutex
}

func NewWordValidator(wordListPath string) (*WordValidator, error) {
	v := &WordValidator{
		localWords: make(map[string]struct{}),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if err := v.loadWordList(wordListPath); err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}

	return v, nil
}

func (v *WordValidator) loadWordList(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	count := 0
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		v.localWords[word] = struct{}{}
		count++
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	log.Printf("[validator] loaded %d words into local dictionary", count)
	return nil
}

// IsValidWord checks the local word list first and falls back to the Free
// Dictionary API. Network failures allow the word through (fail-open); the
// LLM still gets a chance to correct a misspelling.
func (v *WordValidator) IsValidWord(word string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))

	v.mu.RLock()
	_, exists := v.localWords[normalized]
	v.mu.RUnlock()

	if exists {
		return true, nil
	}

	log.Printf("[validator] '%s' not in local dictionary, checking API", normalized)
	return v.checkDictionaryAPI(normalized)
}

func (v *WordValidator) checkDictionaryAPI(word string) (bool, error) {
	url := fmt.Sprintf("https://api.dictionaryapi.dev/api/v2/entries/en/%s", word)

	resp, err := v.httpClient.Get(url)
	if err != nil {
		log.Printf("[validator] dictionary API error for '%s': %v, allowing word", word, err)
		return true, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		v.mu.Lock()
		v.localWords[word] = struct{}{}
		v.mu.Unlock()
		return true, nil
	}

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("[validator] '%s' not found in dictionary API", word)
		return false, nil
	}

	log.Printf("[validator] dictionary API returned %d for '%s', allowing word", resp.StatusCode, word)
	return true, nil
}

// IsInLocalDict checks only the local word list.
func (v *WordValidator) IsInLocalDict(word string) bool {
	normalized := strings.ToLower(strings.TrimSpace(word))
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, exists := v.localWords[normalized]
	return exists
}

// Words returns the loaded word list as a slice, for prefetch and seeding.
func (v *WordValidator) Words() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	result := make([]string, 0, len(v.localWords))
	for word := range v.localWords {
		result = append(result, word)
	}
	return result
}
