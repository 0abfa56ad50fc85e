package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/grevocab/api/internal/model"
)

// Failures the caller must treat as "could not find word": the prior
// displayed state is restored and a retry is offered, never a crash.
var (
	ErrNotFound = errors.New("word not found")
	ErrParse    = errors.New("malformed lookup response")
)

// LLMClient talks to the LLM proxy that generates lexical profiles.
type LLMClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLLMClient(baseURL string) *LLMClient {
	return &LLMClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type profileRequest struct {
	Word string `json:"word"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type suggestRequest struct {
	Exclude []string `json:"exclude"`
}

// AnalyzedWord is one entry of a text analysis: a GRE-level word spotted in
// the input with a short gloss.
type AnalyzedWord struct {
	Word            string `json:"word"`
	ShortDefinition string `json:"shortDefinition"`
}

// FetchWordProfile asks the proxy for the full lexical profile of term. The
// proxy may correct a misspelled query; the returned profile then carries
// the corrected headword plus wasCorrected/originalQuery.
func (c *LLMClient) FetchWordProfile(ctx context.Context, term string) (*model.WordProfile, error) {
	body, err := c.post(ctx, "/profile", profileRequest{Word: term})
	if err != nil {
		return nil, err
	}

	var profile model.WordProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if profile.Word == "" || profile.Definition == "" {
		return nil, ErrParse
	}
	if profile.WasCorrected && profile.OriginalQuery == "" {
		profile.OriginalQuery = term
	}
	return &profile, nil
}

// AnalyzeText extracts GRE-level vocabulary from a passage. Best-effort: an
// empty list is an acceptable degraded result, so transport and parse
// failures surface as an error only for the caller to log.
func (c *LLMClient) AnalyzeText(ctx context.Context, text string) ([]AnalyzedWord, error) {
	body, err := c.post(ctx, "/analyze", analyzeRequest{Text: text})
	if err != nil {
		return nil, err
	}

	var result struct {
		Words []AnalyzedWord `json:"words"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return result.Words, nil
}

// SuggestWord returns a random GRE word not in the exclude list.
func (c *LLMClient) SuggestWord(ctx context.Context, exclude []string) (string, error) {
	body, err := c.post(ctx, "/suggest", suggestRequest{Exclude: exclude})
	if err != nil {
		return "", err
	}

	var result struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	if result.Word == "" {
		return "", ErrParse
	}
	return result.Word, nil
}

func (c *LLMClient) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("LLM proxy returned status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
