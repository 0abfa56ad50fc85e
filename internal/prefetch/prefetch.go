package prefetch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/grevocab/api/internal/client"
	"github.com/grevocab/api/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Prefetcher walks the GRE word list in the background and warms the shared
// profile store, so that most lookups hit Postgres instead of the LLM proxy.
type Prefetcher struct {
	db           *gorm.DB
	llmClient    *client.LLMClient
	words        []string
	currentIndex int
	interval     time.Duration
	running      bool
	mu           sync.Mutex
	stopChan     chan struct{}
}

type Config struct {
	WordListPath string
	Interval     time.Duration
}

func New(db *gorm.DB, llmClient *client.LLMClient, cfg Config) (*Prefetcher, error) {
	words, err := loadWordList(cfg.WordListPath)
	if err != nil {
		return nil, err
	}

	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	log.Printf("[prefetch] loaded %d words", len(words))

	return &Prefetcher{
		db:        db,
		llmClient: llmClient,
		words:     words,
		interval:  cfg.Interval,
		stopChan:  make(chan struct{}),
	}, nil
}

func loadWordList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}

	return words, scanner.Err()
}

func (p *Prefetcher) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	log.Printf("[prefetch] starting with interval %v", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[prefetch] context cancelled, stopping")
			return
		case <-p.stopChan:
			log.Println("[prefetch] stop signal received")
			return
		case <-ticker.C:
			p.processNextWord(ctx)
		}
	}
}

func (p *Prefetcher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		close(p.stopChan)
		p.running = false
		log.Println("[prefetch] stopped")
	}
}

func (p *Prefetcher) processNextWord(ctx context.Context) {
	p.mu.Lock()
	if len(p.words) == 0 {
		p.mu.Unlock()
		return
	}
	if p.currentIndex >= len(p.words) {
		p.currentIndex = 0
		log.Println("[prefetch] completed all words, restarting cycle")
	}
	word := p.words[p.currentIndex]
	p.currentIndex++
	p.mu.Unlock()

	var existing model.Word
	err := p.db.Where("word = ?", word).First(&existing).Error
	if err == nil && len(existing.Profile) > 0 {
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[prefetch] db error for %s: %v", word, err)
		return
	}

	log.Printf("[prefetch] fetching: %s", word)

	profile, err := p.llmClient.FetchWordProfile(ctx, word)
	if err != nil {
		log.Printf("[prefetch] error fetching %s: %v", word, err)
		return
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		log.Printf("[prefetch] error marshaling %s: %v", word, err)
		return
	}

	row := model.Word{
		Word:    strings.ToLower(profile.Word),
		Profile: datatypes.JSON(profileJSON),
	}
	err = p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "word"}},
		DoUpdates: clause.AssignmentColumns([]string{"profile", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("[prefetch] error saving %s: %v", word, err)
		return
	}

	log.Printf("[prefetch] saved: %s", word)
}

// Status reports progress for the admin endpoint.
func (p *Prefetcher) Status() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress := 0.0
	if len(p.words) > 0 {
		progress = float64(p.currentIndex) / float64(len(p.words)) * 100
	}

	return map[string]interface{}{
		"running":      p.running,
		"totalWords":   len(p.words),
		"currentIndex": p.currentIndex,
		"progress":     progress,
		"interval":     p.interval.String(),
	}
}
