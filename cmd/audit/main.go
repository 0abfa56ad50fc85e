// Audits stored user snapshots for consistency: favorites whose stats
// diverged from the word store, favorites with no word store entry at all,
// over-long histories, history mirror columns out of step with the
// snapshot, and bad settings values. With -fix the offending rows are
// rewritten (the word store copy of stats wins; orphaned favorites seed
// their own store entry).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grevocab/api/internal/config"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/syncer"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Issue struct {
	UserID  int64  `json:"userId"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

func main() {
	workers := flag.Int("workers", 10, "Number of parallel workers")
	fix := flag.Bool("fix", false, "Rewrite inconsistent rows")
	outputFile := flag.String("output", "audit_results.json", "Output file for results")
	flag.Parse()

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var rows []model.UserSnapshot
	if err := db.Find(&rows).Error; err != nil {
		log.Fatalf("Failed to load snapshots: %v", err)
	}
	log.Printf("Auditing %d user snapshots with %d workers (fix=%v)", len(rows), *workers, *fix)

	var (
		mu       sync.Mutex
		issues   []Issue
		fixed    atomic.Int64
		jobs     = make(chan model.UserSnapshot)
		wg       sync.WaitGroup
		started  = time.Now()
	)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				rowIssues, repaired := auditRow(row)
				if len(rowIssues) > 0 {
					mu.Lock()
					issues = append(issues, rowIssues...)
					mu.Unlock()
				}
				if *fix && repaired != nil {
					if err := saveFixed(db, row.UserID, repaired); err != nil {
						log.Printf("Failed to fix user %d: %v", row.UserID, err)
					} else {
						fixed.Add(1)
					}
				}
			}
		}()
	}

	for _, row := range rows {
		jobs <- row
	}
	close(jobs)
	wg.Wait()

	log.Printf("Audit complete in %v: %d issues, %d rows fixed", time.Since(started), len(issues), fixed.Load())

	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	if err := os.WriteFile(*outputFile, data, 0o644); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	log.Printf("Results written to %s", *outputFile)
}

// auditRow returns the issues found in one snapshot row and, when something
// was wrong, the repaired snapshot.
func auditRow(row model.UserSnapshot) ([]Issue, *model.Snapshot) {
	var snap model.Snapshot
	if err := json.Unmarshal(row.Data, &snap); err != nil {
		return []Issue{{UserID: row.UserID, Type: "corrupt", Details: err.Error()}}, nil
	}

	var issues []Issue
	dirty := false

	// Dual-write invariant: every favorite has a word store entry under the
	// same key, and the two copies carry identical stats.
	for i, fav := range snap.Favorites {
		entry, ok := snap.WordCache[fav.Word]
		if !ok {
			issues = append(issues, Issue{
				UserID:  row.UserID,
				Type:    "orphaned_favorite",
				Details: fmt.Sprintf("favorite %q has no word store entry", fav.Word),
			})
			// The favorite is a by-value snapshot of the profile, so it can
			// seed the missing store entry without losing anything.
			if snap.WordCache == nil {
				snap.WordCache = map[string]model.WordProfile{}
			}
			snap.WordCache[fav.Word] = fav.Clone()
			dirty = true
			continue
		}
		if !statsEqual(fav.Stats, entry.Stats) {
			issues = append(issues, Issue{
				UserID:  row.UserID,
				Type:    "stats_divergence",
				Details: fmt.Sprintf("favorite %q stats differ from word store", fav.Word),
			})
			if entry.Stats != nil {
				stats := *entry.Stats
				snap.Favorites[i].Stats = &stats
			} else {
				snap.Favorites[i].Stats = nil
			}
			dirty = true
		}
	}

	if len(snap.History) > syncer.HistoryLimit {
		issues = append(issues, Issue{
			UserID:  row.UserID,
			Type:    "history_overflow",
			Details: fmt.Sprintf("history has %d entries", len(snap.History)),
		})
		snap.History = snap.History[:syncer.HistoryLimit]
		dirty = true
	}

	if !historyMatches(row.History, snap.History) {
		issues = append(issues, Issue{
			UserID:  row.UserID,
			Type:    "history_mirror",
			Details: "history column out of step with snapshot",
		})
		dirty = true
	}

	switch snap.Settings.QuizSource {
	case "", model.QuizSourceAll, model.QuizSourceFavorites:
	default:
		issues = append(issues, Issue{
			UserID:  row.UserID,
			Type:    "bad_settings",
			Details: "unknown quizSource " + snap.Settings.QuizSource,
		})
		snap.Settings.QuizSource = model.QuizSourceAll
		dirty = true
	}

	if !dirty {
		return issues, nil
	}
	return issues, &snap
}

func statsEqual(a, b *model.WordStats) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func historyMatches(column pq.StringArray, history []string) bool {
	if len(column) != len(history) {
		return false
	}
	for i := range column {
		if column[i] != history[i] {
			return false
		}
	}
	return true
}

func saveFixed(db *gorm.DB, userID int64, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return db.Model(&model.UserSnapshot{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"data":    datatypes.JSON(data),
			"history": pq.StringArray(snap.History),
		}).Error
}
