package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/prefetch"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db         *gorm.DB
	prefetcher *prefetch.Prefetcher
}

func NewAdminHandler(db *gorm.DB, prefetcher *prefetch.Prefetcher) *AdminHandler {
	return &AdminHandler{db: db, prefetcher: prefetcher}
}

type DashboardStats struct {
	TotalWords       int64            `json:"totalWords"`
	TotalUsers       int64            `json:"totalUsers"`
	TotalReports     int64            `json:"totalReports"`
	PendingReports   int64            `json:"pendingReports"`
	ResolvedReports  int64            `json:"resolvedReports"`
	DismissedReports int64            `json:"dismissedReports"`
	ReportsByType    map[string]int64 `json:"reportsByType"`
	TopReportedWords []WordCount      `json:"topReportedWords"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// GetStats returns dashboard statistics.
func (h *AdminHandler) GetStats(c *gin.Context) {
	var stats DashboardStats

	h.db.Model(&model.Word{}).Count(&stats.TotalWords)
	h.db.Model(&model.User{}).Count(&stats.TotalUsers)
	h.db.Model(&model.ProfileReport{}).Count(&stats.TotalReports)
	h.db.Model(&model.ProfileReport{}).Where("status = ?", model.StatusPending).Count(&stats.PendingReports)
	h.db.Model(&model.ProfileReport{}).Where("status = ?", model.StatusResolved).Count(&stats.ResolvedReports)
	h.db.Model(&model.ProfileReport{}).Where("status = ?", model.StatusDismissed).Count(&stats.DismissedReports)

	stats.ReportsByType = make(map[string]int64)
	var typeCounts []struct {
		IssueType string
		Count     int64
	}
	h.db.Model(&model.ProfileReport{}).
		Select("issue_type, COUNT(*) as count").
		Group("issue_type").
		Scan(&typeCounts)
	for _, tc := range typeCounts {
		stats.ReportsByType[tc.IssueType] = tc.Count
	}

	var topReported []WordCount
	h.db.Model(&model.ProfileReport{}).
		Select("word, COUNT(*) as count").
		Group("word").
		Order("count DESC").
		Limit(10).
		Scan(&topReported)
	stats.TopReportedWords = topReported

	c.JSON(http.StatusOK, stats)
}

// PrefetchStatus reports the background warmer's progress.
func (h *AdminHandler) PrefetchStatus(c *gin.Context) {
	if h.prefetcher == nil {
		c.JSON(http.StatusOK, gin.H{"running": false, "enabled": false})
		return
	}
	c.JSON(http.StatusOK, h.prefetcher.Status())
}
