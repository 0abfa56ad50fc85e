package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/model"
	"gorm.io/gorm"
)

type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

type SubmitReportRequest struct {
	Word        string `json:"word" binding:"required"`
	IssueType   string `json:"issueType" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// Submit files a report against a generated profile.
func (h *ReportHandler) Submit(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	validTypes := map[string]bool{
		model.IssueTypeDefinition: true,
		model.IssueTypeEtymology:  true,
		model.IssueTypeMnemonic:   true,
		model.IssueTypeExample:    true,
		model.IssueTypeOther:      true,
	}
	if !validTypes[req.IssueType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue type"})
		return
	}

	report := model.ProfileReport{
		UserID:      userID.(int64),
		Word:        req.Word,
		IssueType:   req.IssueType,
		Description: req.Description,
		Status:      model.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.db.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListMy returns the current user's reports, newest first.
func (h *ReportHandler) ListMy(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, limit := pagination(c)
	offset := (page - 1) * limit

	var reports []model.ProfileReport
	var totalCount int64

	h.db.Model(&model.ProfileReport{}).Where("user_id = ?", userID).Count(&totalCount)
	h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports)

	c.JSON(http.StatusOK, gin.H{
		"data":       reports,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": int((totalCount + int64(limit) - 1) / int64(limit)),
	})
}

// List returns all reports, optionally filtered by status. Admin only.
func (h *ReportHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	offset := (page - 1) * limit

	query := h.db.Model(&model.ProfileReport{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []model.ProfileReport
	var totalCount int64

	query.Count(&totalCount)
	query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports)

	c.JSON(http.StatusOK, gin.H{
		"data":       reports,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": int((totalCount + int64(limit) - 1) / int64(limit)),
	})
}

type UpdateReportRequest struct {
	Status     string `json:"status" binding:"required"`
	ReviewNote string `json:"reviewNote"`
}

// UpdateStatus resolves or dismisses a report. Admin only.
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	reviewerID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	reportID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if req.Status != model.StatusResolved && req.Status != model.StatusDismissed && req.Status != model.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	var report model.ProfileReport
	if err := h.db.First(&report, reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	reviewer := reviewerID.(int64)
	updates := map[string]interface{}{
		"status":      req.Status,
		"review_note": req.ReviewNote,
		"reviewed_by": &reviewer,
		"updated_at":  time.Now(),
	}
	if err := h.db.Model(&report).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
