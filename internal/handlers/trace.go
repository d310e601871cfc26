package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/goaltrace-dev/goaltrace/internal/utils"
	"gorm.io/gorm"
)

type CreateTraceRequest struct {
	Title      string `json:"title" binding:"required"`
	Tags       string `json:"tags" binding:"required"` // free-form, e.g. "#food #travel"
	Visibility string `json:"visibility"`
}

type UpdateTraceRequest struct {
	Title      string `json:"title" binding:"required"`
	Tags       string `json:"tags" binding:"required"`
	Visibility string `json:"visibility" binding:"required"`
}

type TraceSummary struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

type PublicTraceSummary struct {
	TraceSummary
	OwnerName     string `json:"owner_name"`
	OwnerUsername string `json:"owner_username"`
}

func traceSummary(trace models.Trace) TraceSummary {
	tags := make([]string, 0, len(trace.Tags))

	for _, tag := range trace.Tags {
		tags = append(tags, tag.Name)
	}

	return TraceSummary{
		ID:         trace.ID,
		Title:      trace.Title,
		Visibility: string(trace.Visibility),
		Tags:       tags,
		CreatedAt:  trace.CreatedAt,
	}
}

// replaceTraceTags recomputes the trace's tag set inside the given
// transaction: upsert each tag by name, drop all existing join rows, insert
// the new set.
func replaceTraceTags(tx *gorm.DB, traceID uint, tagNames []string) error {
	if err := tx.Where("trace_id = ?", traceID).Delete(&models.TraceTag{}).Error; err != nil {
		return err
	}

	for _, name := range tagNames {
		var tag models.Tag

		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.TraceTag{TraceID: traceID, TagID: tag.ID}).Error; err != nil {
			return err
		}
	}

	return nil
}

func CreateTrace(ctx *gin.Context) {
	var req CreateTraceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tagNames := utils.ParseTags(req.Tags)

	if len(tagNames) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "At least one #tag is required"})
		return
	}

	visibility := models.VisibilityPrivate

	if req.Visibility != "" {
		parsed, ok := models.ParseTraceVisibility(req.Visibility)
		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility"})
			return
		}
		visibility = parsed
	}

	trace := models.Trace{
		UserID:     userID,
		Title:      req.Title,
		Visibility: visibility,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trace).Error; err != nil {
			return err
		}

		return replaceTraceTags(tx, trace.ID, tagNames)
	})

	if err != nil {
		log.Printf("Failed to create trace: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trace"})
		return
	}

	trace.Tags = nil

	if err := db.DB.Preload("Tags").First(&trace, trace.ID).Error; err != nil {
		log.Printf("Failed to reload trace %d: %v", trace.ID, err)
	}

	ctx.JSON(http.StatusCreated, traceSummary(trace))
}

func ListTraces(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var traces []models.Trace

	if err := db.DB.Preload("Tags").Where("user_id = ?", userID).Find(&traces).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve traces"})
		return
	}

	utils.SortTraces(traces, ctx.DefaultQuery("sort", utils.SortCreatedDesc))

	response := make([]TraceSummary, 0, len(traces))

	for _, trace := range traces {
		response = append(response, traceSummary(trace))
	}

	ctx.JSON(http.StatusOK, response)
}

// SearchPublicTraces filters all public traces in memory for a
// case-insensitive substring match against title, tag names, owner name, or
// owner username.
func SearchPublicTraces(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))

	// A bare "#" matches every tag, so it is rejected along with the empty
	// query.
	if query == "" || query == "#" {
		ctx.JSON(http.StatusOK, []PublicTraceSummary{})
		return
	}

	var traces []models.Trace

	if err := db.DB.Preload("Tags").Preload("User").
		Where("visibility = ?", models.VisibilityPublic).
		Find(&traces).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search traces"})
		return
	}

	needle := strings.ToLower(query)
	response := make([]PublicTraceSummary, 0)

	for _, trace := range traces {
		if !matchesTrace(trace, needle) {
			continue
		}

		response = append(response, PublicTraceSummary{
			TraceSummary:  traceSummary(trace),
			OwnerName:     trace.User.Name,
			OwnerUsername: trace.User.Username,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func matchesTrace(trace models.Trace, needle string) bool {
	if strings.Contains(strings.ToLower(trace.Title), needle) {
		return true
	}

	for _, tag := range trace.Tags {
		if strings.Contains(strings.ToLower(tag.Name), needle) {
			return true
		}
	}

	if strings.Contains(strings.ToLower(trace.User.Name), needle) {
		return true
	}

	return strings.Contains(strings.ToLower(trace.User.Username), needle)
}

func UpdateTrace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	traceID, err := utils.GetTraceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTraceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	tagNames := utils.ParseTags(req.Tags)

	if len(tagNames) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "At least one #tag is required"})
		return
	}

	visibility, ok := models.ParseTraceVisibility(req.Visibility)

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility"})
		return
	}

	var trace models.Trace

	if err := db.DB.Where("id = ? AND user_id = ?", traceID, userID).First(&trace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Trace not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trace"})
		}
		return
	}

	trace.Title = req.Title
	trace.Visibility = visibility

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&trace).Error; err != nil {
			return err
		}

		return replaceTraceTags(tx, trace.ID, tagNames)
	})

	if err != nil {
		log.Printf("Failed to update trace %d: %v", trace.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trace"})
		return
	}

	trace.Tags = nil

	if err := db.DB.Preload("Tags").First(&trace, trace.ID).Error; err != nil {
		log.Printf("Failed to reload trace %d: %v", trace.ID, err)
	}

	BroadcastTraceRefresh(trace.ID)

	ctx.JSON(http.StatusOK, traceSummary(trace))
}

func DeleteTrace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	traceID, err := utils.GetTraceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var trace models.Trace

	if err := db.DB.Where("id = ? AND user_id = ?", traceID, userID).First(&trace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Trace not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trace"})
		}
		return
	}

	// Nodes and their sub-resources go with the trace via the storage-level
	// cascade.
	if err := db.DB.Delete(&trace).Error; err != nil {
		log.Printf("Failed to delete trace %d: %v", trace.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trace"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
