package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/goaltrace-dev/goaltrace/internal/services"
	"github.com/goaltrace-dev/goaltrace/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAttachmentSize = 25 << 20 // 25 MiB

var storage *services.Storage

// InitStorage wires the object storage client used for attachment blobs.
func InitStorage(s *services.Storage) {
	storage = s
}

type AttachmentSummary struct {
	ID         uint      `json:"id"`
	FileURL    string    `json:"file_url"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func attachmentSummary(attachment models.Attachment) AttachmentSummary {
	return AttachmentSummary{
		ID:         attachment.ID,
		FileURL:    attachment.FileURL,
		FileName:   attachment.FileName,
		FileType:   attachment.FileType,
		FileSize:   attachment.FileSize,
		UploadedAt: attachment.CreatedAt,
	}
}

// UploadAttachment writes the blob to object storage first and inserts the
// metadata row second. A failed upload aborts before any insert; a failed
// insert after a successful upload leaves an orphaned blob, which is only
// logged.
func UploadAttachment(ctx *gin.Context) {
	if storage == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	traceID, nodeID, err := utils.GetTraceNodeID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, found := ownedNode(ctx, traceID, nodeID, userID)

	if !found {
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "A file is required"})
		return
	}

	if fileHeader.Size > maxAttachmentSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is too large"})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)

	if err != nil {
		log.Printf("Failed to read uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext := filepath.Ext(fileHeader.Filename)
	key := fmt.Sprintf("%d/%d-%s%s", node.ID, time.Now().UnixMilli(), uuid.NewString(), ext)

	if err := storage.Upload(ctx.Request.Context(), key, content, contentType); err != nil {
		log.Printf("Failed to upload attachment for node %d: %v", node.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	attachment := models.Attachment{
		NodeID:     node.ID,
		FileURL:    storage.PublicURL(key),
		FileName:   fileHeader.Filename,
		FileType:   contentType,
		FileSize:   fileHeader.Size,
		StorageKey: key,
	}

	if err := db.DB.Create(&attachment).Error; err != nil {
		// The blob stays behind; there is no compensation step.
		log.Printf("Failed to insert attachment row for node %d (orphaned blob %s): %v", node.ID, key, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachment"})
		return
	}

	BroadcastTraceRefresh(node.TraceID)

	ctx.JSON(http.StatusCreated, attachmentSummary(attachment))
}

func ListAttachments(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	traceID, nodeID, err := utils.GetTraceNodeID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, found := ownedNode(ctx, traceID, nodeID, userID)

	if !found {
		return
	}

	var attachments []models.Attachment

	if err := db.DB.Where("node_id = ?", node.ID).Find(&attachments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachments"})
		return
	}

	response := make([]AttachmentSummary, 0, len(attachments))

	for _, attachment := range attachments {
		response = append(response, attachmentSummary(attachment))
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteAttachment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	attachmentID, err := utils.GetAttachmentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var attachment models.Attachment

	if err := db.DB.Joins("JOIN nodes ON nodes.id = attachments.node_id AND nodes.deleted_at IS NULL").
		Joins("JOIN traces ON traces.id = nodes.trace_id AND traces.deleted_at IS NULL").
		Where("attachments.id = ? AND traces.user_id = ?", attachmentID, userID).
		First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attachment"})
		}
		return
	}

	// Blob removal is best effort; the row goes away regardless.
	if storage != nil {
		if err := storage.Delete(ctx.Request.Context(), attachment.StorageKey); err != nil {
			log.Printf("Failed to delete blob %s: %v", attachment.StorageKey, err)
		}
	}

	if err := db.DB.Delete(&attachment).Error; err != nil {
		log.Printf("Failed to delete attachment %d: %v", attachment.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
