package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/goaltrace-dev/goaltrace/internal/utils"
	"gorm.io/gorm/clause"
)

type UpsertNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpsertNote writes the node's single note, inserting or replacing through
// the node_id unique index.
func UpsertNote(ctx *gin.Context) {
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

	var req UpsertNoteRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	node, found := ownedNode(ctx, traceID, nodeID, userID)

	if !found {
		return
	}

	note := models.Note{NodeID: node.ID, Content: req.Content}

	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"content": req.Content, "updated_at": time.Now()}),
	}).Create(&note).Error

	if err != nil {
		log.Printf("Failed to upsert note for node %d: %v", node.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save note"})
		return
	}

	BroadcastTraceRefresh(node.TraceID)

	ctx.JSON(http.StatusOK, gin.H{
		"node_id": node.ID,
		"content": req.Content,
	})
}

// GetNote returns the node's note, if any.
func GetNote(ctx *gin.Context) {
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

	var note models.Note

	if err := db.DB.Where("node_id = ?", node.ID).First(&note).Error; err != nil {
		ctx.JSON(http.StatusOK, gin.H{"node_id": node.ID, "content": ""})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"node_id": node.ID, "content": note.Content})
}
