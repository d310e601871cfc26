package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/goaltrace-dev/goaltrace/internal/utils"
	"gorm.io/gorm"
)

type AddLinkRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func AddLink(ctx *gin.Context) {
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

	var req AddLinkRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	node, found := ownedNode(ctx, traceID, nodeID, userID)

	if !found {
		return
	}

	link := models.Link{NodeID: node.ID, FileURL: req.URL}

	if err := db.DB.Create(&link).Error; err != nil {
		log.Printf("Failed to create link for node %d: %v", node.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add link"})
		return
	}

	BroadcastTraceRefresh(node.TraceID)

	ctx.JSON(http.StatusCreated, gin.H{"id": link.ID, "url": link.FileURL})
}

func ListLinks(ctx *gin.Context) {
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

	var links []models.Link

	if err := db.DB.Where("node_id = ?", node.ID).Find(&links).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve links"})
		return
	}

	response := make([]gin.H, 0, len(links))

	for _, link := range links {
		response = append(response, gin.H{"id": link.ID, "url": link.FileURL, "uploaded_at": link.CreatedAt})
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteLink(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	linkID, err := utils.GetLinkID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var link models.Link

	if err := db.DB.Joins("JOIN nodes ON nodes.id = links.node_id AND nodes.deleted_at IS NULL").
		Joins("JOIN traces ON traces.id = nodes.trace_id AND traces.deleted_at IS NULL").
		Where("links.id = ? AND traces.user_id = ?", linkID, userID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve link"})
		}
		return
	}

	if err := db.DB.Delete(&link).Error; err != nil {
		log.Printf("Failed to delete link %d: %v", link.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
