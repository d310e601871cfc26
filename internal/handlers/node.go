package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/goaltrace-dev/goaltrace/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddNodeRequest struct {
	Heading     string `json:"heading" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"` // optional, "2006-01-02" or RFC3339
}

type EditNodeRequest struct {
	Heading     string `json:"heading" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
	Deadline    string `json:"deadline"`
}

type NodeSummary struct {
	ID          uint       `json:"id"`
	Heading     string     `json:"heading"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Position    int        `json:"position"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
}

func nodeSummary(node models.Node) NodeSummary {
	summary := NodeSummary{
		ID:          node.ID,
		Heading:     node.Heading,
		Description: node.Description,
		Status:      string(node.Status),
		Position:    node.Position,
		CreatedAt:   node.CreatedAt,
	}

	if node.Deadline != nil {
		summary.Deadline = &node.Deadline.Deadline
	}

	return summary
}

func parseDeadline(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, raw)
}

// upsertDeadline writes the node's single deadline row through a native
// ON CONFLICT upsert keyed on the node_id unique index. Notified is left
// untouched on update.
func upsertDeadline(tx *gorm.DB, nodeID uint, deadline time.Time) error {
	row := models.Deadline{NodeID: nodeID, Deadline: deadline}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "node_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"deadline": deadline, "updated_at": time.Now()}),
	}).Create(&row).Error
}

// ownedTrace resolves the trace only if it belongs to the caller. Ownership
// is enforced here, not in any client.
func ownedTrace(ctx *gin.Context, traceID, userID uint) (models.Trace, bool) {
	var trace models.Trace

	if err := db.DB.Where("id = ? AND user_id = ?", traceID, userID).First(&trace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Trace not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trace"})
		}
		return models.Trace{}, false
	}

	return trace, true
}

// ownedNode resolves the node only if its parent trace belongs to the caller.
func ownedNode(ctx *gin.Context, traceID, nodeID, userID uint) (models.Node, bool) {
	var node models.Node

	if err := db.DB.Joins("JOIN traces ON traces.id = nodes.trace_id AND traces.deleted_at IS NULL").
		Where("nodes.id = ? AND nodes.trace_id = ? AND traces.user_id = ?", nodeID, traceID, userID).
		First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve node"})
		}
		return models.Node{}, false
	}

	return node, true
}

func AddNode(ctx *gin.Context) {
	var req AddNodeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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

	var deadline time.Time
	hasDeadline := req.Deadline != ""

	if hasDeadline {
		deadline, err = parseDeadline(req.Deadline)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline"})
			return
		}
	}

	// Nodes can only attach to a trace that is already persisted.
	trace, ok := ownedTrace(ctx, traceID, userID)

	if !ok {
		return
	}

	// Positions count soft-deleted rows too, so a deleted node's slot is
	// never handed out again.
	var maxPosition int

	if err := db.DB.Model(&models.Node{}).Unscoped().
		Where("trace_id = ?", trace.ID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition).Error; err != nil {
		log.Printf("Failed to compute node position for trace %d: %v", trace.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create node"})
		return
	}

	node := models.Node{
		TraceID:  trace.ID,
		Heading:  req.Heading,
		Status:   models.StatusRed,
		Position: maxPosition + 1,
	}
	node.Description = req.Description

	if err := db.DB.Create(&node).Error; err != nil {
		log.Printf("Failed to create node: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create node"})
		return
	}

	// The node survives a failed deadline insert; the miss is only logged.
	if hasDeadline {
		if err := upsertDeadline(db.DB, node.ID, deadline); err != nil {
			log.Printf("Failed to create deadline for node %d: %v", node.ID, err)
		}
	}

	if err := db.DB.Preload("Deadline").First(&node, node.ID).Error; err != nil {
		log.Printf("Failed to reload node %d: %v", node.ID, err)
	}

	BroadcastTraceRefresh(trace.ID)

	ctx.JSON(http.StatusCreated, nodeSummary(node))
}

// ListNodes returns a trace's nodes with their deadlines, position ascending.
// Readable by the owner, or by anyone when the trace is public.
func ListNodes(ctx *gin.Context) {
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

	if err := db.DB.Where("id = ? AND (user_id = ? OR visibility = ?)", traceID, userID, models.VisibilityPublic).
		First(&trace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Trace not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve trace"})
		}
		return
	}

	var nodes []models.Node

	if err := db.DB.Preload("Deadline").
		Where("trace_id = ?", trace.ID).
		Order("position ASC").
		Find(&nodes).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve nodes"})
		return
	}

	response := make([]NodeSummary, 0, len(nodes))

	for _, node := range nodes {
		response = append(response, nodeSummary(node))
	}

	ctx.JSON(http.StatusOK, response)
}

func EditNode(ctx *gin.Context) {
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

	var req EditNodeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, ok := models.ParseNodeStatus(req.Status)

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var deadline time.Time
	hasDeadline := req.Deadline != ""

	if hasDeadline {
		deadline, err = parseDeadline(req.Deadline)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline"})
			return
		}
	}

	node, found := ownedNode(ctx, traceID, nodeID, userID)

	if !found {
		return
	}

	node.Heading = req.Heading
	node.Description = req.Description
	node.Status = status

	if err := db.DB.Save(&node).Error; err != nil {
		log.Printf("Failed to update node %d: %v", node.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update node"})
		return
	}

	if hasDeadline {
		if err := upsertDeadline(db.DB, node.ID, deadline); err != nil {
			log.Printf("Failed to upsert deadline for node %d: %v", node.ID, err)
		}
	}

	if err := db.DB.Preload("Deadline").First(&node, node.ID).Error; err != nil {
		log.Printf("Failed to reload node %d: %v", node.ID, err)
	}

	BroadcastTraceRefresh(node.TraceID)

	ctx.JSON(http.StatusOK, nodeSummary(node))
}

func DeleteNode(ctx *gin.Context) {
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

	if err := db.DB.Delete(&node).Error; err != nil {
		log.Printf("Failed to delete node %d: %v", node.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete node"})
		return
	}

	BroadcastTraceRefresh(node.TraceID)

	ctx.Status(http.StatusNoContent)
}

// ToggleStatus advances the node's status one step through the
// red -> yellow -> green -> red cycle.
func ToggleStatus(ctx *gin.Context) {
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

	node.Status = node.Status.Next()

	if err := db.DB.Save(&node).Error; err != nil {
		log.Printf("Failed to toggle status for node %d: %v", node.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	BroadcastTraceRefresh(node.TraceID)

	ctx.JSON(http.StatusOK, gin.H{"id": node.ID, "status": string(node.Status)})
}
