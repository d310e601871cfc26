package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodePositions(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")

	first := addNode(t, r, token, traceID, "First", nil)
	second := addNode(t, r, token, traceID, "Second", nil)

	var node models.Node
	require.NoError(t, db.DB.First(&node, first).Error)
	assert.Equal(t, 1, node.Position)
	node = models.Node{}
	require.NoError(t, db.DB.First(&node, second).Error)
	assert.Equal(t, 2, node.Position)

	// Deleting a node never frees its position.
	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/traces/%d/nodes/%d", traceID, first), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	third := addNode(t, r, token, traceID, "Third", nil)
	node = models.Node{}
	require.NoError(t, db.DB.First(&node, third).Error)
	assert.Equal(t, 3, node.Position)
}

func TestAddNodeRequiresExistingTrace(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/api/traces/999/nodes", token, gin.H{"heading": "Orphan"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddNodeDefaultsToRed(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")

	nodeID := addNode(t, r, token, traceID, "Step", nil)

	var node models.Node
	require.NoError(t, db.DB.First(&node, nodeID).Error)
	assert.Equal(t, models.StatusRed, node.Status)
}

func TestAddNodeWithDeadline(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")

	nodeID := addNode(t, r, token, traceID, "Step", gin.H{"deadline": "2026-09-15"})

	var deadline models.Deadline
	require.NoError(t, db.DB.Where("node_id = ?", nodeID).First(&deadline).Error)
	assert.False(t, deadline.Notified)
	assert.Equal(t, 2026, deadline.Deadline.Year())
}

func TestToggleStatusCycles(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")
	nodeID := addNode(t, r, token, traceID, "Step", nil)

	path := fmt.Sprintf("/api/traces/%d/nodes/%d/status", traceID, nodeID)
	expected := []string{"yellow", "green", "red"}

	for _, want := range expected {
		w := doJSON(t, r, http.MethodPost, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Status string `json:"status"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, want, resp.Status)
	}
}

func TestEditNodeUpsertsDeadline(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")
	nodeID := addNode(t, r, token, traceID, "Step", nil)

	path := fmt.Sprintf("/api/traces/%d/nodes/%d", traceID, nodeID)

	// First edit inserts the deadline row.
	w := doJSON(t, r, http.MethodPut, path, token, gin.H{
		"heading":  "Step",
		"status":   "yellow",
		"deadline": "2026-09-10",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.DB.Model(&models.Deadline{}).Where("node_id = ?", nodeID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Second edit updates in place instead of inserting a sibling.
	w = doJSON(t, r, http.MethodPut, path, token, gin.H{
		"heading":  "Step",
		"status":   "yellow",
		"deadline": "2026-10-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.DB.Model(&models.Deadline{}).Where("node_id = ?", nodeID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var deadline models.Deadline
	require.NoError(t, db.DB.Where("node_id = ?", nodeID).First(&deadline).Error)
	assert.Equal(t, time.October, deadline.Deadline.Month())
}

func TestEditNodeRejectsUnknownStatus(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")
	nodeID := addNode(t, r, token, traceID, "Step", nil)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/traces/%d/nodes/%d", traceID, nodeID), token, gin.H{
		"heading": "Step",
		"status":  "purple",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListNodesOrderedByPosition(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	traceID := createTrace(t, r, token, "T", "#a")

	addNode(t, r, token, traceID, "One", nil)
	addNode(t, r, token, traceID, "Two", gin.H{"deadline": "2026-12-01"})

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/traces/%d/nodes", traceID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var nodes []struct {
		Heading  string     `json:"heading"`
		Position int        `json:"position"`
		Deadline *time.Time `json:"deadline"`
	}
	decodeBody(t, w, &nodes)

	require.Len(t, nodes, 2)
	assert.Equal(t, "One", nodes[0].Heading)
	assert.Equal(t, 1, nodes[0].Position)
	assert.Nil(t, nodes[0].Deadline)
	assert.Equal(t, "Two", nodes[1].Heading)
	assert.NotNil(t, nodes[1].Deadline)
}

func TestNodeOwnershipEnforced(t *testing.T) {
	r := setupRouter(t)
	aliceToken := registerUser(t, r, "Alice", "alice@example.com", "alice")
	bobToken := registerUser(t, r, "Bob", "bob@example.com", "bob")

	traceID := createTrace(t, r, aliceToken, "Alice's", "#a")
	nodeID := addNode(t, r, aliceToken, traceID, "Step", nil)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/traces/%d/nodes", traceID), bobToken, gin.H{"heading": "Intruder"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/traces/%d/nodes/%d", traceID, nodeID), bobToken, gin.H{
		"heading": "Hijacked",
		"status":  "green",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/traces/%d/nodes/%d", traceID, nodeID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
