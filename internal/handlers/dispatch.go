package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/internal/dispatcher"
)

// TriggerDeadlineDispatch runs one dispatcher batch on demand. Guarded by the
// service-key middleware; meant for an external scheduler, not end users.
func TriggerDeadlineDispatch(ctx *gin.Context) {
	sent, err := dispatcher.RunNow(ctx.Request.Context())

	if err != nil {
		log.Printf("Deadline dispatch failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Dispatch run failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"sent": sent})
}
