package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)

	if err != nil {
		return 0, fmt.Errorf("Invalid %s", name)
	}

	return uint(id), nil
}

func GetTraceID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "trace_id")
}

func GetTraceNodeID(ctx *gin.Context) (uint, uint, error) {
	traceID, err := GetTraceID(ctx)

	if err != nil {
		return 0, 0, err
	}

	nodeID, err := parseIDParam(ctx, "node_id")

	if err != nil {
		return 0, 0, err
	}

	return traceID, nodeID, nil
}

func GetLinkID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "link_id")
}

func GetAttachmentID(ctx *gin.Context) (uint, error) {
	return parseIDParam(ctx, "attachment_id")
}
