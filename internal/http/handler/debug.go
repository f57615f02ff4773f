package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DebugHandler echoes request metadata for troubleshooting token
// plumbing from clients.
type DebugHandler struct{}

// NewDebugHandler wires the debug endpoints.
func NewDebugHandler() *DebugHandler {
	return &DebugHandler{}
}

// Headers handles GET /api/debug/headers.
func (h *DebugHandler) Headers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authorization": c.GetHeader("Authorization"),
	})
}
