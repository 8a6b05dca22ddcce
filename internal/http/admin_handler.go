package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"honeypot-api/internal/session"
)

// AdminHandler mantiene dependencias para la superficie admin.
type AdminHandler struct {
	logger *zap.Logger
	store  *session.Store
}

// NewAdminHandler crea una instancia de AdminHandler.
func NewAdminHandler(logger *zap.Logger, store *session.Store) *AdminHandler {
	return &AdminHandler{logger: logger, store: store}
}

// ActiveSessions maneja GET /admin/sessions.
func (h *AdminHandler) ActiveSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active_sessions": h.store.ActiveCount()})
}

// EndSession maneja POST /admin/sessions/end. Un id desconocido no es un
// error: devuelve session null.
func (h *AdminHandler) EndSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid end session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	snap := h.store.End(req.SessionID, true)
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}
