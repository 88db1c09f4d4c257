package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/server"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterAuthed(r gin.IRoutes) {
	r.GET("/notifications", h.list)
	r.POST("/notifications/:id/read", h.markRead)
	r.POST("/notifications/read-all", h.markAllRead)
}

func (h *Handler) list(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	unreadOnly := c.Query("unread") == "true"
	items, total, err := h.svc.List(c.Request.Context(), ai.Subject, unreadOnly, offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "total": total})
}

func (h *Handler) markRead(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id"), ai.Subject); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) markAllRead(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	if err := h.svc.MarkAllRead(c.Request.Context(), ai.Subject); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
