package message

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
	r.POST("/listings/:id/inquiries", h.sendInquiry)
	r.GET("/listings/:id/inquiries", h.listForListing)
	r.GET("/inquiries", h.listForSeller)
	r.POST("/inquiries/:id/read", h.markInquiryRead)
	r.GET("/messages", h.listAdminMessages)
	r.POST("/messages/:id/read", h.markAdminMessageRead)
}

type inquiryRequest struct {
	Body string `json:"body"`
}

func (h *Handler) sendInquiry(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	i, err := h.svc.SendInquiry(c.Request.Context(), c.Param("id"), ai.Subject, req.Body)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inquiry": i})
}

func (h *Handler) listForListing(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	offset, limit := pageParams(c)
	inquiries, total, err := h.svc.ListInquiriesForListing(c.Request.Context(), c.Param("id"), ai.Subject, offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries, "total": total})
}

func (h *Handler) listForSeller(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	offset, limit := pageParams(c)
	inquiries, total, err := h.svc.ListInquiriesForSeller(c.Request.Context(), ai.Subject, offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries, "total": total})
}

func (h *Handler) markInquiryRead(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	if err := h.svc.MarkInquiryRead(c.Request.Context(), c.Param("id"), ai.Subject); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listAdminMessages(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	offset, limit := pageParams(c)
	msgs, total, err := h.svc.ListAdminMessages(c.Request.Context(), ai.Subject, offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "total": total})
}

func (h *Handler) markAdminMessageRead(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	if err := h.svc.MarkAdminMessageRead(c.Request.Context(), c.Param("id"), ai.Subject); err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
