package payment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/server"
)

// Handler exposes the partner-facing payment routes. Rule management and
// settlement live on the admin surface.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterAuthed(r gin.IRoutes) {
	r.GET("/payments/mine", h.mine)
}

func (h *Handler) mine(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	p, err := h.svc.partners.PartnerByOwner(c.Request.Context(), ai.Subject)
	if err != nil {
		server.Error(c, err)
		return
	}
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	payments, total, err := h.svc.ListPayments(c.Request.Context(), PaymentFilter{
		PartnerID: p.ID,
		Status:    PaymentStatus(c.Query("status")),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": total})
}
