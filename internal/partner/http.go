package partner

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/server"
)

// Handler exposes the applicant-facing partner routes. Review and decision
// endpoints live on the admin surface.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterAuthed(r gin.IRoutes) {
	r.POST("/partners/apply", h.apply)
	r.GET("/partners/applications/mine", h.myApplication)
	r.GET("/partners/me", h.myPartner)
}

func (h *Handler) RegisterPublic(r gin.IRoutes) {
	r.GET("/partners", h.list)
}

type applyRequest struct {
	BusinessName string `json:"business_name"`
	TaxID        string `json:"tax_id"`
	Message      string `json:"message"`
}

func (h *Handler) apply(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	a, err := h.svc.Apply(c.Request.Context(), ApplyInput{
		ApplicantID:  ai.Subject,
		BusinessName: req.BusinessName,
		TaxID:        req.TaxID,
		Message:      req.Message,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": a})
}

func (h *Handler) myApplication(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	a, err := h.svc.repo.OpenApplicationByApplicant(c.Request.Context(), ai.Subject)
	if err != nil {
		server.Error(c, apperr.NotFound("no open application"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": a})
}

func (h *Handler) myPartner(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	p, err := h.svc.PartnerByOwner(c.Request.Context(), ai.Subject)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": p})
}

func (h *Handler) list(c *gin.Context) {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	partners, total, err := h.svc.ListPartners(c.Request.Context(), offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": partners, "total": total})
}
