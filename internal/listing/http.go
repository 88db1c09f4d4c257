package listing

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/server"
)

// Handler exposes the listing HTTP surface.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublic mounts the browse routes. They only ever return
// approved or sold listings.
func (h *Handler) RegisterPublic(r gin.IRoutes) {
	r.GET("/listings", h.search)
	r.GET("/listings/:id", h.get)
}

// RegisterAuthed mounts the seller routes behind JWT auth.
func (h *Handler) RegisterAuthed(r gin.IRoutes) {
	r.POST("/listings", h.create)
	r.GET("/listings/mine", h.mine)
	r.PUT("/listings/:id", h.update)
	r.POST("/listings/:id/submit", h.submit)
	r.POST("/listings/:id/archive", h.archive)
	r.POST("/listings/:id/sold", h.markSold)
}

type listingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	MileageKM   int    `json:"mileage_km"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	City        string `json:"city"`
	ImagePath   string `json:"image_path"`
}

func (h *Handler) create(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	l, err := h.svc.Create(c.Request.Context(), CreateInput{
		SellerID:    ai.Subject,
		Title:       req.Title,
		Description: req.Description,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		MileageKM:   req.MileageKM,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		City:        req.City,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": l})
}

func (h *Handler) update(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	l, err := h.svc.Update(c.Request.Context(), c.Param("id"), ai.Subject, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		MileageKM:   req.MileageKM,
		PriceCents:  req.PriceCents,
		City:        req.City,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func (h *Handler) submit(c *gin.Context) {
	h.ownerAction(c, h.svc.Submit)
}

func (h *Handler) archive(c *gin.Context) {
	h.ownerAction(c, h.svc.Archive)
}

func (h *Handler) markSold(c *gin.Context) {
	h.ownerAction(c, h.svc.MarkSold)
}

func (h *Handler) ownerAction(c *gin.Context, fn func(ctx context.Context, id, actorID string) (*Listing, error)) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	l, err := fn(c.Request.Context(), c.Param("id"), ai.Subject)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func (h *Handler) mine(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	f := filterFromQuery(c)
	f.SellerID = ai.Subject
	listings, total, err := h.svc.Search(c.Request.Context(), f)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "total": total})
}

func (h *Handler) search(c *gin.Context) {
	f := filterFromQuery(c)
	f.SellerID = c.Query("seller_id")
	f.Status = StatusApproved // public browse only sees live listings
	listings, total, err := h.svc.Search(c.Request.Context(), f)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	l, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	// drafts and moderation states stay private
	if l.Status != StatusApproved && l.Status != StatusSold {
		server.Error(c, apperr.NotFound("listing not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func filterFromQuery(c *gin.Context) SearchFilter {
	f := SearchFilter{
		Make:  strings.TrimSpace(c.Query("make")),
		Model: strings.TrimSpace(c.Query("model")),
		City:  strings.TrimSpace(c.Query("city")),
	}
	f.YearMin = atoiQuery(c, "year_min")
	f.YearMax = atoiQuery(c, "year_max")
	f.PriceMin = int64(atoiQuery(c, "price_min"))
	f.PriceMax = int64(atoiQuery(c, "price_max"))
	f.Offset = atoiQuery(c, "offset")
	limit := atoiQuery(c, "limit")
	if limit > 0 && limit <= 100 {
		f.Limit = limit
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		f.Status = Status(s)
	}
	return f
}

func atoiQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
