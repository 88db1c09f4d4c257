package review

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

// RegisterPublic mounts the read routes; only approved reviews are served.
func (h *Handler) RegisterPublic(r gin.IRoutes) {
	r.GET("/reviews/:target_type/:target_id", h.listByTarget)
	r.GET("/reviews/:target_type/:target_id/rating", h.averageRating)
}

func (h *Handler) RegisterAuthed(r gin.IRoutes) {
	r.POST("/reviews", h.submit)
	r.GET("/reviews/mine", h.mine)
}

type submitRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Pros       string `json:"pros"`
	Cons       string `json:"cons"`
	Rating     int    `json:"rating"`
}

func (h *Handler) submit(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	rv, verdict, err := h.svc.Submit(c.Request.Context(), SubmitInput{
		TargetType: TargetType(req.TargetType),
		TargetID:   req.TargetID,
		AuthorID:   ai.Subject,
		Title:      req.Title,
		Content:    req.Content,
		Pros:       req.Pros,
		Cons:       req.Cons,
		Rating:     req.Rating,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"review":          rv,
		"recommendations": verdict.Recommendations,
	})
}

func (h *Handler) listByTarget(c *gin.Context) {
	offset, limit := pageParams(c)
	reviews, total, err := h.svc.ListByTarget(c.Request.Context(),
		TargetType(c.Param("target_type")), c.Param("target_id"), offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "total": total})
}

func (h *Handler) averageRating(c *gin.Context) {
	avg, err := h.svc.AverageRating(c.Request.Context(),
		TargetType(c.Param("target_type")), c.Param("target_id"))
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average_rating": avg})
}

func (h *Handler) mine(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	offset, limit := pageParams(c)
	reviews, total, err := h.svc.ListByAuthor(c.Request.Context(), ai.Subject, offset, limit)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "total": total})
}

func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
