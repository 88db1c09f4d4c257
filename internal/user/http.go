package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/server"
)

// Handler exposes the account HTTP surface.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r gin.IRoutes) {
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)
}

// RegisterAuthed mounts routes behind JWT auth.
func (h *Handler) RegisterAuthed(r gin.IRoutes) {
	r.GET("/users/me", h.me)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": ToView(u)})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Error(c, apperr.InvalidArgument("invalid request body"))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": res.AccessToken,
		"expires_at":   res.ExpiresAt.Unix(),
		"user":         ToView(res.User),
	})
}

func (h *Handler) me(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		server.Error(c, apperr.Unauthenticated("missing auth"))
		return
	}
	u, err := h.svc.Get(c.Request.Context(), ai.Subject)
	if err != nil {
		server.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": ToView(u)})
}

// View is the JSON shape for an account; password hash never leaves.
type View struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Roles     []string `json:"roles"`
	Banned    bool     `json:"banned"`
	BanReason string   `json:"ban_reason,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

// ToView strips the credential fields for responses. The admin handler
// reuses it when listing accounts.
func ToView(u *User) *View {
	if u == nil {
		return nil
	}
	return &View{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Roles:     u.RolesSlice(),
		Banned:    u.Banned,
		BanReason: u.BanReason,
		CreatedAt: u.CreatedAt.Unix(),
	}
}
