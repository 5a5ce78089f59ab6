package auth

import (
	"net/http"

	httpapi "github.com/GoSim-25-26J-441/taskhub-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublic attaches the unauthenticated endpoints.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
}

func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) register(c *gin.Context) {
	var cmd validation.Register
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	sess, err := h.svc.Register(c.Request.Context(), cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": sess.User, "token": sess.Token, "expires_at": sess.ExpiresAt})
}

func (h *Handler) login(c *gin.Context) {
	var cmd validation.Login
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": sess.User, "token": sess.Token, "expires_at": sess.ExpiresAt})
}

func (h *Handler) me(c *gin.Context) {
	actor, ok := ActorFrom(c)
	if !ok {
		httpapi.Error(c, domain.ErrUnauthorized)
		return
	}

	u, err := h.svc.Me(c.Request.Context(), actor)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}
