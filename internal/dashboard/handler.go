package dashboard

import (
	"net/http"

	httpapi "github.com/GoSim-25-26J-441/taskhub-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.get)
}

func (h *Handler) get(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		httpapi.Error(c, domain.ErrUnauthorized)
		return
	}

	d, err := h.svc.Get(c.Request.Context(), actor)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": d})
}
