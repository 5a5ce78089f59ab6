package http

import (
	"net/http"

	httpapi "github.com/GoSim-25-26J-441/taskhub-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
	"github.com/gin-gonic/gin"
)

// target resolves the actor and the :id parameter, answering the error itself.
func target(c *gin.Context) (domain.Actor, string, bool) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		httpapi.Error(c, domain.ErrUnauthorized)
		return domain.Actor{}, "", false
	}
	id, ok := httpapi.ParamID(c, "id")
	return a, id, ok
}

func (h *Handler) create(c *gin.Context) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		httpapi.Error(c, domain.ErrUnauthorized)
		return
	}
	var cmd validation.CreateTask
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	v, err := h.svc.Create(c.Request.Context(), a, cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": v})
}

func (h *Handler) list(c *gin.Context) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		httpapi.Error(c, domain.ErrUnauthorized)
		return
	}
	q, err := query.ParseTaskQuery(c.Request.URL.Query())
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	page, err := h.svc.List(c.Request.Context(), a, q)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": page.Items, "meta": page.Meta()})
}

func (h *Handler) get(c *gin.Context) {
	a, id, ok := target(c)
	if !ok {
		return
	}

	v, err := h.svc.Get(c.Request.Context(), a, id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": v})
}

func (h *Handler) update(c *gin.Context) {
	a, id, ok := target(c)
	if !ok {
		return
	}
	var cmd validation.UpdateTask
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	v, err := h.svc.Update(c.Request.Context(), a, id, cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": v})
}

func (h *Handler) changeStatus(c *gin.Context) {
	a, id, ok := target(c)
	if !ok {
		return
	}
	var cmd validation.ChangeTaskStatus
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	v, err := h.svc.ChangeStatus(c.Request.Context(), a, id, cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": v})
}

func (h *Handler) delete(c *gin.Context) {
	a, id, ok := target(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), a, id); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) restore(c *gin.Context) {
	a, id, ok := target(c)
	if !ok {
		return
	}

	v, err := h.svc.Restore(c.Request.Context(), a, id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": v})
}

func (h *Handler) forceDelete(c *gin.Context) {
	a, id, ok := target(c)
	if !ok {
		return
	}

	if err := h.svc.ForceDelete(c.Request.Context(), a, id); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
