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

func actor(c *gin.Context) (domain.Actor, bool) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		httpapi.Error(c, domain.ErrUnauthorized)
	}
	return a, ok
}

func (h *Handler) create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var cmd validation.CreateProject
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), a, cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	q, err := query.ParseProjectQuery(c.Request.URL.Query())
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	page, err := h.svc.List(c.Request.Context(), a, q)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": page.Items, "meta": page.Meta()})
}

func (h *Handler) get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), a, id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		return
	}
	var cmd validation.UpdateProject
	if !httpapi.BindJSON(c, &cmd) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), a, id, cmd)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
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
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Restore(c.Request.Context(), a, id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) forceDelete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.ForceDelete(c.Request.Context(), a, id); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) stats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		return
	}

	s, err := h.svc.Stats(c.Request.Context(), a, id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": s})
}

func (h *Handler) tasks(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := httpapi.ParamID(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.Tasks(c.Request.Context(), a, id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": items})
}
