package auth

import (
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
	CtxActor  = "actor"
)

func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(CtxActor, actor)
	c.Set(CtxUserID, actor.ID)
}

// ActorFrom returns the actor stored by the auth middleware.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok && actor.ID != ""
}
