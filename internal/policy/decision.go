// Package policy answers whether an actor may perform an action on a project or task.
// Every function is pure: it only looks at the actor and the already-loaded resource.
package policy

import "github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"

type Decision int

const (
	Allowed Decision = iota
	Forbidden
	NotFound
)

func (d Decision) Allowed() bool { return d == Allowed }

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Err maps the decision onto the domain sentinel errors.
func (d Decision) Err() error {
	switch d {
	case Allowed:
		return nil
	case NotFound:
		return domain.ErrNotFound
	default:
		return domain.ErrForbidden
	}
}

func allowIf(ok bool) Decision {
	if ok {
		return Allowed
	}
	return Forbidden
}

func ownerOrAdmin(actor domain.Actor, ownerID string) Decision {
	return allowIf(actor.IsAdmin || (actor.ID != "" && actor.ID == ownerID))
}
