package policy

import "github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"

// ViewAnyProjects is open to every authenticated actor; the query layer scopes what they see.
func ViewAnyProjects(actor domain.Actor) bool { return actor.ID != "" }

func CreateProject(actor domain.Actor) bool { return actor.ID != "" }

func ViewProject(actor domain.Actor, p *domain.Project) Decision {
	if p == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, p.OwnerID)
}

func UpdateProject(actor domain.Actor, p *domain.Project) Decision {
	if p == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, p.OwnerID)
}

func DeleteProject(actor domain.Actor, p *domain.Project) Decision {
	if p == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, p.OwnerID)
}

func RestoreProject(actor domain.Actor, p *domain.Project) Decision {
	if p == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, p.OwnerID)
}

func ForceDeleteProject(actor domain.Actor, p *domain.Project) Decision {
	if p == nil {
		return NotFound
	}
	return allowIf(actor.IsAdmin)
}
