package policy

import "github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"

// TaskResource pairs a task with the owner of its project. Ownership of a task is
// always read through the project, never stored on the task.
type TaskResource struct {
	Task           *domain.Task
	ProjectOwnerID string
}

func ResourceOf(v *domain.TaskView) TaskResource {
	if v == nil {
		return TaskResource{}
	}
	return TaskResource{Task: &v.Task, ProjectOwnerID: v.ProjectOwnerID}
}

func ViewAnyTasks(actor domain.Actor) bool { return actor.ID != "" }

func CreateTask(actor domain.Actor) bool { return actor.ID != "" }

func ViewTask(actor domain.Actor, r TaskResource) Decision {
	if r.Task == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, r.ProjectOwnerID)
}

// UpdateTask also admits the assignee. Which fields an assignee may touch is
// decided by the caller; see AssigneeOnly.
func UpdateTask(actor domain.Actor, r TaskResource) Decision {
	if r.Task == nil {
		return NotFound
	}
	if d := ownerOrAdmin(actor, r.ProjectOwnerID); d.Allowed() {
		return d
	}
	return allowIf(actor.ID != "" && r.Task.AssignedTo(actor.ID))
}

func DeleteTask(actor domain.Actor, r TaskResource) Decision {
	if r.Task == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, r.ProjectOwnerID)
}

func RestoreTask(actor domain.Actor, r TaskResource) Decision {
	if r.Task == nil {
		return NotFound
	}
	return ownerOrAdmin(actor, r.ProjectOwnerID)
}

func ForceDeleteTask(actor domain.Actor, r TaskResource) Decision {
	if r.Task == nil {
		return NotFound
	}
	return allowIf(actor.IsAdmin)
}

// AssigneeOnly reports that UpdateTask is allowed solely because the actor is the assignee.
func AssigneeOnly(actor domain.Actor, r TaskResource) bool {
	if r.Task == nil || ownerOrAdmin(actor, r.ProjectOwnerID).Allowed() {
		return false
	}
	return r.Task.AssignedTo(actor.ID)
}
