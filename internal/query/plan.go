package query

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
)

// Plan is the WHERE/ORDER/LIMIT part of a list statement with $n placeholders.
// Repositories append it to their own SELECT over the aliases t (tasks) and p (projects).
type Plan struct {
	Where   []string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// add appends a predicate whose "?" markers become the next positional placeholders.
func (p *Plan) add(cond string, args ...any) {
	for _, a := range args {
		p.Args = append(p.Args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(p.Args)), 1)
	}
	p.Where = append(p.Where, cond)
}

func (p Plan) WhereSQL() string {
	if len(p.Where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.Where, " AND ")
}

// PageSQL renders ORDER BY/LIMIT/OFFSET with placeholders following Args.
func (p Plan) PageSQL() (string, []any) {
	n := len(p.Args)
	sql := fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", p.OrderBy, n+1, n+2)
	args := append(append([]any(nil), p.Args...), p.Limit, p.Offset)
	return sql, args
}

var taskSorts = map[string]string{
	"created_at": "t.created_at",
	"updated_at": "t.updated_at",
	"title":      "lower(t.title)",
	"due_date":   "t.due_date",
	"status":     "t.status",
	"priority":   "CASE t.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END",
}

var projectSorts = map[string]string{
	"created_at": "p.created_at",
	"updated_at": "p.updated_at",
	"name":       "lower(p.name)",
	"status":     "p.status",
	"start_date": "p.start_date",
	"end_date":   "p.end_date",
}

// BuildTaskPlan scopes non-admins to tasks of their own projects before any filter applies.
func BuildTaskPlan(actor domain.Actor, q TaskQuery) (Plan, error) {
	if err := q.Validate(); err != nil {
		return Plan{}, err
	}

	var p Plan
	if !actor.IsAdmin {
		p.add("p.owner_id = ?", actor.ID)
	}
	if q.Trashed {
		p.add("t.deleted_at IS NOT NULL")
	} else {
		p.add("t.deleted_at IS NULL")
	}
	p.add("p.deleted_at IS NULL")

	if q.ProjectID != "" {
		p.add("t.project_id = ?", q.ProjectID)
	}
	if q.Status != "" {
		p.add("t.status = ?", q.Status)
	}
	if q.Priority != "" {
		p.add("t.priority = ?", q.Priority)
	}
	if q.AssigneeID != "" {
		p.add("t.assigned_to = ?", q.AssigneeID)
	}
	if q.Search != "" {
		p.add("(t.title ILIKE ? OR t.description ILIKE ?)", Contains(q.Search), Contains(q.Search))
	}

	p.OrderBy = orderBy(taskSorts, q.Sort, q.Direction, "t.created_at", "t.id")
	p.Limit = q.PageSize
	p.Offset = Offset(q.Page, q.PageSize)
	return p, nil
}

func BuildProjectPlan(actor domain.Actor, q ProjectQuery) (Plan, error) {
	if err := q.Validate(); err != nil {
		return Plan{}, err
	}

	var p Plan
	if !actor.IsAdmin {
		p.add("p.owner_id = ?", actor.ID)
	}
	if q.Trashed {
		p.add("p.deleted_at IS NOT NULL")
	} else {
		p.add("p.deleted_at IS NULL")
	}

	if q.Status != "" {
		p.add("p.status = ?", q.Status)
	}
	if q.Search != "" {
		p.add("(p.name ILIKE ? OR p.description ILIKE ?)", Contains(q.Search), Contains(q.Search))
	}

	p.OrderBy = orderBy(projectSorts, q.Sort, q.Direction, "p.created_at", "p.id")
	p.Limit = q.PageSize
	p.Offset = Offset(q.Page, q.PageSize)
	return p, nil
}

func orderBy(sorts map[string]string, sort, dir, defaultCol, idCol string) string {
	col, ok := sorts[sort]
	if !ok {
		col = defaultCol
		if dir == "" {
			dir = Desc
		}
	}
	if dir == "" {
		dir = Asc
	}

	d := strings.ToUpper(dir)
	nulls := ""
	if strings.HasSuffix(col, "_date") {
		nulls = " NULLS LAST"
	}
	return fmt.Sprintf("%s %s%s, %s %s", col, d, nulls, idCol, d)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains builds an ILIKE pattern matching s literally anywhere in the column.
func Contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
