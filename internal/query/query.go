// Package query turns list parameters into an actor-scoped SQL plan.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 100

	// MaxPage bounds the page number; anything past it is an empty page anyway.
	MaxPage = math.MaxInt32

	Asc  = "asc"
	Desc = "desc"
)

type TaskQuery struct {
	ProjectID  string
	Status     string
	Priority   string
	AssigneeID string
	Search     string
	Sort       string
	Direction  string
	Trashed    bool
	Page       int
	PageSize   int
}

type ProjectQuery struct {
	Status    string
	Search    string
	Sort      string
	Direction string
	Trashed   bool
	Page      int
	PageSize  int
}

func (q *TaskQuery) Normalize(defaultSize, maxSize int) {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	q.Priority = strings.ToLower(strings.TrimSpace(q.Priority))
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	q.Direction = strings.ToLower(strings.TrimSpace(q.Direction))
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize, defaultSize, maxSize)
}

func (q *ProjectQuery) Normalize(defaultSize, maxSize int) {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	q.Direction = strings.ToLower(strings.TrimSpace(q.Direction))
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize, defaultSize, maxSize)
}

func normalizePage(page, size, defaultSize, maxSize int) (int, int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

func (q TaskQuery) Validate() error {
	ve := domain.NewValidationError()
	if q.ProjectID != "" && !validID(q.ProjectID) {
		ve.Add("project_id", "must be a valid id")
	}
	if q.AssigneeID != "" && !validID(q.AssigneeID) {
		ve.Add("assigned_to", "must be a valid id")
	}
	if q.Status != "" && !domain.TaskStatus(q.Status).Valid() {
		ve.Add("status", "is not a known task status")
	}
	if q.Priority != "" && !domain.TaskPriority(q.Priority).Valid() {
		ve.Add("priority", "is not a known task priority")
	}
	if _, ok := taskSorts[q.Sort]; q.Sort != "" && !ok {
		ve.Add("sort", "is not a sortable field")
	}
	validateDirection(ve, q.Direction)
	return ve.OrNil()
}

func (q ProjectQuery) Validate() error {
	ve := domain.NewValidationError()
	if q.Status != "" && !domain.ProjectStatus(q.Status).Valid() {
		ve.Add("status", "is not a known project status")
	}
	if _, ok := projectSorts[q.Sort]; q.Sort != "" && !ok {
		ve.Add("sort", "is not a sortable field")
	}
	validateDirection(ve, q.Direction)
	return ve.OrNil()
}

func validateDirection(ve *domain.ValidationError, dir string) {
	if dir != "" && dir != Asc && dir != Desc {
		ve.Add("direction", "must be asc or desc")
	}
}

func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ParseTaskQuery reads list parameters from a query string. Malformed numbers are
// reported as validation errors; everything else is checked by Validate.
func ParseTaskQuery(v url.Values) (TaskQuery, error) {
	ve := domain.NewValidationError()
	q := TaskQuery{
		ProjectID:  v.Get("project_id"),
		Status:     v.Get("status"),
		Priority:   v.Get("priority"),
		AssigneeID: v.Get("assigned_to"),
		Search:     v.Get("search"),
		Sort:       v.Get("sort"),
		Direction:  v.Get("direction"),
		Trashed:    parseBool(v.Get("trashed")),
		Page:       parseInt(ve, v, "page"),
		PageSize:   parseInt(ve, v, "page_size"),
	}
	return q, ve.OrNil()
}

func ParseProjectQuery(v url.Values) (ProjectQuery, error) {
	ve := domain.NewValidationError()
	q := ProjectQuery{
		Status:    v.Get("status"),
		Search:    v.Get("search"),
		Sort:      v.Get("sort"),
		Direction: v.Get("direction"),
		Trashed:   parseBool(v.Get("trashed")),
		Page:      parseInt(ve, v, "page"),
		PageSize:  parseInt(ve, v, "page_size"),
	}
	return q, ve.OrNil()
}

func parseInt(ve *domain.ValidationError, v url.Values, key string) int {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		ve.Add(key, "must be an integer")
		return 0
	}
	return n
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

// Offset of the first row of the page; pages are 1-based. The result saturates
// instead of overflowing.
func Offset(page, size int) int {
	if page < 1 || size <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt - math.MaxInt%size
	}
	return (page - 1) * size
}
