package query

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Actor{ID: "11111111-1111-1111-1111-111111111111"}
	root  = domain.Actor{ID: "22222222-2222-2222-2222-222222222222", IsAdmin: true}
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 15},
		{"negative page", -3, 10, 1, 10},
		{"explicit size", 2, 50, 2, 50},
		{"size capped", 1, 500, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := TaskQuery{Page: tt.page, PageSize: tt.size}
			q.Normalize(15, 100)
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantPageSize, q.PageSize)
		})
	}
}

func TestBuildTaskPlan_OwnerScopeAndPendingFilter(t *testing.T) {
	q := TaskQuery{Status: "Pending "}
	q.Normalize(15, 100)

	p, err := BuildTaskPlan(alice, q)
	require.NoError(t, err)

	require.NotEmpty(t, p.Where)
	assert.Equal(t, "p.owner_id = $1", p.Where[0])
	assert.Equal(t, []any{alice.ID, "pending"}, p.Args)
	assert.Contains(t, p.Where, "t.status = $2")
	assert.Contains(t, p.Where, "t.deleted_at IS NULL")
	assert.Equal(t, "t.created_at DESC, t.id DESC", p.OrderBy)
	assert.Equal(t, 15, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestBuildTaskPlan_AdminIsUnscoped(t *testing.T) {
	p, err := BuildTaskPlan(root, TaskQuery{PageSize: 15, Page: 1})
	require.NoError(t, err)

	for _, w := range p.Where {
		assert.NotContains(t, w, "owner_id")
	}
	assert.Empty(t, p.Args)
}

func TestBuildTaskPlan_FiltersCannotEscapeScope(t *testing.T) {
	projectID := uuid.NewString()
	assignee := uuid.NewString()
	q := TaskQuery{ProjectID: projectID, AssigneeID: assignee, Priority: "high", Search: "alpha", Page: 3, PageSize: 10}

	p, err := BuildTaskPlan(alice, q)
	require.NoError(t, err)

	assert.Equal(t, "p.owner_id = $1", p.Where[0])
	assert.Equal(t, " WHERE p.owner_id = $1 AND t.deleted_at IS NULL AND p.deleted_at IS NULL AND t.project_id = $2 AND t.priority = $3 AND t.assigned_to = $4 AND (t.title ILIKE $5 OR t.description ILIKE $6)", p.WhereSQL())
	assert.Equal(t, []any{alice.ID, projectID, "high", assignee, "%alpha%", "%alpha%"}, p.Args)
	assert.Equal(t, 20, p.Offset)

	sql, args := p.PageSQL()
	assert.Equal(t, " ORDER BY t.created_at DESC, t.id DESC LIMIT $7 OFFSET $8", sql)
	assert.Equal(t, []any{alice.ID, projectID, "high", assignee, "%alpha%", "%alpha%", 10, 20}, args)
	assert.Len(t, p.Args, 6, "PageSQL must not mutate the plan")
}

func TestBuildTaskPlan_Sorts(t *testing.T) {
	p, err := BuildTaskPlan(root, TaskQuery{Sort: "priority", Direction: "desc", Page: 1, PageSize: 15})
	require.NoError(t, err)
	assert.Equal(t, "CASE t.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END DESC, t.id DESC", p.OrderBy)

	p, err = BuildTaskPlan(root, TaskQuery{Sort: "due_date", Page: 1, PageSize: 15})
	require.NoError(t, err)
	assert.Equal(t, "t.due_date ASC NULLS LAST, t.id ASC", p.OrderBy)
}

func TestBuildTaskPlan_RejectsUnknownValues(t *testing.T) {
	_, err := BuildTaskPlan(alice, TaskQuery{Status: "done", Priority: "urgent", Sort: "password", Direction: "sideways", ProjectID: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	for _, f := range []string{"status", "priority", "sort", "direction", "project_id"} {
		assert.Contains(t, ve.Fields, f)
	}
}

func TestBuildProjectPlan_SearchNameOrDescription(t *testing.T) {
	q := ProjectQuery{Search: "alpha"}
	q.Normalize(15, 100)

	p, err := BuildProjectPlan(alice, q)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"p.owner_id = $1",
		"p.deleted_at IS NULL",
		"(p.name ILIKE $2 OR p.description ILIKE $3)",
	}, p.Where)
	assert.Equal(t, "p.created_at DESC, p.id DESC", p.OrderBy)
}

func TestBuildProjectPlan_Trashed(t *testing.T) {
	p, err := BuildProjectPlan(root, ProjectQuery{Trashed: true, Sort: "name", Page: 1, PageSize: 15})
	require.NoError(t, err)
	assert.Equal(t, []string{"p.deleted_at IS NOT NULL"}, p.Where)
	assert.Equal(t, "lower(p.name) ASC, p.id ASC", p.OrderBy)
}

func TestContainsEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, Contains(`50%_off\`))
}

func TestParseTaskQuery(t *testing.T) {
	v := url.Values{}
	v.Set("status", "pending")
	v.Set("page", "2")
	v.Set("page_size", "abc")
	v.Set("trashed", "true")

	q, err := ParseTaskQuery(v)
	require.Error(t, err)
	ve, _ := domain.AsValidation(err)
	assert.Contains(t, ve.Fields, "page_size")
	assert.Equal(t, "pending", q.Status)
	assert.Equal(t, 2, q.Page)
	assert.True(t, q.Trashed)

	_, err = ParseProjectQuery(url.Values{"search": {"alpha"}})
	assert.NoError(t, err)
}

func TestNewPage(t *testing.T) {
	p := NewPage([]string{"a", "b"}, 2, 1, 15)
	assert.Equal(t, 1, p.LastPage)
	assert.Len(t, p.Items, 2)

	out := NewPage[string](nil, 31, 5, 15)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
	assert.Equal(t, 3, out.LastPage)
	assert.Equal(t, Meta{Total: 31, Page: 5, PageSize: 15, LastPage: 3}, out.Meta())

	empty := NewPage[int](nil, 0, 1, 15)
	assert.Equal(t, 1, empty.LastPage)
}

func TestHugePageNeverOverflowsOffset(t *testing.T) {
	q, err := ParseTaskQuery(url.Values{"page": {"100000000000000000"}, "page_size": {"100"}})
	require.NoError(t, err)
	q.Normalize(15, 100)
	assert.Equal(t, MaxPage, q.Page)

	p, err := BuildTaskPlan(alice, q)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.Equal(t, (MaxPage-1)*100, p.Offset)

	assert.GreaterOrEqual(t, Offset(math.MaxInt, 100), 0)
	assert.Equal(t, 0, Offset(5, 0))
}
