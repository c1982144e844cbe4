package screens

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker/internal/listing"
	"project-tracker/internal/models"
)

func ptr(t time.Time) *time.Time { return &t }

func day(s string) *time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestParseListQuery_Defaults(t *testing.T) {
	q := ParseListQuery(url.Values{}, "name")
	assert.Equal(t, "name", q.Sort)
	assert.Equal(t, listing.Asc, q.Dir)
	assert.Equal(t, 1, q.Page)

	q = ParseListQuery(url.Values{"page": {"-3"}, "month": {"ALL"}, "q": {"  alice "}}, "name")
	assert.Equal(t, 1, q.Page)
	assert.Empty(t, q.Month)
	assert.Equal(t, "alice", q.Search)
}

func TestListQuery_SortLink(t *testing.T) {
	q := ListQuery{Sort: "name", Dir: listing.Asc, Page: 3, Search: "x"}

	v, err := url.ParseQuery(q.SortLink("name"))
	require.NoError(t, err)
	assert.Equal(t, "desc", v.Get("dir"))
	assert.Empty(t, v.Get("page"))
	assert.Equal(t, "x", v.Get("q"))

	v, err = url.ParseQuery(q.SortLink("SAP"))
	require.NoError(t, err)
	assert.Equal(t, "SAP", v.Get("sort"))
	assert.Empty(t, v.Get("dir"))
}

func TestApply_Pipeline(t *testing.T) {
	users := []models.User{
		{SAP: 3, Name: "Carol", Role: models.RoleITBP},
		{SAP: 1, Name: "alice", Role: models.RoleEngineer, Position: models.PositionBackend},
		{SAP: 2, Name: "Bob", Role: models.RoleEngineer, Position: models.PositionMobile},
		{SAP: 4, Name: "Alicia", Role: models.RoleEngineer, Position: models.PositionBackend},
	}

	q := ListQuery{Search: "ALI", Sort: "name", Dir: listing.Desc, Page: 1, Role: "ENGINEER"}
	page := Apply(users, Users, q, 10, UserPredicates(q)...)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Alicia", page.Items[0].Name)
	assert.Equal(t, "alice", page.Items[1].Name)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.PageCount)

	q = ListQuery{Sort: "SAP", Page: 2}
	page = Apply(users, Users, q, 3)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 4, page.Items[0].SAP)
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())
}

func TestApply_ClampsPastLastPage(t *testing.T) {
	users := []models.User{{SAP: 1}, {SAP: 2}}
	page := Apply(users, Users, ListQuery{Sort: "SAP", Page: 5}, 1)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 2, page.Items[0].SAP)
}

func TestProjectPredicates_StatusDefault(t *testing.T) {
	projects := []models.Project{
		{ID: 1, Status: models.StatusToDo, PlanStartDate: day("2024-03-04")},
		{ID: 2, Status: models.StatusInProgress, PlanStartDate: day("2024-04-01")},
		{ID: 3, Status: models.StatusCompleted, PlanStartDate: day("2024-03-10")},
	}

	q := ListQuery{Status: StatusDefault}
	got := listing.Match(projects, ProjectPredicates(q)...)
	assert.Len(t, got, 2)

	q = ListQuery{Status: "ALL", Month: "March", Year: "2024"}
	got = listing.Match(projects, ProjectPredicates(q)...)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].ID)
	assert.EqualValues(t, 3, got[1].ID)
}

func TestCollection_MutateReloadsOnceOnSuccess(t *testing.T) {
	calls := 0
	c := NewCollection(func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	})

	err := c.Mutate(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a", "b"}, c.Items())
	assert.True(t, c.Loaded())
}

func TestCollection_MutateFailureKeepsItems(t *testing.T) {
	calls := 0
	c := NewCollection(func(context.Context) ([]string, error) {
		calls++
		return []string{"x"}, nil
	})
	require.NoError(t, c.Reload(context.Background()))

	boom := errors.New("boom")
	err := c.Mutate(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"x"}, c.Items())
}

func TestCollection_CancelledViewIsNotUpdated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollection(func(context.Context) ([]string, error) {
		cancel()
		return []string{"late"}, nil
	})

	err := c.Reload(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.Items())
	assert.False(t, c.Loaded())
}

func TestSummarizeAndKanban(t *testing.T) {
	projects := []models.Project{
		{ID: 1, Status: models.StatusInProgress},
		{ID: 2, Status: models.StatusToDo},
		{ID: 3, Status: models.StatusInProgress},
		{ID: 4, Status: models.StatusCompleted},
		{ID: 5, Status: "ARCHIVED"},
	}
	status := func(p models.Project) models.Status { return p.Status }

	assert.Equal(t, Summary{Total: 5, ToDo: 1, InProgress: 2, Completed: 1}, Summarize(projects, status))

	cols := Kanban(projects, status)
	require.Len(t, cols, 3)
	assert.Equal(t, models.StatusToDo, cols[0].Status)
	require.Len(t, cols[1].Items, 2)
	assert.EqualValues(t, 1, cols[1].Items[0].ID)
	assert.EqualValues(t, 3, cols[1].Items[1].ID)
	assert.Len(t, cols[2].Items, 1)
}

func TestLate(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	plan := day("2024-05-09")

	assert.True(t, Late(plan, nil, false, now), "not started and plan passed")
	assert.False(t, Late(plan, day("2024-05-12"), false, now), "already started")
	assert.False(t, Late(day("2024-05-10"), nil, false, now), "same day is on time")

	assert.False(t, Late(plan, nil, true, now), "not finished yet")
	assert.True(t, Late(plan, day("2024-05-10"), true, now))
	assert.False(t, Late(plan, ptr(plan.Add(20*time.Hour)), true, now), "same calendar day")
	assert.False(t, Late(nil, nil, false, now))
}
