package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-tracker/internal/models"
)

func TestParse_RoundTripsEncode(t *testing.T) {
	in := []Change{
		{Field: "project_name", Before: "Old, name", After: "New", Valid: true},
		{Field: "level", Before: "LOW", After: "MID", Valid: true},
	}
	assert.Equal(t, in, Parse(Encode(in)))
}

func TestParse_ValuesWithQuotesAndSeparators(t *testing.T) {
	in := []Change{
		{Field: "remark", Before: "don't ship", After: "ready, level: check", Valid: true},
		{Field: "level", Before: "LOW", After: "MID", Valid: true},
		{Field: "task_detail", Before: `say "hi" → wave`, After: "", Valid: true},
	}
	assert.Equal(t, in, Parse(Encode(in)))
}

func TestParse_SingleQuotedEntries(t *testing.T) {
	got := Parse("remark: 'don't ship' → 'ready', level: 'LOW' → 'MID'")
	assert.Equal(t, []Change{
		{Field: "remark", Before: "don't ship", After: "ready", Valid: true},
		{Field: "level", Before: "LOW", After: "MID", Valid: true},
	}, got)
}

func TestParse_BrokenQuotedValue(t *testing.T) {
	got := Parse(`remark: "unterminated → "x"`)
	require.Len(t, got, 1)
	assert.Equal(t, "remark", got[0].Field)
}

func TestParse_Malformed(t *testing.T) {
	assert.Nil(t, Parse(""))

	got := Parse("garbage without structure")
	require.Len(t, got, 1)
	assert.False(t, got[0].Valid)

	got = Parse("level: 'LOW', remark: 'a' → 'b'")
	require.Len(t, got, 2)
	assert.False(t, got[0].Valid)
	assert.Equal(t, Change{Field: "remark", Before: "a", After: "b", Valid: true}, got[1])
}

func TestProjectRenderer_Rows(t *testing.T) {
	r := ProjectRenderer(Lookup{
		"project_type_id": ReferenceLookup([]models.ReferenceItem{{ID: 1, Label: "Enhancement"}, {ID: 2, Label: "New App"}}),
	})

	entry := r.Render(models.HistoryEntry{
		UpdatedBy: "Dewi",
		UpdatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Changes: Encode([]Change{
			{Field: "project_type_id", Before: "1", After: "9"},
			{Field: "plan_end_date", Before: "2025-01-05", After: "2025-02-10T00:00:00Z"},
			{Field: "status", Before: "TO_DO", After: "IN_PROGRESS"},
			{Field: "level", Before: "LOW", After: "MID"},
			{Field: "remark", Before: "", After: "Waiting on vendor"},
		}),
	})

	assert.Equal(t, "Dewi", entry.By)
	require.Equal(t, []Row{
		{Field: "project_type_id", Label: "Project Type", Before: "Enhancement", After: "9"},
		{Field: "plan_end_date", Label: "Plan End", Before: "5 Jan 2025", After: "10 Feb 2025"},
		{Field: "level", Label: "Effort Level", Before: "Low", After: "Mid"},
		{Field: "remark", Label: "Remark", Before: "-", After: "Waiting on vendor"},
	}, entry.Rows)
}

func TestRenderer_PlaceholderForBrokenSegments(t *testing.T) {
	rows := TaskRenderer(nil).Rows("task_detail: 'x'")
	require.Equal(t, []Row{{Field: "task_detail", Label: "Task Detail", Before: "?", After: "?"}}, rows)

	rows = TaskRenderer(nil).Rows("unknown_field: 'A' → 'B'")
	require.Equal(t, []Row{{Field: "unknown_field", Label: "Unknown Field", Before: "A", After: "B"}}, rows)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "In Progress", Humanize("IN_PROGRESS"))
	assert.Equal(t, "Data Science", Humanize("data_science"))
	assert.Equal(t, "High", Humanize("HIGH"))
	assert.Equal(t, "iOS app", Humanize("iOS app"))
	assert.Equal(t, "-", Humanize(""))
}
