package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/Workasana/internal/models"
)

var sampleProjects = []models.Project{
	{ID: "p1", Name: "Website Redesign", Status: models.ProjectInProgress},
	{ID: "p2", Name: "Mobile App", Status: models.ProjectPlanned},
	{ID: "p3", Name: "Web API", Status: models.ProjectCompleted},
}

var sampleTasks = []models.Task{
	{ID: "t1", Name: "Design header", Project: models.ProjectRef{ID: "p1"}, Owners: []string{"John"}, Tags: []string{"Urgent"}, Status: models.TaskToDo},
	{ID: "t2", Name: "Fix login", Project: models.ProjectRef{ID: "p2", Name: "Mobile App"}, Owners: []string{"Sam", "John"}, Tags: []string{"Bug"}, Status: models.TaskCompleted},
	{ID: "t3", Name: "Write docs", Project: models.ProjectRef{ID: "p3"}, Owners: []string{"Jane Smith"}, Tags: []string{"Client", "Bug"}, Status: models.TaskBlocked},
	{ID: "t4", Name: "design footer", Project: models.ProjectRef{ID: "p1"}, Status: models.TaskInProgress},
}

func taskIDs(ts []models.Task) []string {
	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestFilterProjects(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status string
		want   []string
	}{
		{name: "all", query: "", status: models.StatusAll, want: []string{"p1", "p2", "p3"}},
		{name: "empty status is wildcard", query: "", status: "", want: []string{"p1", "p2", "p3"}},
		{name: "case insensitive substring", query: "WEB", status: models.StatusAll, want: []string{"p1", "p3"}},
		{name: "status only", query: "", status: "Planned", want: []string{"p2"}},
		{name: "both", query: "web", status: "Completed", want: []string{"p3"}},
		{name: "no match", query: "zzz", status: models.StatusAll, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterProjects(sampleProjects, tt.query, tt.status)
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterTasksIdempotent(t *testing.T) {
	for _, status := range []string{models.StatusAll, "To Do", "In Progress", "Completed", "Blocked"} {
		for _, q := range []string{"", "design", "o"} {
			once := FilterTasks(sampleTasks, q, status)
			twice := FilterTasks(once, q, status)
			require.Equal(t, once, twice, "query=%q status=%q", q, status)
		}
	}
	for _, tag := range []string{"", "Bug", "Urgent"} {
		for _, owner := range []string{"", "John", "Sam"} {
			once := FilterTasksByTagOwner(sampleTasks, tag, owner)
			require.Equal(t, once, FilterTasksByTagOwner(once, tag, owner))
		}
	}
}

func TestFilterTasksByTagOwner(t *testing.T) {
	require.Equal(t, []string{"t2", "t3"}, taskIDs(FilterTasksByTagOwner(sampleTasks, "Bug", "")))
	require.Equal(t, []string{"t1", "t2"}, taskIDs(FilterTasksByTagOwner(sampleTasks, "", "John")))
	require.Equal(t, []string{"t2"}, taskIDs(FilterTasksByTagOwner(sampleTasks, "Bug", "John")))
	require.Len(t, FilterTasksByTagOwner(sampleTasks, "", ""), len(sampleTasks))
}

func TestGroupTasksByProjectPartitions(t *testing.T) {
	groups := GroupTasksByProject(sampleProjects, sampleTasks)
	require.Len(t, groups, 3)
	require.Equal(t, []string{"t1", "t4"}, taskIDs(groups[0].Tasks))
	require.Equal(t, []string{"t2"}, taskIDs(groups[1].Tasks))
	require.Equal(t, []string{"t3"}, taskIDs(groups[2].Tasks))

	seen := map[string]int{}
	total := 0
	for _, g := range groups {
		for _, task := range g.Tasks {
			seen[task.ID]++
			total++
		}
	}
	require.Equal(t, len(sampleTasks), total)
	for id, n := range seen {
		require.Equal(t, 1, n, id)
	}
}

func TestGroupTasksByProjectSkipsUnknown(t *testing.T) {
	tasks := append([]models.Task{
		{ID: "orphan", Project: models.ProjectRef{ID: "missing"}},
		{ID: "none"},
	}, sampleTasks...)

	groups := GroupTasksByProject(sampleProjects, tasks)
	total := 0
	for _, g := range groups {
		total += len(g.Tasks)
		require.NotContains(t, taskIDs(g.Tasks), "orphan")
		require.NotContains(t, taskIDs(g.Tasks), "none")
	}
	require.Equal(t, len(sampleTasks), total)
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	_, ok := DaysRemaining(nil, now)
	require.False(t, ok)

	due := now.Add(36 * time.Hour)
	days, ok := DaysRemaining(&due, now)
	require.True(t, ok)
	require.Equal(t, 2, days)

	past := now.Add(-30 * time.Hour)
	days, _ = DaysRemaining(&past, now)
	require.Equal(t, -1, days)
}

func TestProjectNameAndOwners(t *testing.T) {
	require.Equal(t, "Website Redesign", ProjectName(sampleTasks[0], sampleProjects))
	require.Equal(t, "Mobile App", ProjectName(sampleTasks[1], nil))
	require.Equal(t, "N/A", ProjectName(models.Task{}, sampleProjects))

	task := models.Task{Owners: []string{"u1", "Sam"}}
	require.Equal(t, []string{"John", "Sam"}, OwnerNames(task, map[string]string{"u1": "John"}))
}
