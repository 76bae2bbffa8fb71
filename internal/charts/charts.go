// Package charts считает агрегаты по списку задач для отчётов.
// Все функции чистые и проходят по списку один раз.
package charts

import (
	"sort"
	"time"

	"github.com/DevN0mad/Workasana/internal/models"
)

// WeekdayCompletions раскладывает выполненные задачи по дням недели (Sun..Sat)
// по времени последнего обновления в часовом поясе loc.
// Задачи без отметки времени не учитываются.
func WeekdayCompletions(tasks []models.Task, loc *time.Location) [7]int {
	if loc == nil {
		loc = time.Local
	}
	var buckets [7]int
	for _, t := range tasks {
		if !t.Status.IsCompleted() || t.UpdatedAt.IsZero() {
			continue
		}
		buckets[t.UpdatedAt.In(loc).Weekday()]++
	}
	return buckets
}

// PendingHours суммирует timeToComplete по всем незавершённым задачам.
func PendingHours(tasks []models.Task) float64 {
	var total float64
	for _, t := range tasks {
		if t.Status.IsCompleted() {
			continue
		}
		total += t.TimeToComplete
	}
	return total
}

// CompletedByTeam считает выполненные задачи по имени команды.
func CompletedByTeam(tasks []models.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		if t.Status.IsCompleted() {
			counts[t.Team]++
		}
	}
	return counts
}

// SortedTeamCounts переводит словарь в список, упорядоченный по имени команды.
func SortedTeamCounts(counts map[string]int) []models.TeamCount {
	out := make([]models.TeamCount, 0, len(counts))
	for team, n := range counts {
		out = append(out, models.TeamCount{Team: team, Completed: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}

// Summarize собирает все три графика в один отчёт.
func Summarize(tasks []models.Task, loc *time.Location, now time.Time) models.Report {
	return models.Report{
		GeneratedAt:        now,
		TotalTasks:         len(tasks),
		CompletedByWeekday: WeekdayCompletions(tasks, loc),
		PendingHours:       PendingHours(tasks),
		CompletedByTeam:    SortedTeamCounts(CompletedByTeam(tasks)),
	}
}
