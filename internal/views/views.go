// Package views содержит производные представления: фильтры и группировки
// поверх загруженных коллекций. Функции не меняют входные данные.
package views

import (
	"math"
	"strings"
	"time"

	"github.com/DevN0mad/Workasana/internal/models"
)

func matchesQuery(name, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

func matchesStatus(status, filter string) bool {
	return filter == "" || filter == models.StatusAll || status == filter
}

// FilterProjects отбирает проекты по подстроке в имени и по статусу ("All" означает любой).
func FilterProjects(projects []models.Project, query, status string) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if matchesQuery(p.Name, query) && matchesStatus(string(p.Status), status) {
			out = append(out, p)
		}
	}
	return out
}

// FilterTasks отбирает задачи по подстроке в имени и по статусу ("All" означает любой).
func FilterTasks(tasks []models.Task, query, status string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesQuery(t.Name, query) && matchesStatus(string(t.Status), status) {
			out = append(out, t)
		}
	}
	return out
}

// FilterTasksByTagOwner отбирает задачи с указанным тегом и исполнителем.
// Пустой критерий не ограничивает выборку.
func FilterTasksByTagOwner(tasks []models.Task, tag, owner string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if tag != "" && !t.HasTag(tag) {
			continue
		}
		if owner != "" && !t.HasOwner(owner) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ProjectGroup проект и его задачи.
type ProjectGroup struct {
	Project models.Project `json:"project"`
	Tasks   []models.Task  `json:"tasks"`
}

// GroupTasksByProject раскладывает задачи по проектам в порядке списка проектов.
// Задачи без проекта или со ссылкой на неизвестный проект не попадают ни в одну группу.
func GroupTasksByProject(projects []models.Project, tasks []models.Task) []ProjectGroup {
	byProject := make(map[string][]models.Task, len(projects))
	for _, t := range tasks {
		if t.Project.ID == "" {
			continue
		}
		byProject[t.Project.ID] = append(byProject[t.Project.ID], t)
	}

	groups := make([]ProjectGroup, 0, len(projects))
	seen := make(map[string]bool, len(projects))
	for _, p := range projects {
		group := ProjectGroup{Project: p, Tasks: []models.Task{}}
		if !seen[p.ID] {
			seen[p.ID] = true
			if ts, ok := byProject[p.ID]; ok {
				group.Tasks = ts
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// DaysRemaining число дней до срока, округлённое вверх. ok=false, если срока нет.
func DaysRemaining(due *time.Time, now time.Time) (days int, ok bool) {
	if due == nil || due.IsZero() {
		return 0, false
	}
	return int(math.Ceil(due.Sub(now).Hours() / 24)), true
}

// ProjectName имя проекта задачи: из встроенной ссылки или из списка проектов.
func ProjectName(task models.Task, projects []models.Project) string {
	if task.Project.Name != "" {
		return task.Project.Name
	}
	for _, p := range projects {
		if p.ID == task.Project.ID && task.Project.ID != "" {
			return p.Name
		}
	}
	return "N/A"
}

// OwnerNames переводит идентификаторы исполнителей в имена по справочнику.
// Значения, которых нет в справочнике, выводятся как есть.
func OwnerNames(task models.Task, directory map[string]string) []string {
	out := make([]string, 0, len(task.Owners))
	for _, o := range task.Owners {
		if name, ok := directory[o]; ok && name != "" {
			out = append(out, name)
			continue
		}
		out = append(out, o)
	}
	return out
}
