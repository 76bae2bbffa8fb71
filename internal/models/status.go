package models

import (
	"fmt"
	"strings"
)

// StatusAll значение фильтра, совпадающее с любым статусом.
const StatusAll = "All"

// ProjectStatus статус проекта.
type ProjectStatus string

const (
	ProjectPlanned    ProjectStatus = "Planned"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
)

// ProjectStatuses все статусы проекта в порядке отображения.
var ProjectStatuses = []ProjectStatus{ProjectPlanned, ProjectInProgress, ProjectCompleted}

// TaskStatus статус задачи.
type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
	TaskBlocked    TaskStatus = "Blocked"
)

// TaskStatuses все статусы задачи в порядке отображения.
var TaskStatuses = []TaskStatus{TaskToDo, TaskInProgress, TaskCompleted, TaskBlocked}

// ParseProjectStatus разбирает статус проекта без учёта регистра.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	for _, st := range ProjectStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// ParseTaskStatus разбирает статус задачи без учёта регистра.
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, st := range TaskStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// IsCompleted сообщает, закрыта ли задача.
func (s TaskStatus) IsCompleted() bool {
	return s == TaskCompleted
}
