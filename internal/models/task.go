package models

import (
	"encoding/json"
	"time"
)

// ProjectRef ссылка задачи на проект.
// API отдаёт её то строкой с идентификатором, то встроенным объектом.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON приводит обе формы ссылки к одной.
func (p *ProjectRef) UnmarshalJSON(data []byte) error {
	var ref namedRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*p = ProjectRef{ID: ref.ID, Name: ref.Name}
	return nil
}

// Task представляет задачу в Workasana.
type Task struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Project        ProjectRef `json:"project"`
	Team           string     `json:"team"`
	Owners         []string   `json:"owners"`
	Tags           []string   `json:"tags"`
	TimeToComplete float64    `json:"timeToComplete"`
	Status         TaskStatus `json:"status"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// UnmarshalJSON нормализует задачу на границе API.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID        string     `json:"_id"`
		ID             string     `json:"id"`
		Name           string     `json:"name"`
		Project        ProjectRef `json:"project"`
		Team           namedRef   `json:"team"`
		Owners         []namedRef `json:"owners"`
		Tags           []string   `json:"tags"`
		TimeToComplete flexNumber `json:"timeToComplete"`
		Status         TaskStatus `json:"status"`
		DueDate        flexTime   `json:"dueDate"`
		UpdatedAt      flexTime   `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	owners := make([]string, 0, len(raw.Owners))
	for _, o := range raw.Owners {
		if name := o.Display(); name != "" {
			owners = append(owners, name)
		}
	}

	*t = Task{
		ID:             firstNonEmpty(raw.MongoID, raw.ID),
		Name:           raw.Name,
		Project:        raw.Project,
		Team:           raw.Team.Display(),
		Owners:         owners,
		Tags:           raw.Tags,
		TimeToComplete: float64(raw.TimeToComplete),
		Status:         raw.Status,
		UpdatedAt:      raw.UpdatedAt.Time,
	}
	if !raw.DueDate.IsZero() {
		due := raw.DueDate.Time
		t.DueDate = &due
	}
	return nil
}

// HasTag сообщает, помечена ли задача тегом.
func (t Task) HasTag(tag string) bool {
	return contains(t.Tags, tag)
}

// HasOwner сообщает, входит ли участник в исполнители задачи.
func (t Task) HasOwner(owner string) bool {
	return contains(t.Owners, owner)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
