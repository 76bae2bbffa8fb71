package models

import (
	"encoding/json"
	"time"
)

// Project представляет проект в Workasana.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// UnmarshalJSON принимает как `_id`, так и `id`.
func (p *Project) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID     string        `json:"_id"`
		ID          string        `json:"id"`
		Name        string        `json:"name"`
		Description string        `json:"description"`
		Status      ProjectStatus `json:"status"`
		CreatedAt   flexTime      `json:"createdAt"`
		UpdatedAt   flexTime      `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Project{
		ID:          firstNonEmpty(raw.MongoID, raw.ID),
		Name:        raw.Name,
		Description: raw.Description,
		Status:      raw.Status,
		CreatedAt:   raw.CreatedAt.Time,
		UpdatedAt:   raw.UpdatedAt.Time,
	}
	return nil
}
