package models

import (
	"encoding/json"
	"unicode"
)

// Team представляет команду. Участники хранятся как строки с именами.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// UnmarshalJSON нормализует разные варианты имени команды и участников.
func (t *Team) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID  string     `json:"_id"`
		ID       string     `json:"id"`
		Name     string     `json:"name"`
		Team     string     `json:"team"`
		TeamName string     `json:"teamName"`
		Members  []namedRef `json:"members"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	members := make([]string, 0, len(raw.Members))
	for _, m := range raw.Members {
		if name := m.Display(); name != "" {
			members = append(members, name)
		}
	}

	*t = Team{
		ID:      firstNonEmpty(raw.MongoID, raw.ID),
		Name:    firstNonEmpty(raw.Name, raw.Team, raw.TeamName),
		Members: members,
	}
	return nil
}

// Initial возвращает первую букву имени участника в верхнем регистре.
func Initial(member string) string {
	for _, r := range member {
		return string(unicode.ToUpper(r))
	}
	return "?"
}
