package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DevN0mad/Workasana/internal/models"
)

var validate = validator.New()

// ProjectInput буфер формы создания проекта.
type ProjectInput struct {
	Name        string               `json:"name" validate:"required"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status" validate:"required"`
}

// NewProjectInput возвращает пустую форму со статусом по умолчанию.
func NewProjectInput() ProjectInput {
	return ProjectInput{Status: models.ProjectPlanned}
}

// TaskInput буфер формы создания задачи.
type TaskInput struct {
	Name           string            `json:"name" validate:"required"`
	Project        string            `json:"project" validate:"required"`
	Team           string            `json:"team" validate:"required"`
	Owners         []string          `json:"owners"`
	Tags           []string          `json:"tags"`
	TimeToComplete float64           `json:"timeToComplete" validate:"min=0"`
	Status         models.TaskStatus `json:"status" validate:"required"`
}

// NewTaskInput возвращает пустую форму со статусом по умолчанию.
func NewTaskInput() TaskInput {
	return TaskInput{Owners: []string{}, Tags: []string{}, Status: models.TaskToDo}
}

// Toggle добавляет значение в список или убирает его, если оно уже выбрано.
func Toggle(list []string, value string) []string {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, v := range list {
		if v == value {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, value)
	}
	return out
}

// TeamInput буфер формы создания команды.
type TeamInput struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

// Normalize отбрасывает пустые поля участников.
func (t TeamInput) Normalize() TeamInput {
	members := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return TeamInput{Name: strings.TrimSpace(t.Name), Members: members}
}

// MemberInput буфер формы добавления участника.
type MemberInput struct {
	Name string `validate:"required"`
}

// ValidateForm проверяет обязательные поля формы и возвращает понятную ошибку.
func ValidateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return &FormError{Problems: msgs}
}

// FormError ошибка проверки формы.
type FormError struct {
	Problems []string
}

func (e *FormError) Error() string {
	return strings.Join(e.Problems, "; ")
}
