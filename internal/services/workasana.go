package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DevN0mad/Workasana/internal/models"
)

// DefaultBaseURL адрес API Workasana по умолчанию.
const DefaultBaseURL = "https://workasana-backend-three.vercel.app"

// WorkasanaOpts параметры подключения к API.
type WorkasanaOpts struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// TokenSource отдаёт bearer-токен для авторизованных запросов.
type TokenSource interface {
	Token() string
}

// WorkasanaService клиент удалённого API Workasana.
type WorkasanaService struct {
	opts   WorkasanaOpts
	logger *slog.Logger
	client *http.Client
}

// Init создаёт клиент API.
func Init(opts WorkasanaOpts, logger *slog.Logger) *WorkasanaService {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &WorkasanaService{
		opts:   opts,
		logger: logger,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// BaseURL возвращает адрес API, с которым работает клиент.
func (s *WorkasanaService) BaseURL() string {
	return s.opts.BaseURL
}

// request выполняет один запрос и возвращает тело ответа.
func (s *WorkasanaService) request(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	s.logger.Debug("API request", "method", method, "path", path)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: extractMessage(data)}
	}
	return data, nil
}

// do выполняет запрос и раскладывает JSON-ответ в v (если v не nil).
func (s *WorkasanaService) do(ctx context.Context, method, path, token string, body, v any) error {
	data, err := s.request(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if v == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FetchCollection загружает список ресурсов по имени коллекции (projects, tasks, teams).
func FetchCollection[T any](ctx context.Context, s *WorkasanaService, tokens TokenSource, resource string) ([]T, error) {
	data, err := s.request(ctx, http.MethodGet, "/"+resource, tokens.Token(), nil)
	if err != nil {
		return nil, err
	}
	items, err := models.DecodeCollection[T](data, resource)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Collection fetched", "resource", resource, "count", len(items))
	return items, nil
}

// Credentials данные для входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupInput данные для регистрации.
type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login обменивает учётные данные на токен сессии.
// Любой отказ возвращается как *AuthError с текстом от сервера.
func (s *WorkasanaService) Login(ctx context.Context, creds Credentials) (string, error) {
	return s.authenticate(ctx, "/login", creds)
}

// Signup регистрирует пользователя. Если API сразу выдаёт токен, он возвращается;
// иначе возвращается пустая строка и сообщение сервера.
func (s *WorkasanaService) Signup(ctx context.Context, input SignupInput) (string, string, error) {
	var resp authResponse
	if err := s.do(ctx, http.MethodPost, "/signup", "", input, &resp); err != nil {
		return "", "", asAuthError(err)
	}
	return resp.Token, resp.Message, nil
}

func (s *WorkasanaService) authenticate(ctx context.Context, path string, body any) (string, error) {
	var resp authResponse
	if err := s.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return "", asAuthError(err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return "", &AuthError{Message: resp.Message}
	}
	return resp.Token, nil
}

func asAuthError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &AuthError{Message: apiErr.Message}
	}
	return err
}

// ListProjects загружает все проекты.
func (s *WorkasanaService) ListProjects(ctx context.Context, tokens TokenSource) ([]models.Project, error) {
	return FetchCollection[models.Project](ctx, s, tokens, "projects")
}

// ListTasks загружает все задачи.
func (s *WorkasanaService) ListTasks(ctx context.Context, tokens TokenSource) ([]models.Task, error) {
	return FetchCollection[models.Task](ctx, s, tokens, "tasks")
}

// ListTeams загружает все команды.
func (s *WorkasanaService) ListTeams(ctx context.Context, tokens TokenSource) ([]models.Team, error) {
	return FetchCollection[models.Team](ctx, s, tokens, "teams")
}

// GetTask загружает одну задачу.
func (s *WorkasanaService) GetTask(ctx context.Context, tokens TokenSource, id string) (models.Task, error) {
	var task models.Task
	if err := s.do(ctx, http.MethodGet, resourcePath("tasks", id), tokens.Token(), nil, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetTeam загружает одну команду.
func (s *WorkasanaService) GetTeam(ctx context.Context, tokens TokenSource, id string) (models.Team, error) {
	var team models.Team
	if err := s.do(ctx, http.MethodGet, resourcePath("teams", id), tokens.Token(), nil, &team); err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// CreateProject создаёт проект.
func (s *WorkasanaService) CreateProject(ctx context.Context, tokens TokenSource, input ProjectInput) error {
	return s.do(ctx, http.MethodPost, "/projects", tokens.Token(), input, nil)
}

// DeleteProject удаляет проект. Задачи проекта удаляет сам API.
func (s *WorkasanaService) DeleteProject(ctx context.Context, tokens TokenSource, id string) error {
	return s.do(ctx, http.MethodDelete, resourcePath("projects", id), tokens.Token(), nil, nil)
}

// CreateTask создаёт задачу.
func (s *WorkasanaService) CreateTask(ctx context.Context, tokens TokenSource, input TaskInput) error {
	return s.do(ctx, http.MethodPost, "/tasks", tokens.Token(), input, nil)
}

// CompleteTask помечает задачу выполненной и возвращает обновлённую задачу.
func (s *WorkasanaService) CompleteTask(ctx context.Context, tokens TokenSource, id string) (models.Task, error) {
	body := map[string]models.TaskStatus{"status": models.TaskCompleted}
	var task models.Task
	if err := s.do(ctx, http.MethodPatch, resourcePath("tasks", id), tokens.Token(), body, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask удаляет задачу.
func (s *WorkasanaService) DeleteTask(ctx context.Context, tokens TokenSource, id string) error {
	return s.do(ctx, http.MethodDelete, resourcePath("tasks", id), tokens.Token(), nil, nil)
}

// CreateTeam создаёт команду.
func (s *WorkasanaService) CreateTeam(ctx context.Context, tokens TokenSource, input TeamInput) error {
	return s.do(ctx, http.MethodPost, "/teams", tokens.Token(), input, nil)
}

// UpdateTeamMembers заменяет список участников команды.
func (s *WorkasanaService) UpdateTeamMembers(ctx context.Context, tokens TokenSource, id string, members []string) error {
	body := map[string][]string{"members": members}
	return s.do(ctx, http.MethodPut, resourcePath("teams", id), tokens.Token(), body, nil)
}

// DeleteTeam удаляет команду.
func (s *WorkasanaService) DeleteTeam(ctx context.Context, tokens TokenSource, id string) error {
	return s.do(ctx, http.MethodDelete, resourcePath("teams", id), tokens.Token(), nil, nil)
}

func resourcePath(resource, id string) string {
	return "/" + resource + "/" + url.PathEscape(strings.TrimSpace(id))
}
