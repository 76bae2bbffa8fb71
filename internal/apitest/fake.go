// Package apitest поднимает поддельный API Workasana на httptest для тестов.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Token токен, который выдаёт поддельный API после входа.
const Token = "test-token"

// Server поддельный API с данными в памяти.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	users    map[string]user
	projects []map[string]any
	tasks    []map[string]any
	teams    []map[string]any

	// WrapCollections отдаёт списки в виде {"<resource>": [...]}.
	WrapCollections bool
	// FailPaths возвращает 500 для перечисленных путей GET.
	FailPaths map[string]bool
	// Requests журнал запросов "METHOD /path".
	Requests []string
	// AuthHeaders заголовки Authorization по порядку запросов.
	AuthHeaders []string
}

type user struct {
	Name     string
	Password string
}

// New запускает сервер. Пользователь alice@example.com / secret уже зарегистрирован.
func New() *Server {
	s := &Server{
		users:     map[string]user{"alice@example.com": {Name: "Alice", Password: "secret"}},
		FailPaths: map[string]bool{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SeedProject добавляет проект и возвращает его id.
func (s *Server) SeedProject(name, status string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id("p")
	s.projects = append(s.projects, map[string]any{"_id": id, "name": name, "description": "", "status": status})
	return id
}

// SeedTask добавляет задачу. project передаётся как есть: строкой или объектом.
func (s *Server) SeedTask(name string, project any, team, status string, hours float64, updatedAt time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id("t")
	s.tasks = append(s.tasks, map[string]any{
		"_id": id, "name": name, "project": project, "team": team,
		"owners": []string{"John"}, "tags": []string{"Bug"},
		"timeToComplete": hours, "status": status,
		"updatedAt": updatedAt.UTC().Format(time.RFC3339),
	})
	return id
}

// SeedTeam добавляет команду.
func (s *Server) SeedTeam(name string, members ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id("tm")
	if members == nil {
		members = []string{}
	}
	s.teams = append(s.teams, map[string]any{"_id": id, "name": name, "members": members})
	return id
}

// SetFail включает или выключает отказ для GET пути.
func (s *Server) SetFail(path string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailPaths[path] = fail
}

// RequestLog возвращает копию журнала запросов.
func (s *Server) RequestLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Requests...)
}

// LastAuthHeader возвращает заголовок Authorization последнего запроса.
func (s *Server) LastAuthHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.AuthHeaders) == 0 {
		return ""
	}
	return s.AuthHeaders[len(s.AuthHeaders)-1]
}

func (s *Server) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%d", prefix, s.nextID)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, r.Method+" "+r.URL.Path)
	s.AuthHeaders = append(s.AuthHeaders, r.Header.Get("Authorization"))

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := parts[0]
	id := ""
	if len(parts) > 1 {
		id = parts[1]
	}

	switch resource {
	case "login":
		s.login(w, r)
		return
	case "signup":
		s.signup(w, r)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	if r.Method == http.MethodGet && s.FailPaths[r.URL.Path] {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		return
	}

	coll := s.collection(resource)
	if coll == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
		return
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		if s.WrapCollections {
			writeJSON(w, http.StatusOK, map[string]any{resource: *coll})
			return
		}
		writeJSON(w, http.StatusOK, *coll)
	case r.Method == http.MethodGet:
		if item := find(*coll, id); item != nil {
			writeJSON(w, http.StatusOK, item)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	case r.Method == http.MethodPost && id == "":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["name"] == nil || body["name"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
			return
		}
		body["_id"] = s.id(resource[:1])
		body["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		*coll = append(*coll, body)
		writeJSON(w, http.StatusCreated, body)
	case r.Method == http.MethodPatch || r.Method == http.MethodPut:
		item := find(*coll, id)
		if item == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
			return
		}
		for k, v := range body {
			item[k] = v
		}
		item["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, item)
	case r.Method == http.MethodDelete:
		if !remove(coll, id) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		if resource == "projects" {
			kept := s.tasks[:0]
			for _, t := range s.tasks {
				if t["project"] != id {
					kept = append(kept, t)
				}
			}
			s.tasks = kept
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	u, ok := s.users[body.Email]
	if !ok || u.Password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if _, exists := s.users[body.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	s.users[body.Email] = user{Name: body.Name, Password: body.Password}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered", "token": Token})
}

func (s *Server) collection(resource string) *[]map[string]any {
	switch resource {
	case "projects":
		return &s.projects
	case "tasks":
		return &s.tasks
	case "teams":
		return &s.teams
	}
	return nil
}

func find(items []map[string]any, id string) map[string]any {
	for _, it := range items {
		if it["_id"] == id {
			return it
		}
	}
	return nil
}

func remove(items *[]map[string]any, id string) bool {
	for i, it := range *items {
		if it["_id"] == id {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
