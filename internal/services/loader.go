package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DevN0mad/Workasana/internal/models"
)

// FetchFunc загружает коллекцию целиком.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Loader хранит последнее успешно загруженное состояние коллекции.
// При ошибке загрузки состояние не меняется.
type Loader[T any] struct {
	name   string
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewLoader создаёт загрузчик коллекции.
func NewLoader[T any](name string, fetch FetchFunc[T], logger *slog.Logger) *Loader[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[T]{name: name, fetch: fetch, logger: logger, items: []T{}}
}

// NewCollectionLoader создаёт загрузчик для коллекции API по её имени.
func NewCollectionLoader[T any](s *WorkasanaService, tokens TokenSource, resource string) *Loader[T] {
	return NewLoader(resource, func(ctx context.Context) ([]T, error) {
		return FetchCollection[T](ctx, s, tokens, resource)
	}, s.logger)
}

// Load перезагружает коллекцию. Ошибка логируется и возвращается, прежний список остаётся.
func (l *Loader[T]) Load(ctx context.Context) error {
	items, err := l.fetch(ctx)
	if err != nil {
		l.logger.Error("Failed to fetch collection, keeping previous state", "resource", l.name, "error", err)
		return err
	}

	l.mu.Lock()
	l.items = items
	l.loaded = true
	l.mu.Unlock()
	return nil
}

// Items возвращает копию текущего списка.
func (l *Loader[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Loaded сообщает, была ли хотя бы одна успешная загрузка.
func (l *Loader[T]) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Collections загрузчики всех трёх коллекций для одного экрана.
type Collections struct {
	Projects *Loader[models.Project]
	Tasks    *Loader[models.Task]
	Teams    *Loader[models.Team]
}

// NewCollections создаёт загрузчики проектов, задач и команд.
func NewCollections(s *WorkasanaService, tokens TokenSource) *Collections {
	return &Collections{
		Projects: NewCollectionLoader[models.Project](s, tokens, "projects"),
		Tasks:    NewCollectionLoader[models.Task](s, tokens, "tasks"),
		Teams:    NewCollectionLoader[models.Team](s, tokens, "teams"),
	}
}
