package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DevN0mad/Workasana/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound возвращается, если по ключу ничего не сохранено.
var ErrNotFound = errors.New("storage: key not found")

// SessionStorage хранит клиентское состояние сессии в sqlite.
type SessionStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewSessionStorage открывает (и при необходимости создаёт) файл sqlite по пути dbPath.
func NewSessionStorage(dbPath string, logger *slog.Logger) (*SessionStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Error("failed to create db dir", "dir", dir, "error", err)
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("failed to open sqlite db", "path", dbPath, "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&models.SessionEntry{}); err != nil {
		logger.Error("failed to auto-migrate session model", "error", err)
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logger.Debug("sqlite session storage initialized", "path", dbPath)

	return &SessionStorage{db: db, logger: logger}, nil
}

// Get возвращает значение по ключу или ErrNotFound.
func (s *SessionStorage) Get(ctx context.Context, key string) (string, error) {
	var entry models.SessionEntry
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		s.logger.Error("failed to load session entry", "key", key, "error", err)
		return "", fmt.Errorf("load %q: %w", key, err)
	}
	return entry.Value, nil
}

// Set сохраняет значение по ключу, перезаписывая предыдущее.
func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	db := s.db.WithContext(ctx)

	var entry models.SessionEntry
	err := db.Where("entry_key = ?", key).First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("failed to load session entry", "key", key, "error", err)
			return fmt.Errorf("load %q: %w", key, err)
		}
		entry = models.SessionEntry{Key: key, Value: value}
		if err := db.Create(&entry).Error; err != nil {
			s.logger.Error("failed to create session entry", "key", key, "error", err)
			return fmt.Errorf("create %q: %w", key, err)
		}
		s.logger.Debug("session entry created", "key", key)
		return nil
	}

	entry.Value = value
	if err := db.Save(&entry).Error; err != nil {
		s.logger.Error("failed to update session entry", "key", key, "error", err)
		return fmt.Errorf("update %q: %w", key, err)
	}

	s.logger.Debug("session entry updated", "key", key)
	return nil
}

// Delete удаляет значение по ключу. Отсутствие ключа ошибкой не считается.
func (s *SessionStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.SessionEntry{}).Error; err != nil {
		s.logger.Error("failed to remove session entry", "key", key, "error", err)
		return fmt.Errorf("delete %q: %w", key, err)
	}

	s.logger.Debug("session entry removed", "key", key)
	return nil
}

// Close закрывает соединение с базой.
func (s *SessionStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
