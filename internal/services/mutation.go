package services

import (
	"context"
	"log/slog"
)

// Notifier показывает пользователю результат изменения (toast).
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Mutation одно изменение ресурса: проверка формы, запрос, перезагрузка.
type Mutation struct {
	Name    string
	Form    any
	Submit  func(ctx context.Context) error
	Refetch func(ctx context.Context) error
	Success string
	Failure string
}

// Mutator выполняет изменения по единой схеме.
type Mutator struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewMutator создаёт исполнитель изменений.
func NewMutator(notifier Notifier, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{notifier: notifier, logger: logger}
}

// Run выполняет изменение. Без повторов и оптимистичных обновлений:
// при успехе показывает подтверждение и перезагружает коллекцию,
// при отказе показывает уведомление об ошибке и возвращает её.
func (m *Mutator) Run(ctx context.Context, mu Mutation) error {
	if mu.Form != nil {
		if err := ValidateForm(mu.Form); err != nil {
			m.logger.Warn("Form rejected", "mutation", mu.Name, "error", err)
			m.notifier.Failure(err.Error())
			return err
		}
	}

	if err := mu.Submit(ctx); err != nil {
		m.logger.Error("Mutation failed", "mutation", mu.Name, "error", err)
		msg := mu.Failure
		if msg == "" {
			msg = "Failed to " + mu.Name
		}
		m.notifier.Failure(msg + ": " + err.Error())
		return err
	}

	m.logger.Info("Mutation applied", "mutation", mu.Name)
	if mu.Success != "" {
		m.notifier.Success(mu.Success)
	}

	if mu.Refetch != nil {
		// Ошибка перезагрузки уже залогирована загрузчиком, изменение при этом применено.
		_ = mu.Refetch(ctx)
	}
	return nil
}
