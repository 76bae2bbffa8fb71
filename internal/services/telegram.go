package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DevN0mad/Workasana/internal/models"
)

// TelegramOpts параметры необходимые для инициализации сервиса TelegramBotService.
type TelegramOpts struct {
	Token   string `mapstructure:"token" validate:"required"`
	ChatID  int64  `mapstructure:"chat_id" validate:"required"`
	Message string `mapstructure:"message"`
}

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramBotService отправляет отчёты в чат telegram.
type TelegramBotService struct {
	opts   TelegramOpts
	logger *slog.Logger
	bot    botSender
}

// NewTelegramBot создает экземпляр сервиса для работы с telegram ботом.
func NewTelegramBot(opts TelegramOpts, logger *slog.Logger) (*TelegramBotService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	if opts.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	logger.Info("Telegram bot created successfully",
		"bot_user", bot.Self.UserName,
		"chat_id", opts.ChatID,
	)
	return &TelegramBotService{opts: opts, logger: logger, bot: bot}, nil
}

// SendReport отправляет xlsx-отчёт с краткой сводкой в подписи.
func (s *TelegramBotService) SendReport(ctx context.Context, path string, report models.Report) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if _, err := os.Stat(path); err != nil {
		s.logger.Error("Report file not accessible", "path", path, "error", err)
		return fmt.Errorf("access report at %q: %w", path, err)
	}

	msg := tgbotapi.NewDocument(s.opts.ChatID, tgbotapi.FilePath(path))
	msg.Caption = reportCaption(s.opts.Message, report)

	if _, err := s.bot.Send(msg); err != nil {
		s.logger.Error("Failed to send report",
			"path", path,
			"chat_id", s.opts.ChatID,
			"error", err)
		return fmt.Errorf("send report: %w", err)
	}

	s.logger.Info("Report sent successfully", "path", path, "chat_id", s.opts.ChatID)
	return nil
}

// reportCaption формирует подпись к отчёту.
func reportCaption(message string, report models.Report) string {
	var b strings.Builder
	if message = strings.TrimSpace(message); message != "" {
		b.WriteString(message)
		b.WriteString("\n\n")
	}

	completed := 0
	for _, n := range report.CompletedByWeekday {
		completed += n
	}
	fmt.Fprintf(&b, "Tasks: %d, completed: %d\n", report.TotalTasks, completed)
	fmt.Fprintf(&b, "Hours pending: %g", report.PendingHours)
	for _, tc := range report.CompletedByTeam {
		fmt.Fprintf(&b, "\n%s: %d closed", tc.Team, tc.Completed)
	}
	return b.String()
}
