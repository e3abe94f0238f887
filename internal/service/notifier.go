package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/models"
)

// Notifier delivers best-effort notifications to an external system.
// Failures must never surface to the caller.
type Notifier interface {
	SendWelcome(ctx context.Context, user *models.User) error
}

// LogNotifier stands in for a real mail provider and just records the event.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) SendWelcome(ctx context.Context, user *models.User) error {
	n.Logger.Info("welcome notification",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))
	return nil
}
