package service

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// NoRevocations is the SessionRevoker used when no revocation store is
// configured: tokens stay valid until they expire.
type NoRevocations struct{}

func (NoRevocations) RevokeSessions(_ context.Context, _ int64, at time.Time) (time.Time, error) {
	return at, nil
}

func (NoRevocations) RevokedBefore(context.Context, int64) (time.Time, error) {
	return time.Time{}, nil
}

// DiscardActivity is the ActivityRepository used when no audit store is
// configured.
type DiscardActivity struct{}

func (DiscardActivity) Insert(context.Context, *domain.TaskActivity) error { return nil }

func (DiscardActivity) ListByTask(context.Context, int64, int) ([]domain.TaskActivity, error) {
	return []domain.TaskActivity{}, nil
}

var (
	_ ports.SessionRevoker     = NoRevocations{}
	_ ports.ActivityRepository = DiscardActivity{}
)
