package ports

import (
	"context"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// ActivityRepository persists the task audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.TaskActivity) error
	// ListByTask returns the newest entries first, at most limit of them.
	ListByTask(ctx context.Context, taskID int64, limit int) ([]domain.TaskActivity, error)
}

// ActivityPublisher hands activity entries to the asynchronous writer.
// Publish must not block the caller.
type ActivityPublisher interface {
	Publish(a domain.TaskActivity)
}
