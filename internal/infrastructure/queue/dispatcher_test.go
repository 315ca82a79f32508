package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/core/domain"
)

type recordingRepo struct {
	mu      sync.Mutex
	entries []domain.TaskActivity
	fail    bool
}

func (r *recordingRepo) Insert(_ context.Context, a *domain.TaskActivity) error {
	if r.fail {
		return errors.New("store unavailable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *a)
	return nil
}

func (r *recordingRepo) ListByTask(context.Context, int64, int) ([]domain.TaskActivity, error) {
	return nil, nil
}

func (r *recordingRepo) byTask() map[int64][]domain.TaskStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64][]domain.TaskStatus)
	for _, e := range r.entries {
		out[e.TaskID] = append(out[e.TaskID], e.ToStatus)
	}
	return out
}

var sequence = []domain.TaskStatus{
	domain.TaskPending, domain.TaskInProgress, domain.TaskCompleted, domain.TaskPending, domain.TaskCompleted,
}

func TestDispatcher_PreservesPerTaskOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	d.Start(context.Background())

	for _, status := range sequence {
		for taskID := int64(1); taskID <= 10; taskID++ {
			d.Publish(domain.TaskActivity{TaskID: taskID, Action: domain.ActivityStatusChanged, ToStatus: status})
		}
	}
	d.Close()

	got := repo.byTask()
	require.Len(t, got, 10)
	for taskID, statuses := range got {
		require.Equal(t, sequence, statuses, "task %d", taskID)
	}
}

func TestDispatcher_DropsWhenShardIsFull(t *testing.T) {
	repo := &recordingRepo{}
	d := newDispatcher(1, 1, repo, zerolog.Nop())

	// Workers not started yet: the single slot fills up.
	d.Publish(domain.TaskActivity{TaskID: 1, Action: domain.ActivityCreated})
	d.Publish(domain.TaskActivity{TaskID: 1, Action: domain.ActivityUpdated})

	d.Start(context.Background())
	d.Close()

	require.Len(t, repo.entries, 1)
	require.Equal(t, domain.ActivityCreated, repo.entries[0].Action)
}

func TestDispatcher_PublishAfterCloseIsDropped(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	require.NotPanics(t, func() {
		d.Publish(domain.TaskActivity{TaskID: 7, Action: domain.ActivityDeleted})
	})
	require.Empty(t, repo.entries)
}

func TestDispatcher_WriteFailuresDoNotStopWorkers(t *testing.T) {
	repo := &recordingRepo{fail: true}
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(context.Background())

	for i := int64(0); i < 5; i++ {
		d.Publish(domain.TaskActivity{TaskID: i, Action: domain.ActivityCreated})
	}
	require.NotPanics(t, d.Close)
	require.Empty(t, repo.entries)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	for taskID := int64(1); taskID < 100; taskID++ {
		idx := d.shardIndex(taskID)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 8)
		require.Equal(t, idx, d.shardIndex(taskID))
	}
}
