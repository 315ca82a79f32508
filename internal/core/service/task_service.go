package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/api/metrics"
	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

const activityPageSize = 100

type TaskService struct {
	tasks     ports.TaskRepository
	projects  ports.ProjectRepository
	users     ports.UserRepository
	tags      ports.TagRepository
	activity  ports.ActivityRepository
	publisher ports.ActivityPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewTaskService(
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	users ports.UserRepository,
	tags ports.TagRepository,
	activity ports.ActivityRepository,
	publisher ports.ActivityPublisher,
	logger zerolog.Logger,
) *TaskService {
	if activity == nil {
		activity = DiscardActivity{}
	}
	return &TaskService{
		tasks:     tasks,
		projects:  projects,
		users:     users,
		tags:      tags,
		activity:  activity,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create adds a task to a project the caller owns (or any project for admins).
func (s *TaskService) Create(ctx context.Context, actor domain.Identity, in ports.NewTask) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}
	status := domain.TaskPending
	if in.Status != "" {
		status = domain.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.CanModify(actor) {
		return nil, domain.ErrNotPermitted
	}

	assignee, err := s.resolveAssignee(ctx, in.AssignedUserID)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &domain.Task{
		Title:          title,
		Description:    in.Description,
		Status:         status,
		ProjectID:      project.ID,
		AssignedUserID: assignee,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tasks.Create(ctx, task, tagIDs); err != nil {
		s.logger.Error().Err(err).Int64("project_id", project.ID).Msg("failed to create task")
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(status)).Inc()
	s.record(actor, task, domain.ActivityCreated, "", status)
	s.logger.Info().Int64("task_id", task.ID).Int64("project_id", project.ID).Msg("task created")

	return s.tasks.FindByID(ctx, task.ID)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.tasks.List(ctx, filter)
}

func (s *TaskService) Stats(ctx context.Context, filter ports.TaskFilter) (*domain.TaskStats, error) {
	return s.tasks.Stats(ctx, filter)
}

// Update applies patch. Project owners and admins may change any field; the
// assignee may only move the status.
func (s *TaskService) Update(ctx context.Context, actor domain.Identity, id int64, patch ports.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return nil, domain.ErrEmptyPatch
	}

	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.FindByID(ctx, current.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.CanModify(actor) && !(current.IsAssignedTo(actor.ID) && patch.OnlyStatus()) {
		return nil, domain.ErrNotPermitted
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.Invalid("title must not be empty")
		}
		patch.Title = &title
	}
	if patch.Status != nil && !domain.TaskStatus(*patch.Status).Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if patch.AssignedUserID != nil && *patch.AssignedUserID != 0 {
		if _, err := s.users.FindByID(ctx, *patch.AssignedUserID); err != nil {
			return nil, err
		}
	}
	if patch.TagIDs != nil {
		ids, err := s.resolveTags(ctx, *patch.TagIDs)
		if err != nil {
			return nil, err
		}
		patch.TagIDs = &ids
	}

	updated, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.recordChanges(actor, current, updated, patch)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if !project.CanModify(actor) {
		return domain.ErrNotPermitted
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.record(actor, task, domain.ActivityDeleted, task.Status, "")
	s.logger.Info().Int64("task_id", id).Int64("actor_id", actor.ID).Msg("task deleted")
	return nil
}

// Activity returns the task's audit trail, newest first.
func (s *TaskService) Activity(ctx context.Context, id int64) ([]domain.TaskActivity, error) {
	if _, err := s.tasks.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.activity.ListByTask(ctx, id, activityPageSize)
}

func (s *TaskService) recordChanges(actor domain.Identity, before, after *domain.Task, patch ports.TaskPatch) {
	if before.Status != after.Status {
		metrics.TaskStatusTransitionsTotal.WithLabelValues(string(before.Status), string(after.Status)).Inc()
		s.record(actor, after, domain.ActivityStatusChanged, before.Status, after.Status)
	}
	if patch.AssignedUserID != nil && !sameAssignee(before.AssignedUserID, after.AssignedUserID) {
		s.record(actor, after, domain.ActivityAssigned, "", "")
	}
	if patch.Title != nil || patch.Description != nil || patch.TagIDs != nil {
		s.record(actor, after, domain.ActivityUpdated, "", "")
	}
}

func (s *TaskService) record(actor domain.Identity, task *domain.Task, action domain.ActivityAction, from, to domain.TaskStatus) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(domain.TaskActivity{
		TaskID:     task.ID,
		ProjectID:  task.ProjectID,
		ActorID:    actor.ID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		AssigneeID: task.AssignedUserID,
		At:         s.now().UTC(),
	})
}

func (s *TaskService) resolveAssignee(ctx context.Context, id *int64) (*int64, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	if _, err := s.users.FindByID(ctx, *id); err != nil {
		return nil, err
	}
	v := *id
	return &v, nil
}

// resolveTags de-duplicates ids and checks that every tag exists.
func (s *TaskService) resolveTags(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	n, err := s.tags.CountExisting(ctx, unique)
	if err != nil {
		return nil, err
	}
	if n != len(unique) {
		return nil, domain.ErrTagNotFound
	}
	return unique, nil
}

func sameAssignee(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
