package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.project_id, t.assigned_user_id, t.created_at, t.updated_at`

// TaskRepository implements ports.TaskRepository. Tags are loaded with one
// extra query per read.
type TaskRepository struct {
	db *sql.DB
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task, tagIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (title, description, status, project_id, assigned_user_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.Title, t.Description, string(t.Status), t.ProjectID, nullInt64(t.AssignedUserID), t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrProjectNotFound
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := linkTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		t.ID = id
		return nil
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrTaskNotFound)
	}
	if err := r.loadTags(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	where, args := taskWhere(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN projects p ON p.id = t.project_id` +
		where + ` ORDER BY t.created_at DESC, t.id DESC`

	tasks, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// query drains rows before returning; the pool has a single connection.
func (r *TaskRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id int64, patch ports.TaskPatch) (*domain.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.AssignedUserID != nil {
		sets = append(sets, "assigned_user_id = ?")
		args = append(args, nullInt64(patch.AssignedUserID))
	}
	args = append(args, id)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUserNotFound
			}
			return err
		}
		if err := expectAffected(res, domain.ErrTaskNotFound); err != nil {
			return err
		}
		if patch.TagIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, id); err != nil {
			return err
		}
		return linkTags(ctx, tx, id, *patch.TagIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrTaskNotFound)
}

func (r *TaskRepository) Stats(ctx context.Context, filter ports.TaskFilter) (*domain.TaskStats, error) {
	where, args := taskWhere(filter)
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.status, COUNT(*) FROM tasks t JOIN projects p ON p.id = t.project_id`+where+` GROUP BY t.status`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.TaskStats{Counts: make(map[domain.TaskStatus]int64, len(domain.TaskStatuses))}
	for _, s := range domain.TaskStatuses {
		stats.Counts[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.Counts[domain.TaskStatus(status)] = n
		stats.Total += n
	}
	return stats, rows.Err()
}

func (r *TaskRepository) loadTags(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		t.Tags = []domain.Tag{}
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT tt.task_id, g.id, g.name, g.created_at
		   FROM task_tags tt JOIN tags g ON g.id = tt.tag_id
		  WHERE tt.task_id IN (`+placeholders(len(ids))+`)
		  ORDER BY g.name`,
		int64Args(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID int64
			tag    domain.Tag
		)
		if err := rows.Scan(&taskID, &tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return err
		}
		if t, ok := byID[taskID]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	return rows.Err()
}

func linkTags(ctx context.Context, tx *sql.Tx, taskID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tagID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrTagNotFound
			}
			return err
		}
	}
	return nil
}

func taskWhere(f ports.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ProjectID != 0 {
		conds = append(conds, "t.project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, string(f.Status))
	}
	if f.AssignedUserID != 0 {
		conds = append(conds, "t.assigned_user_id = ?")
		args = append(args, f.AssignedUserID)
	}
	if f.TagID != 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM task_tags x WHERE x.task_id = t.id AND x.tag_id = ?)")
		args = append(args, f.TagID)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + q + "%"
		conds = append(conds, "(t.title LIKE ? OR t.description LIKE ?)")
		args = append(args, like, like)
	}
	if f.VisibleTo != 0 {
		conds = append(conds, "(p.owner_id = ? OR t.assigned_user_id = ?)")
		args = append(args, f.VisibleTo, f.VisibleTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		assignee sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.ProjectID, &assignee, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.AssignedUserID = int64Ptr(assignee)
	return &t, nil
}
