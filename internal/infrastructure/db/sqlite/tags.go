package sqlite

import (
	"context"
	"database/sql"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

const tagColumns = `id, name, created_at`

// TagRepository implements ports.TagRepository.
type TagRepository struct {
	db *sql.DB
}

var _ ports.TagRepository = (*TagRepository)(nil)

func (r *TagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (name, created_at) VALUES (?, ?)`, tag.Name, tag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTagExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tag.ID = id
	return nil
}

func (r *TagRepository) FindByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var t domain.Tag
	err := r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrTagNotFound)
	}
	return &t, nil
}

func (r *TagRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...).Scan(&n)
	return n, err
}

func (r *TagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

func (r *TagRepository) Rename(ctx context.Context, id int64, name string) (*domain.Tag, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrTagExists
		}
		return nil, err
	}
	if err := expectAffected(res, domain.ErrTagNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrTagNotFound)
}
