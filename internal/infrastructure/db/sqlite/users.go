package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// userColumns is the default read projection; it leaves out password_hash.
const userColumns = `id, email, role, profile_photo, created_at`

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	db *sql.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, cred *domain.Credential) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, profile_photo, created_at) VALUES (?, ?, ?, ?, ?)`,
		cred.Email, cred.PasswordHash, cred.Role, nullString(cred.ProfilePhoto), cred.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cred.ID = id
	return nil
}

func (r *UserRepository) FindCredentials(ctx context.Context, email string) (*domain.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE email = ?`, email)

	var (
		cred  domain.Credential
		photo sql.NullString
	)
	if err := row.Scan(&cred.ID, &cred.Email, &cred.Role, &photo, &cred.CreatedAt, &cred.PasswordHash); err != nil {
		return nil, mapNotFound(err, domain.ErrUserNotFound)
	}
	cred.ProfilePhoto = stringPtr(photo)
	return &cred, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) PasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, id).Scan(&hash)
	if err != nil {
		return "", mapNotFound(err, domain.ErrUserNotFound)
	}
	return hash, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	var (
		sets []string
		args []any
	)
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.ProfilePhoto != nil {
		sets = append(sets, "profile_photo = ?")
		args = append(args, nullString(patch.ProfilePhoto))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	if err := expectAffected(res, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u     domain.User
		photo sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Role, &photo, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ProfilePhoto = stringPtr(photo)
	return &u, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
