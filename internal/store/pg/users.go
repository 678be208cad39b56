package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scanid.app/internal/users"
)

// UserStore implements users.Store.
type UserStore struct {
	store *Store
}

var _ users.Store = (*UserStore)(nil)

func NewUserStore(store *Store) *UserStore { return &UserStore{store: store} }

const userColumns = `id, system_edition_id, coalesce(company_id, ''), email, first_name, last_name, role, status, password_hash, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, u *users.User) error {
	row := s.store.db.QueryRowContext(ctx, `
		insert into users (id, system_edition_id, company_id, email, first_name, last_name, role, status, password_hash)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning created_at, updated_at
	`, u.ID, u.SystemEditionID, nullIfEmpty(u.CompanyID), u.Email, u.FirstName, u.LastName, u.Role, u.Status, u.PasswordHash)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return users.ErrConflict
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: unknown system edition or company", users.ErrInvalidInput)
			}
		}
		return err
	}
	return nil
}

func (s *UserStore) Find(ctx context.Context, id string) (users.User, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (users.User, error) {
	return s.findBy(ctx, "email = $1", email)
}

func (s *UserStore) findBy(ctx context.Context, cond string, arg any) (users.User, error) {
	var u users.User
	err := s.store.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where `+cond, arg,
	).Scan(&u.ID, &u.SystemEditionID, &u.CompanyID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.Status, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context, q users.ListQuery) ([]users.User, int, error) {
	conds := []string{"true"}
	var args []any
	if q.SystemEditionID != "" {
		args = append(args, q.SystemEditionID)
		conds = append(conds, fmt.Sprintf("system_edition_id = $%d", len(args)))
	}
	if q.CompanyID != "" {
		args = append(args, q.CompanyID)
		conds = append(conds, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(email ilike $%d or first_name ilike $%d or last_name ilike $%d)", n, n, n))
	}
	where := strings.Join(conds, " and ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		`select count(*) from users where `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	f := q.Normalized()
	args = append(args, f.Limit, q.Offset())
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(
		`select %s from users where %s order by email limit $%d offset $%d`,
		userColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []users.User
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.SystemEditionID, &u.CompanyID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.Status, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *UserStore) Update(ctx context.Context, id string, upd users.Update) (users.User, error) {
	var (
		setClauses []string
		args       []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.FirstName != nil {
		set("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		set("last_name", *upd.LastName)
	}
	if upd.Role != nil {
		set("role", *upd.Role)
	}
	if upd.CompanyID != nil {
		set("company_id", nullIfEmpty(*upd.CompanyID))
	}
	if upd.Password != nil {
		set("password_hash", *upd.Password)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = now()")
		args = append(args, id)
		query := fmt.Sprintf(`update users set %s where id = $%d`, strings.Join(setClauses, ", "), len(args))
		res, err := s.store.db.ExecContext(ctx, query, args...)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return users.User{}, users.ErrConflict
			}
			return users.User{}, err
		}
		if aff, err := res.RowsAffected(); err == nil && aff == 0 {
			return users.User{}, users.ErrNotFound
		}
	}
	return s.Find(ctx, id)
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return users.ErrNotFound
	}
	return nil
}
