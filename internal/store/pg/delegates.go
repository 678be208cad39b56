package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"scanid.app/internal/delegates"
)

// DelegateStore implements delegates.Store.
type DelegateStore struct {
	store *Store
}

var _ delegates.Store = (*DelegateStore)(nil)

func NewDelegateStore(store *Store) *DelegateStore { return &DelegateStore{store: store} }

const delegateColumns = `id, system_edition_id, company_id, email, invited_by_user_id, status, token_hash, expires_at, accepted_at, created_at, updated_at`

func (s *DelegateStore) Create(ctx context.Context, a *delegates.Access) error {
	row := s.store.db.QueryRowContext(ctx, `
		insert into delegate_access (id, system_edition_id, company_id, email, invited_by_user_id, status, token_hash, expires_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning created_at, updated_at
	`, a.ID, a.SystemEditionID, a.CompanyID, a.Email, a.InvitedByUserID, a.Status, a.TokenHash, a.ExpiresAt)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return delegates.ErrConflict
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: unknown system edition or company", delegates.ErrInvalidInput)
			}
		}
		return err
	}
	return nil
}

func (s *DelegateStore) Find(ctx context.Context, id string) (delegates.Access, error) {
	row := s.store.db.QueryRowContext(ctx,
		`select `+delegateColumns+` from delegate_access where id = $1`, id)
	return scanDelegate(row)
}

func (s *DelegateStore) List(ctx context.Context, q delegates.ListQuery) ([]delegates.Access, int, error) {
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
	if q.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		conds = append(conds, fmt.Sprintf("email ilike $%d", len(args)))
	}
	where := strings.Join(conds, " and ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		`select count(*) from delegate_access where `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	f := q.Normalized()
	args = append(args, f.Limit, q.Offset())
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(
		`select %s from delegate_access where %s order by created_at desc limit $%d offset $%d`,
		delegateColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []delegates.Access
	for rows.Next() {
		a, err := scanDelegate(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *DelegateStore) UpdateStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error {
	res, err := s.store.db.ExecContext(ctx, `
		update delegate_access
		set status = $2, accepted_at = coalesce($3, accepted_at), updated_at = now()
		where id = $1
	`, id, status, acceptedAt)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return delegates.ErrNotFound
	}
	return nil
}

func scanDelegate(row rowScanner) (delegates.Access, error) {
	var (
		a        delegates.Access
		accepted sql.NullTime
	)
	err := row.Scan(&a.ID, &a.SystemEditionID, &a.CompanyID, &a.Email, &a.InvitedByUserID, &a.Status, &a.TokenHash, &a.ExpiresAt, &accepted, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return delegates.Access{}, delegates.ErrNotFound
	}
	if err != nil {
		return delegates.Access{}, err
	}
	if accepted.Valid {
		at := accepted.Time
		a.AcceptedAt = &at
	}
	return a, nil
}
