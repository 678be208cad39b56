package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"scanid.app/internal/tags"
)

// TagStore implements tags.Store. Deletes are soft: deleted_at is set and
// every query filters on it. Merge and Reorder run in one transaction each.
type TagStore struct {
	store *Store
}

var _ tags.Store = (*TagStore)(nil)

func NewTagStore(store *Store) *TagStore { return &TagStore{store: store} }

const tagColumns = `id, system_edition_id, name, coalesce(color, ''), type, is_active, sort_order, created_at, updated_at, deleted_at`

func (s *TagStore) Create(ctx context.Context, t *tags.Tag) error {
	row := s.store.db.QueryRowContext(ctx, `
		insert into tags (id, system_edition_id, name, color, type, is_active, sort_order)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, t.ID, t.SystemEditionID, t.Name, nullIfEmpty(t.Color), t.Type, t.IsActive, t.SortOrder)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return tags.ErrConflict
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: unknown system edition", tags.ErrInvalidInput)
			}
		}
		return err
	}
	return nil
}

func (s *TagStore) Find(ctx context.Context, id string) (tags.Tag, error) {
	row := s.store.db.QueryRowContext(ctx,
		`select `+tagColumns+` from tags where id = $1 and deleted_at is null`, id)
	return scanTag(row)
}

func (s *TagStore) List(ctx context.Context, q tags.ListQuery) ([]tags.Tag, int, error) {
	conds := []string{"deleted_at is null"}
	var args []any
	if q.SystemEditionID != "" {
		args = append(args, q.SystemEditionID)
		conds = append(conds, fmt.Sprintf("system_edition_id = $%d", len(args)))
	}
	if q.Type != "" {
		args = append(args, q.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if !q.IncludeInactive {
		conds = append(conds, "is_active")
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		conds = append(conds, fmt.Sprintf("name ilike $%d", len(args)))
	}
	where := strings.Join(conds, " and ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		`select count(*) from tags where `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	f := q.Normalized()
	args = append(args, f.Limit, q.Offset())
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(
		`select %s from tags where %s order by sort_order, name limit $%d offset $%d`,
		tagColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []tags.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *TagStore) Update(ctx context.Context, id string, upd tags.Update) (tags.Tag, error) {
	var (
		setClauses []string
		args       []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Color != nil {
		set("color", nullIfEmpty(*upd.Color))
	}
	if upd.IsActive != nil {
		set("is_active", *upd.IsActive)
	}
	if upd.SortOrder != nil {
		set("sort_order", *upd.SortOrder)
	}
	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = now()")
		args = append(args, id)
		query := fmt.Sprintf(`update tags set %s where id = $%d and deleted_at is null`, strings.Join(setClauses, ", "), len(args))
		res, err := s.store.db.ExecContext(ctx, query, args...)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return tags.Tag{}, tags.ErrConflict
			}
			return tags.Tag{}, err
		}
		if aff, err := res.RowsAffected(); err == nil && aff == 0 {
			return tags.Tag{}, tags.ErrNotFound
		}
	}
	return s.Find(ctx, id)
}

func (s *TagStore) SoftDelete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `
		update tags set deleted_at = now(), updated_at = now()
		where id = $1 and deleted_at is null
	`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return tags.ErrNotFound
	}
	return nil
}

// Merge soft-deletes every source tag once the target is confirmed to live
// in the same edition. All or nothing.
func (s *TagStore) Merge(ctx context.Context, editionID string, sourceIDs []string, targetID string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `
		select 1 from tags
		where id = $1 and system_edition_id = $2 and deleted_at is null
		for update
	`, targetID, editionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: target tag", tags.ErrNotFound)
	}
	if err != nil {
		return err
	}

	for _, id := range sourceIDs {
		res, err := tx.ExecContext(ctx, `
			update tags set deleted_at = now(), updated_at = now()
			where id = $1 and system_edition_id = $2 and deleted_at is null
		`, id, editionID)
		if err != nil {
			return err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if aff == 0 {
			return fmt.Errorf("%w: source tag %s", tags.ErrNotFound, id)
		}
	}
	return tx.Commit()
}

// Reorder applies every sort-order change in one transaction.
func (s *TagStore) Reorder(ctx context.Context, editionID string, updates []tags.OrderUpdate) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range updates {
		res, err := tx.ExecContext(ctx, `
			update tags set sort_order = $3, updated_at = now()
			where id = $1 and system_edition_id = $2 and deleted_at is null
		`, u.ID, editionID, u.SortOrder)
		if err != nil {
			return err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if aff == 0 {
			return fmt.Errorf("%w: tag %s", tags.ErrNotFound, u.ID)
		}
	}
	return tx.Commit()
}

func (s *TagStore) Stats(ctx context.Context, editionID string) (tags.Stats, error) {
	stats := tags.Stats{ByType: map[tags.Type]int{}}
	rows, err := s.store.db.QueryContext(ctx, `
		select type, is_active, count(*)
		from tags
		where system_edition_id = $1 and deleted_at is null
		group by type, is_active
	`, editionID)
	if err != nil {
		return tags.Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typ    tags.Type
			active bool
			n      int
		)
		if err := rows.Scan(&typ, &active, &n); err != nil {
			return tags.Stats{}, err
		}
		stats.Total += n
		if active {
			stats.Active += n
		} else {
			stats.Inactive += n
		}
		stats.ByType[typ] += n
	}
	if err := rows.Err(); err != nil {
		return tags.Stats{}, err
	}
	return stats, nil
}

func scanTag(row rowScanner) (tags.Tag, error) {
	var (
		t       tags.Tag
		deleted sql.NullTime
	)
	err := row.Scan(&t.ID, &t.SystemEditionID, &t.Name, &t.Color, &t.Type, &t.IsActive, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return tags.Tag{}, tags.ErrNotFound
	}
	if err != nil {
		return tags.Tag{}, err
	}
	if deleted.Valid {
		at := deleted.Time
		t.DeletedAt = &at
	}
	return t, nil
}
