package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"scanid.app/internal/companies"
)

// CompanyStore implements companies.Store. PIN options and settings are
// kept as jsonb columns.
type CompanyStore struct {
	store *Store
}

var _ companies.Store = (*CompanyStore)(nil)

func NewCompanyStore(store *Store) *CompanyStore { return &CompanyStore{store: store} }

const companyColumns = `id, system_edition_id, name, coalesce(encrypted_master_pin, ''), pin_options, pin_settings, created_at, updated_at`

func (s *CompanyStore) Create(ctx context.Context, c *companies.Company) error {
	optJSON, setJSON, err := marshalPinConfig(c.PinOptions, c.PinSettings)
	if err != nil {
		return err
	}
	row := s.store.db.QueryRowContext(ctx, `
		insert into companies (id, system_edition_id, name, encrypted_master_pin, pin_options, pin_settings)
		values ($1, $2, $3, $4, $5, $6)
		returning created_at, updated_at
	`, c.ID, c.SystemEditionID, c.Name, nullIfEmpty(c.EncryptedMasterPin), optJSON, setJSON)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return companies.ErrConflict
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: unknown system edition", companies.ErrInvalidInput)
			}
		}
		return err
	}
	return nil
}

func (s *CompanyStore) Find(ctx context.Context, id string) (companies.Company, error) {
	row := s.store.db.QueryRowContext(ctx,
		`select `+companyColumns+` from companies where id = $1`, id)
	return scanCompany(row)
}

func (s *CompanyStore) List(ctx context.Context, q companies.ListQuery) ([]companies.Company, int, error) {
	conds := []string{"true"}
	var args []any
	if q.SystemEditionID != "" {
		args = append(args, q.SystemEditionID)
		conds = append(conds, fmt.Sprintf("system_edition_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		conds = append(conds, fmt.Sprintf("name ilike $%d", len(args)))
	}
	where := strings.Join(conds, " and ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		`select count(*) from companies where `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	f := q.Normalized()
	args = append(args, f.Limit, q.Offset())
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(
		`select %s from companies where %s order by name limit $%d offset $%d`,
		companyColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []companies.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *CompanyStore) Update(ctx context.Context, id string, upd companies.Update) (companies.Company, error) {
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
	if upd.PinOptions != nil {
		raw, err := json.Marshal(upd.PinOptions)
		if err != nil {
			return companies.Company{}, err
		}
		set("pin_options", raw)
	}
	if upd.PinSettings != nil {
		raw, err := json.Marshal(upd.PinSettings)
		if err != nil {
			return companies.Company{}, err
		}
		set("pin_settings", raw)
	}
	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = now()")
		args = append(args, id)
		query := fmt.Sprintf(`update companies set %s where id = $%d`, strings.Join(setClauses, ", "), len(args))
		res, err := s.store.db.ExecContext(ctx, query, args...)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return companies.Company{}, companies.ErrConflict
			}
			return companies.Company{}, err
		}
		if aff, err := res.RowsAffected(); err == nil && aff == 0 {
			return companies.Company{}, companies.ErrNotFound
		}
	}
	return s.Find(ctx, id)
}

func (s *CompanyStore) SetMasterPin(ctx context.Context, id, pinHash string) error {
	res, err := s.store.db.ExecContext(ctx, `
		update companies set encrypted_master_pin = $2, updated_at = now() where id = $1
	`, id, pinHash)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return companies.ErrNotFound
	}
	return nil
}

func (s *CompanyStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `delete from companies where id = $1`, id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: company still has users", companies.ErrConflict)
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return companies.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (companies.Company, error) {
	var (
		c       companies.Company
		rawOpts []byte
		rawSet  []byte
	)
	err := row.Scan(&c.ID, &c.SystemEditionID, &c.Name, &c.EncryptedMasterPin, &rawOpts, &rawSet, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return companies.Company{}, companies.ErrNotFound
	}
	if err != nil {
		return companies.Company{}, err
	}
	if len(rawOpts) > 0 {
		if err := json.Unmarshal(rawOpts, &c.PinOptions); err != nil {
			return companies.Company{}, fmt.Errorf("decode pin options: %w", err)
		}
	}
	if len(rawSet) > 0 {
		if err := json.Unmarshal(rawSet, &c.PinSettings); err != nil {
			return companies.Company{}, fmt.Errorf("decode pin settings: %w", err)
		}
	}
	return c, nil
}

func marshalPinConfig(opts companies.PinOptions, settings companies.PinSettings) ([]byte, []byte, error) {
	optJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, nil, err
	}
	setJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, nil, err
	}
	return optJSON, setJSON, nil
}
