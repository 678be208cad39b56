package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"scanid.app/internal/audit"
)

// AuditStore implements audit.Store. Rows are append-only.
type AuditStore struct {
	store *Store
}

var _ audit.Store = (*AuditStore)(nil)

func NewAuditStore(store *Store) *AuditStore { return &AuditStore{store: store} }

const auditColumns = `id, coalesce(system_edition_id, ''), coalesce(company_id, ''), user_id, action, module, coalesce(description, ''), coalesce(ip_address, ''), coalesce(user_agent, ''), coalesce(request_id, ''), metadata, occurred_at`

func (s *AuditStore) Append(ctx context.Context, e *audit.Entry) error {
	var metaJSON []byte
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = raw
	}
	_, err := s.store.db.ExecContext(ctx, `
		insert into audit_logs (id, system_edition_id, company_id, user_id, action, module, description, ip_address, user_agent, request_id, metadata, occurred_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, nullIfEmpty(e.SystemEditionID), nullIfEmpty(e.CompanyID), e.UserID, e.Action, e.Module,
		nullIfEmpty(e.Description), nullIfEmpty(e.IPAddress), nullIfEmpty(e.UserAgent), nullIfEmpty(e.RequestID), metaJSON, e.OccurredAt)
	return err
}

func (s *AuditStore) List(ctx context.Context, q audit.ListQuery) ([]audit.Entry, int, error) {
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
	if q.Module != "" {
		args = append(args, q.Module)
		conds = append(conds, fmt.Sprintf("module = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(action ilike $%d or module ilike $%d or description ilike $%d or user_id ilike $%d)", n, n, n, n))
	}
	where := strings.Join(conds, " and ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		`select count(*) from audit_logs where `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	f := q.Normalized()
	args = append(args, f.Limit, q.Offset())
	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(
		`select %s from audit_logs where %s order by occurred_at desc limit $%d offset $%d`,
		auditColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []audit.Entry
	for rows.Next() {
		var (
			e       audit.Entry
			rawMeta []byte
		)
		if err := rows.Scan(&e.ID, &e.SystemEditionID, &e.CompanyID, &e.UserID, &e.Action, &e.Module,
			&e.Description, &e.IPAddress, &e.UserAgent, &e.RequestID, &rawMeta, &e.OccurredAt); err != nil {
			return nil, 0, err
		}
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("decode metadata: %w", err)
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
